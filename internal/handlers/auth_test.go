package handlers

import (
	"net/http"
	"testing"

	"carrent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signupResp struct {
		Message string `json:"message"`
		UserID  uint   `json:"userId"`
	}
	decodeBody(t, w, &signupResp)
	assert.NotZero(t, signupResp.UserID)

	w = env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &loginResp)
	require.NotEmpty(t, loginResp.Token)

	// Embedded identity must match the stored user.
	token, err := jwt.Parse(loginResp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(env.cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(signupResp.UserID), claims["id"])
	assert.Equal(t, "alice", claims["username"])
}

func TestSignupStoresHashedPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "bob",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "bob").First(&user).Error)
	assert.NotEqual(t, "hunter22", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")))
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	payload := gin.H{"username": "carol", "password": "secret123"}

	w := env.request(t, http.MethodPost, "/api/auth/signup", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/signup", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("username = ?", "carol").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload gin.H
	}{
		{"missing username", gin.H{"password": "secret123"}},
		{"missing password", gin.H{"username": "dave"}},
		{"short password", gin.H{"username": "dave", "password": "abc"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/auth/signup", "", tc.payload)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp struct {
				Error  string  `json:"error"`
				Issues []gin.H `json:"issues"`
			}
			decodeBody(t, w, &resp)
			assert.Equal(t, "Invalid input", resp.Error)
			assert.NotEmpty(t, resp.Issues)
		})
	}
}

func TestLoginNoEnumerationSignal(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "eve",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPass := env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "eve",
		"password": "wrongpass",
	})
	unknownUser := env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// Same status AND same body: the response must not reveal whether
	// the username exists.
	assert.JSONEq(t, wrongPass.Body.String(), unknownUser.Body.String())
}
