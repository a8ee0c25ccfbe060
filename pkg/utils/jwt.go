package utils

import (
	"time"

	"carrent/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a signed HS256 token carrying the user's id and
// username. Secret and lifetime come from config so nothing here
// touches the environment.
func GenerateToken(user *models.User, secret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
}
