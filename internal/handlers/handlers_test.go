package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"carrent/internal/config"
	"carrent/internal/middleware"
	"carrent/internal/models"
	"carrent/internal/services"
	"carrent/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	hub    *services.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Booking{}))

	mr := miniredis.RunT(t)
	services.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { services.RedisClient.Close() })

	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}

	hub := services.NewHub()
	go hub.Run()

	r := gin.New()
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", Signup(db))
			auth.POST("/login", Login(db, cfg))
		}

		bookings := api.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(cfg))
		{
			bookings.POST("", CreateBooking(db, hub))
			bookings.GET("", GetBookings(db))
			bookings.GET("/:bookingId", GetBooking(db))
			bookings.PUT("/:bookingId", UpdateBooking(db, hub))
			bookings.DELETE("/:bookingId", DeleteBooking(db, hub))
		}
	}

	return &testEnv{router: r, db: db, cfg: cfg, hub: hub}
}

// createTestUser inserts a user directly and returns it with a valid
// bearer token, bypassing the signup endpoint for booking tests.
func (e *testEnv) createTestUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{Username: username, Password: "secret123"}
	require.NoError(t, user.HashPassword())
	require.NoError(t, e.db.Create(user).Error)

	token, err := utils.GenerateToken(user, e.cfg.JWTSecret, e.cfg.JWTExpiry)
	require.NoError(t, err)

	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (e *testEnv) createBooking(t *testing.T, token, carName string, days, rentPerDay int) models.Booking {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/bookings", token, gin.H{
		"carName":    carName,
		"days":       days,
		"rentPerDay": rentPerDay,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booking models.Booking
	decodeBody(t, w, &booking)
	return booking
}
