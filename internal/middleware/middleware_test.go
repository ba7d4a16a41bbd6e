package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediguard/internal/logging"
	"mediguard/internal/middleware"
	"mediguard/internal/service"
	"mediguard/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	userID := uuid.New()
	mockAuth.On("ValidateToken", "valid-token").Return(&service.Claims{UserID: userID, Email: "user@test.com"}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", func(c *gin.Context) {
		uid, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": uid})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID.String(), resp["user_id"])
	mockAuth.AssertExpectations(t)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer bad"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestOptionalAuth(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	userID := uuid.New()
	mockAuth.On("ValidateToken", "good").Return(&service.Claims{UserID: userID}, nil)
	mockAuth.On("ValidateToken", "bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.Use(middleware.OptionalAuth(mockAuth))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.OptionalUserID(c).String())
	})

	tests := []struct {
		header string
		want   uuid.UUID
	}{
		{"Bearer good", userID},
		{"Bearer bad", uuid.Nil},
		{"", uuid.Nil},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tt.want.String(), w.Body.String())
	}
}

func TestGuestSession(t *testing.T) {
	r := gin.New()
	r.Use(middleware.GuestSession("mediguard_guest", false))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetGuestID(c)) })

	t.Run("header wins", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set(middleware.GuestHeader, "from-header")
		req.AddCookie(&http.Cookie{Name: "mediguard_guest", Value: "from-cookie"})
		r.ServeHTTP(w, req)
		assert.Equal(t, "from-header", w.Body.String())
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.AddCookie(&http.Cookie{Name: "mediguard_guest", Value: "from-cookie"})
		r.ServeHTTP(w, req)
		assert.Equal(t, "from-cookie", w.Body.String())
	})

	t.Run("issues new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		r.ServeHTTP(w, req)

		id := w.Body.String()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Header().Get(middleware.GuestHeader))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "mediguard_guest", cookies[0].Name)
		assert.Equal(t, id, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.mediguard.test"}))
	r.POST("/api/analyze-bill", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/api/analyze-bill", http.NoBody)
		req.Header.Set("Origin", "https://app.mediguard.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://app.mediguard.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/analyze-bill", http.NoBody)
		req.Header.Set("Origin", "https://app.mediguard.test")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.mediguard.test", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/analyze-bill", http.NoBody)
		req.Header.Set("Origin", "https://evil.test")
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLoggerAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(base), middleware.Recovery())
	r.GET("/ok", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info().Msg("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ok", http.NoBody)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"message":"inside"`)
	assert.Contains(t, buf.String(), `"status":200`)

	buf.Reset()
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/panic", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "recovered from panic")
}
