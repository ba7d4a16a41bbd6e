package router_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mediguard/internal/handler"
	"mediguard/internal/router"
	"mediguard/internal/service"
	"mediguard/mocks"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	auth     *mocks.MockAuthService
	analysis *mocks.MockAnalysisService
	history  *mocks.MockHistoryService
	guests   *mocks.MockGuestService
	engine   *gin.Engine
}

func newFixture(dbErr error) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		auth:     new(mocks.MockAuthService),
		analysis: new(mocks.MockAnalysisService),
		history:  new(mocks.MockHistoryService),
		guests:   new(mocks.MockGuestService),
	}
	f.engine = router.Setup(f.auth, router.Handlers{
		Auth:    handler.NewAuthHandler(f.auth),
		Analyze: handler.NewAnalyzeHandler(f.analysis, 1),
		History: handler.NewHistoryHandler(f.history),
		Profile: handler.NewProfileHandler(new(mocks.MockProfileService)),
		Guest:   handler.NewGuestHandler(f.guests),
		Health:  handler.NewHealthHandler(stubPinger{err: dbErr}),
	}, router.Options{Logger: zerolog.Nop(), GuestCookie: "mediguard_guest"})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(nil)
	req, _ := http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	assert.Equal(t, http.StatusOK, f.do(req).Code)

	f = newFixture(errors.New("down"))
	req, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(req).Code)

	req, _ = http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestAnalyzeRoute_GuestWithoutCredential(t *testing.T) {
	f := newFixture(nil)
	f.analysis.On("Configured").Return(false)

	req, _ := http.NewRequest(http.MethodPost, "/api/analyze-bill", bytes.NewBufferString(`{"billText":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Server configuration error."}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Guest-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnalyzeRoute_SignedInUser(t *testing.T) {
	f := newFixture(nil)
	userID := uuid.New()
	f.auth.On("ValidateToken", "tok").Return(&service.Claims{UserID: userID}, nil)
	f.analysis.On("Configured").Return(true)
	f.analysis.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return in.UserID == userID && in.GuestID != ""
	})).Return(&service.AnalyzeOutput{}, nil)

	req, _ := http.NewRequest(http.MethodPost, "/api/analyze-bill", bytes.NewBufferString(`{"billText":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.analysis.AssertExpectations(t)
}

func TestHistoryRoutes_RequireAuth(t *testing.T) {
	f := newFixture(nil)
	for _, target := range []string{"/api/history", "/api/history/export", "/api/history/" + uuid.NewString(), "/api/profile"} {
		req, _ := http.NewRequest(http.MethodGet, target, http.NoBody)
		assert.Equal(t, http.StatusUnauthorized, f.do(req).Code, target)
	}
	f.history.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryExportRoute(t *testing.T) {
	f := newFixture(nil)
	userID := uuid.New()
	f.auth.On("ValidateToken", "tok").Return(&service.Claims{UserID: userID}, nil)
	f.history.On("Export", mock.Anything, userID, mock.Anything, mock.Anything).Return([]byte("PK"), nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/history/export?format=xlsx", http.NoBody)
	req.Header.Set("Authorization", "Bearer tok")
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
}
