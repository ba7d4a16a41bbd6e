package client_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mediguard/internal/client"
	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/guest"
	"mediguard/internal/handler"
	"mediguard/internal/llm"
	"mediguard/internal/middleware"
	"mediguard/internal/service"
	"mediguard/mocks"
)

type memGuestUsage struct {
	mu   sync.Mutex
	rows map[string]domain.GuestUsage
}

func (m *memGuestUsage) Get(_ context.Context, guestID string) (*domain.GuestUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[guestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memGuestUsage) Save(_ context.Context, u *domain.GuestUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.GuestID] = *u
	return nil
}

func newAnalyzeServer(t *testing.T, completion *mocks.MockCompletionClient) (*httptest.Server, service.GuestService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guests := service.NewGuestService(&memGuestUsage{rows: map[string]domain.GuestUsage{}}, guest.DefaultPolicy())
	svc := service.NewAnalysisService(completion, guests, nil, nil, nil, nil, nil, &config.S3Config{})

	r := gin.New()
	r.Use(middleware.GuestSession("mediguard_guest", false))
	r.POST("/api/analyze-bill", handler.NewAnalyzeHandler(svc, 1).Analyze)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, guests
}

func TestAnalyzeText_RetriedFailureCostsNoAllowance(t *testing.T) {
	completion := new(mocks.MockCompletionClient)
	completion.On("Complete", mock.Anything, mock.Anything).
		Return("", llm.NewUpstreamError("openai", 503, []byte("overloaded")))
	srv, guests := newAnalyzeServer(t, completion)

	c := client.New(srv.URL, client.WithGuestID("g-retry"), client.WithRetryPolicy(fastPolicy()))
	_, err := c.AnalyzeText(testContext(t), client.TextRequest{BillText: "CT scan $860 x2"})

	require.Error(t, err)
	completion.AssertNumberOfCalls(t, "Complete", 3)

	st, err := guests.Status(context.Background(), "g-retry")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Used)
	assert.Equal(t, 3, st.Remaining)
}

func TestAnalyzeText_RetriedThenDeliveredCostsOne(t *testing.T) {
	completion := new(mocks.MockCompletionClient)
	completion.On("Complete", mock.Anything, mock.Anything).
		Return("", llm.NewUpstreamError("openai", 503, []byte("overloaded"))).Once()
	completion.On("Complete", mock.Anything, mock.Anything).
		Return(`{"summary":"ok","totalBilled":100,"items":[]}`, nil).Once()
	srv, guests := newAnalyzeServer(t, completion)

	c := client.New(srv.URL, client.WithGuestID("g-once"), client.WithRetryPolicy(fastPolicy()))
	res, err := c.AnalyzeText(testContext(t), client.TextRequest{BillText: "bill"})

	require.NoError(t, err)
	require.NotNil(t, res.Guest)
	assert.Equal(t, 2, res.Guest.Remaining)

	st, err := guests.Status(context.Background(), "g-once")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Used)
}
