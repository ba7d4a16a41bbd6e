// Package client is a Go client for the MediGuard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediguard/internal/domain"
	"mediguard/internal/retry"
)

const guestHeader = "X-Guest-ID"

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mediguard: HTTP %d", e.Status)
	}
	return fmt.Sprintf("mediguard: HTTP %d: %s", e.Status, e.Message)
}

// StatusCode lets the retry classifier skip client errors.
func (e *StatusError) StatusCode() int {
	return e.Status
}

// TextRequest analyzes pasted bill text.
type TextRequest struct {
	BillText          string `json:"billText"`
	UserQuestion      string `json:"userQuestion,omitempty"`
	InsuranceProvider string `json:"insuranceProvider,omitempty"`
}

// FileRequest analyzes an uploaded bill image or PDF.
type FileRequest struct {
	FileName          string
	MIMEType          string
	Data              []byte
	UserQuestion      string
	InsuranceProvider string
}

// GuestStatus mirrors the server's guest allowance.
type GuestStatus struct {
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetsAt  *time.Time `json:"resets_at,omitempty"`
}

// Result is a completed analysis.
type Result struct {
	Analysis  *domain.BillAnalysis `json:"analysis"`
	HistoryID *uuid.UUID           `json:"historyId,omitempty"`
	Guest     *GuestStatus         `json:"guest,omitempty"`
}

// HistoryPage is one page of saved analyses.
type HistoryPage struct {
	Items []domain.HistoryRecord `json:"items"`
	Meta  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"meta"`
}

// Client calls the MediGuard API. Analyze requests are retried under its
// retry policy; a guest id issued by the server is remembered across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	policy     retry.Policy

	mu      sync.Mutex
	guestID string
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a bearer access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithGuestID reuses an existing guest session.
func WithGuestID(id string) Option {
	return func(c *Client) { c.guestID = id }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy replaces retry.DefaultPolicy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 150 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GuestID returns the guest session in use, if any.
func (c *Client) GuestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guestID
}

// AnalyzeText submits pasted bill text.
func (c *Client) AnalyzeText(ctx context.Context, req TextRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client.AnalyzeText: %w", err)
	}
	return c.analyze(ctx, body, "application/json")
}

// AnalyzeFile submits a bill image or PDF as multipart form data.
func (c *Client) AnalyzeFile(ctx context.Context, req FileRequest) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="billImage"; filename=%q`, fileNameOrDefault(req.FileName)))
	if req.MIMEType != "" {
		h.Set("Content-Type", req.MIMEType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("client.AnalyzeFile: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("client.AnalyzeFile: %w", err)
	}
	if req.UserQuestion != "" {
		_ = mw.WriteField("userQuestion", req.UserQuestion)
	}
	if req.InsuranceProvider != "" {
		_ = mw.WriteField("insuranceProvider", req.InsuranceProvider)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("client.AnalyzeFile: %w", err)
	}

	return c.analyze(ctx, buf.Bytes(), mw.FormDataContentType())
}

func (c *Client) analyze(ctx context.Context, body []byte, contentType string) (*Result, error) {
	var result Result
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		result = Result{}
		return c.do(ctx, http.MethodPost, "/api/analyze-bill", bytes.NewReader(body), contentType, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListHistory returns a page of the signed-in user's saved analyses.
func (c *Client) ListHistory(ctx context.Context, offset, limit int) (*HistoryPage, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var page HistoryPage
	if err := c.do(ctx, http.MethodGet, "/api/history?"+q.Encode(), nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GuestUsage reports the remaining guest allowance.
func (c *Client) GuestUsage(ctx context.Context) (*GuestStatus, error) {
	var st GuestStatus
	if err := c.do(ctx, http.MethodGet, "/api/guest/usage", nil, "", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := c.GuestID(); id != "" {
		req.Header.Set(guestHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(guestHeader); id != "" {
		c.mu.Lock()
		c.guestID = id
		c.mu.Unlock()
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &e)
		return &StatusError{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func fileNameOrDefault(name string) string {
	if name == "" {
		return "bill"
	}
	return name
}
