package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediguard/internal/domain"
	"mediguard/internal/logging"
	"mediguard/internal/middleware"
)

// Caller-facing messages for server-side failures.
const (
	MsgServerConfiguration = "Server configuration error."
	MsgAnalysisFailed      = "Something went wrong analyzing the bill."
	MsgGuestLimitReached   = "You've used your 3 free analyses as a guest. Please sign in to keep using MediGuard AI."
	MsgInternal            = "Something went wrong. Please try again."
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Items interface{} `json:"items"`
	Meta  PagMeta     `json:"meta"`
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data as the body.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondPaginated sends a 200 response with pagination metadata.
func RespondPaginated(c *gin.Context, items interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, PaginatedResponse{Items: items, Meta: meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg})
}

// MapDomainError translates domain errors to HTTP status codes and caller-facing messages.
// Server-side failures get a generic message; details stay in the log.
func MapDomainError(err error) (status int, msg string) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input."
	case errors.Is(err, domain.ErrServerConfiguration):
		return http.StatusInternalServerError, MsgServerConfiguration
	case errors.Is(err, domain.ErrUpstreamFailure), errors.Is(err, domain.ErrMalformedAnalysis):
		return http.StatusInternalServerError, MsgAnalysisFailed
	case errors.Is(err, domain.ErrGuestLimitReached):
		return http.StatusTooManyRequests, MsgGuestLimitReached
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "An account with this email already exists."
	case errors.Is(err, domain.ErrUnsupportedExport):
		return http.StatusBadRequest, "Unsupported export format. Use csv or xlsx."
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, msg := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error().Err(err).Msg("request failed")
	}
	RespondError(c, status, msg)
}

// requireUserID extracts the user ID from the request context.
// Returns false if auth context is missing (error response already written).
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized.")
		return uuid.Nil, false
	}
	return userID, true
}
