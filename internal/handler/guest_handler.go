package handler

import (
	"github.com/gin-gonic/gin"

	"mediguard/internal/middleware"
	"mediguard/internal/service"
)

// GuestHandler reports the guest allowance.
type GuestHandler struct {
	guestService service.GuestService
}

// NewGuestHandler creates a new GuestHandler.
func NewGuestHandler(guestService service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

// Usage handles GET /api/guest/usage
func (h *GuestHandler) Usage(c *gin.Context) {
	status, err := h.guestService.Status(c.Request.Context(), middleware.GetGuestID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}
