package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediguard/internal/domain"
	"mediguard/internal/export"
	"mediguard/internal/service"
)

const exportBaseName = "mediguard-history"

// HistoryHandler handles a signed-in user's saved analyses.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List handles GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	records, total, err := h.historyService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid history id.")
		return
	}

	detail, err := h.historyService.Get(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Delete handles DELETE /api/history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid history id.")
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), userID, id); err != nil {
		HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /api/history/export?format=csv|xlsx
func (h *HistoryHandler) Export(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportCSV))))

	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.historyService.Export(c.Request.Context(), userID, format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(exportBaseName, format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
