package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartmail-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the history service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group. The
// /history/delete/:id and /history/clear paths are kept for older clients.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.listHistory)
	rg.DELETE("/history", h.clearHistory)
	rg.DELETE("/history/clear", h.clearHistory)
	rg.DELETE("/history/delete/:id", h.deleteRecord)
	rg.DELETE("/history/:id", h.deleteRecord)
}

func (h *Handler) listHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	records, err := h.Svc.List(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list history", nil)
		return
	}

	items := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, ToDTO(rec))
	}
	respond.OK(c, listResponse{Success: true, Records: items, Count: len(items)})
}

func (h *Handler) deleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "record id is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "record not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete record", nil)
		}
		return
	}
	respond.OK(c, deleteResponse{Success: true, Message: "Record deleted successfully"})
}

func (h *Handler) clearHistory(c *gin.Context) {
	n, err := h.Svc.Clear(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear history", nil)
		return
	}
	respond.OK(c, clearResponse{Success: true, Deleted: n, Message: "History cleared successfully"})
}
