package generations

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/shared/server/middleware"
	"smartmail-backend/internal/shared/server/respond"
	"smartmail-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the generation service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No data provided", nil)
		return
	}

	tone := email.Tone(body.Tone)
	if strings.TrimSpace(body.Tone) == "" {
		tone = email.DefaultTone
	}
	mode := email.Mode(body.Mode)
	if strings.TrimSpace(body.Mode) == "" {
		mode = email.DefaultMode
	}
	persist := true
	if body.SaveHistory != nil {
		persist = *body.SaveHistory
	}

	req, err := email.NewRequest(body.Text, tone, mode, persist)
	if err != nil {
		var vErr *email.ValidationError
		if errors.As(err, &vErr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Message, []map[string]string{
				{"field": vErr.Field, "issue": "invalid"},
			})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("tone", string(req.Tone))
	c.Set("mode", string(req.Mode))

	ctx := telemetry.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Generate(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPersistFailed):
			respond.Error(c, http.StatusInternalServerError, "persist_failed", "Email was generated but could not be saved to history", nil)
		case errors.Is(err, email.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "generation_failed", "Failed to generate email. Please try again.", nil)
		}
		return
	}
	c.Set("provider", result.Provider)

	respond.OK(c, GenerateResponse{
		Success:       true,
		RewrittenText: result.GeneratedText,
		Tone:          string(result.Tone),
		Mode:          string(result.Mode),
		Timestamp:     result.TimestampString(),
		Provider:      result.Provider,
		HTML:          result.HTML,
		HistoryID:     result.HistoryID,
	})
}
