package handler

import (
	"net/http"

	"studio_portal_backend/internal/quotes/service"
	"studio_portal_backend/internal/quotes/transport"
	"studio_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicHandler serves the prospect portal. Requests are authenticated by the
// promise's public token instead of a staff JWT.
type PublicHandler struct {
	svc *service.Service
}

// NewPublicHandler creates a new public quotes handler
func NewPublicHandler(svc *service.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// RegisterRoutes registers the public quote routes
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:token/:quoteId/select", h.Select)
}

// Select records the prospect's chosen quote.
func (h *PublicHandler) Select(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing token", nil)
		return
	}

	quoteID, err := uuid.Parse(c.Param("quoteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return
	}

	var req transport.SelectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	resp, err := h.svc.SelectByToken(c.Request.Context(), token, quoteID, req.Selected)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
