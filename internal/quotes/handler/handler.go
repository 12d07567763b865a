// Package handler exposes the quotes HTTP surface.
package handler

import (
	"net/http"

	"studio_portal_backend/internal/quotes/service"
	"studio_portal_backend/internal/quotes/transport"
	"studio_portal_backend/platform/httpkit"
	"studio_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidQuoteID = "invalid quote id"
)

// Handler handles staff HTTP requests for quotes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.POST("/:id/negotiation/preview", h.PreviewNegotiation)
	rg.PUT("/:id/negotiation", h.ApplyNegotiation)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

// Get returns a quote with its items and negotiation breakdown.
func (h *Handler) Get(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), identity.TenantID(), quoteID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// PreviewNegotiation computes a breakdown without persisting. The :id is only
// used for route shape; the preview works entirely from the request body.
func (h *Handler) PreviewNegotiation(c *gin.Context) {
	if _, ok := httpkit.MustGetIdentity(c); !ok {
		return
	}

	var req transport.NegotiationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	httpkit.OK(c, h.svc.PreviewNegotiation(req))
}

// ApplyNegotiation persists the courtesy selection and manual price.
func (h *Handler) ApplyNegotiation(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return
	}

	var req transport.ApplyNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	resp, err := h.svc.ApplyNegotiation(c.Request.Context(), identity.TenantID(), identity.UserID(), quoteID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpdateStatus moves a quote to a new status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), identity.TenantID(), identity.UserID(), quoteID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
