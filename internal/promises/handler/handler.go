package handler

import (
	"net/http"

	"studio_portal_backend/internal/promises/domain"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/internal/promises/service"
	"studio_portal_backend/internal/promises/transport"
	"studio_portal_backend/platform/httpkit"
	"studio_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgInvalidPromiseID = "invalid promise id"
)

// Handler handles staff HTTP requests for promises.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new promises handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the promise routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stages", h.ListStages)
	rg.GET("/:id/route", h.ResolveRoute)
	rg.POST("/:id/route/check", h.CheckRoute)
	rg.POST("/:id/pipeline/sync", h.ForceSync)
	rg.GET("/:id/pipeline/history", h.StageHistory)
}

// ResolveRoute returns the public route target for a promise.
func (h *Handler) ResolveRoute(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	promiseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPromiseID, nil)
		return
	}

	route, err := h.svc.ResolveRoute(c.Request.Context(), identity.TenantID(), promiseID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RouteResponse{
		PromiseID: promiseID.String(),
		Route:     string(route),
	})
}

// CheckRoute re-derives validity for one client-held route tag.
func (h *Handler) CheckRoute(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	promiseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPromiseID, nil)
		return
	}

	var req transport.RouteCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	valid, current, err := h.svc.CheckRoute(c.Request.Context(), identity.TenantID(), promiseID, domain.RouteTarget(req.Route))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RouteCheckResponse{
		Valid:        valid,
		CurrentRoute: string(current),
	})
}

// ForceSync triggers an immediate pipeline stage re-derivation.
func (h *Handler) ForceSync(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	promiseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPromiseID, nil)
		return
	}

	actorID := identity.UserID()
	h.svc.Synchronizer().Sync(c.Request.Context(), identity.TenantID(), promiseID, &actorID)

	// Sync is fail-soft; acceptance only means the derivation ran.
	httpkit.JSON(c, http.StatusAccepted, transport.SyncResponse{
		PromiseID: promiseID.String(),
		Queued:    false,
	})
}

// StageHistory returns the promise's stage audit trail.
func (h *Handler) StageHistory(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	promiseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPromiseID, nil)
		return
	}

	entries, err := h.svc.StageHistory(c.Request.Context(), identity.TenantID(), promiseID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.StageHistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryResponse(e))
	}
	httpkit.OK(c, out)
}

// ListStages returns the tenant's active stage catalog.
func (h *Handler) ListStages(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	stages, err := h.svc.Stages(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, transport.StageResponse{
			ID:   s.ID.String(),
			Slug: s.Slug,
			Name: s.Name,
		})
	}
	httpkit.OK(c, out)
}

func toHistoryResponse(e repository.StageHistoryEntry) transport.StageHistoryEntryResponse {
	resp := transport.StageHistoryEntryResponse{
		ID:            e.ID.String(),
		FromStageSlug: e.FromStageSlug,
		ToStageID:     e.ToStageID.String(),
		ToStageSlug:   e.ToStageSlug,
		Reason:        e.Reason,
		QuoteStates:   e.QuoteStates,
		CreatedAt:     e.CreatedAt,
	}
	if e.FromStageID != nil {
		s := e.FromStageID.String()
		resp.FromStageID = &s
	}
	if e.ActorID != nil {
		s := e.ActorID.String()
		resp.ActorID = &s
	}
	return resp
}
