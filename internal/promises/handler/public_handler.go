package handler

import (
	"studio_portal_backend/internal/promises/service"
	"studio_portal_backend/internal/promises/transport"
	"studio_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the prospect portal, addressed by public token
// instead of an authenticated session.
type PublicHandler struct {
	svc *service.Service
}

// NewPublicHandler creates a new public promises handler
func NewPublicHandler(svc *service.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// RegisterRoutes registers the public promise routes
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token/route", h.ResolveRoute)
}

// ResolveRoute tells the portal where to send the prospect. Always resolved
// fresh; a "no-match" answer means the portal must show its unavailable
// state, not retry resolution.
func (h *PublicHandler) ResolveRoute(c *gin.Context) {
	route, promise, err := h.svc.ResolveRouteByToken(c.Request.Context(), c.Param("token"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RouteResponse{
		PromiseID: promise.ID.String(),
		Route:     string(route),
	})
}
