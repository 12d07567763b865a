// Package promises provides the promises domain module: prospect route
// resolution and quote-driven pipeline stage synchronization.
package promises

import (
	"context"

	"studio_portal_backend/internal/events"
	apphttp "studio_portal_backend/internal/http"
	"studio_portal_backend/internal/promises/handler"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/internal/promises/service"
	"studio_portal_backend/platform/cache"
	"studio_portal_backend/platform/logger"
	"studio_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the promises domain module
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
	log           *logger.Logger
}

// NewModule creates a new promises module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	sync := service.NewSynchronizer(repo, eventBus, log)
	svc := service.New(repo, sync, log)
	h := handler.New(svc, val)
	ph := handler.NewPublicHandler(svc)

	return &Module{
		handler:       h,
		publicHandler: ph,
		service:       svc,
		log:           log,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "promises"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// SetRouteCache injects the redis route cache.
func (m *Module) SetRouteCache(c *cache.RouteCache) {
	m.service.SetRouteCache(c)
}

// RegisterHandlers subscribes to the quote mutation events that make a
// cached route stale and a persisted stage potentially wrong.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.QuoteStatusChanged{}.EventName(), m)
	bus.Subscribe(events.QuoteSelectionChanged{}.EventName(), m)

	m.log.Info("promises module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteStatusChanged:
		m.service.InvalidateRoute(ctx, e.PromiseID)
		m.service.Synchronizer().Sync(ctx, e.TenantID, e.PromiseID, e.ActorID)
	case events.QuoteSelectionChanged:
		m.service.InvalidateRoute(ctx, e.PromiseID)
		m.service.Synchronizer().Sync(ctx, e.TenantID, e.PromiseID, nil)
	}
	return nil
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	promises := ctx.Protected.Group("/promises")
	m.handler.RegisterRoutes(promises)

	// Public routes — token-addressed, rate-limited, no auth middleware
	publicPromises := ctx.Public.Group("/promises")
	m.publicHandler.RegisterRoutes(publicPromises)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
