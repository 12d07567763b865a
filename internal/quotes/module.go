// Package quotes provides the quotes domain module: negotiation breakdowns,
// status transitions and prospect selection.
package quotes

import (
	"studio_portal_backend/internal/events"
	apphttp "studio_portal_backend/internal/http"
	"studio_portal_backend/internal/quotes/handler"
	"studio_portal_backend/internal/quotes/repository"
	"studio_portal_backend/internal/quotes/service"
	"studio_portal_backend/internal/scheduler"
	"studio_portal_backend/platform/config"
	"studio_portal_backend/platform/logger"
	"studio_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
	log           *logger.Logger
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, cfg config.NegotiationConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, cfg, log)
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
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// SetPipelineScheduler injects the durable pipeline sync scheduler.
func (m *Module) SetPipelineScheduler(sched scheduler.PipelineSyncScheduler) {
	m.service.SetPipelineScheduler(sched)
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	m.handler.RegisterRoutes(quotes)

	// Public routes — token-addressed, rate-limited, no auth middleware
	publicQuotes := ctx.Public.Group("/quotes")
	m.publicHandler.RegisterRoutes(publicQuotes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
