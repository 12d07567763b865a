// Package service provides business logic for the promises bounded context:
// route resolution for the prospect portal and pipeline stage synchronization.
package service

import (
	"context"
	"errors"

	"studio_portal_backend/internal/promises/domain"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/platform/cache"
	"studio_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface for the routing service.
// Implemented by *repository.Repository.
type Store interface {
	SyncStore
	GetPromiseByPublicToken(ctx context.Context, token string) (*repository.Promise, error)
	ListStageHistory(ctx context.Context, tenantID, promiseID uuid.UUID) ([]repository.StageHistoryEntry, error)
	ListActiveStages(ctx context.Context, tenantID uuid.UUID) ([]repository.PipelineStage, error)
}

// Service provides route resolution and audit trail reads for promises.
type Service struct {
	store Store
	sync  *Synchronizer
	cache *cache.RouteCache // optional; nil disables caching
	log   *logger.Logger
}

// New creates a new promises service.
func New(store Store, sync *Synchronizer, log *logger.Logger) *Service {
	return &Service{store: store, sync: sync, log: log}
}

// SetRouteCache injects the redis route cache (set after construction so the
// service works without redis in development).
func (s *Service) SetRouteCache(c *cache.RouteCache) {
	s.cache = c
}

// Synchronizer exposes the stage synchronizer for module wiring.
func (s *Service) Synchronizer() *Synchronizer {
	return s.sync
}

// ResolveRoute computes the public route for a promise, serving from the
// route cache when possible. The cached value is trusted because every quote
// mutation invalidates it.
func (s *Service) ResolveRoute(ctx context.Context, tenantID, promiseID uuid.UUID) (domain.RouteTarget, error) {
	if _, err := s.store.GetPromise(ctx, tenantID, promiseID); err != nil {
		return "", err
	}

	if s.cache != nil {
		if tag, err := s.cache.Get(ctx, promiseID); err == nil {
			return domain.RouteTarget(tag), nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("route cache read failed", "promise_id", promiseID.String(), "error", err.Error())
		}
	}

	route, err := s.resolveFresh(ctx, tenantID, promiseID)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, promiseID, string(route)); err != nil {
			s.log.Warn("route cache write failed", "promise_id", promiseID.String(), "error", err.Error())
		}
	}
	return route, nil
}

// ResolveRouteByToken resolves the route for the prospect portal, addressed
// by the promise's public token. Always reads fresh state: the portal is the
// surface where a stale answer sends a prospect to a dead view.
func (s *Service) ResolveRouteByToken(ctx context.Context, token string) (domain.RouteTarget, *repository.Promise, error) {
	promise, err := s.store.GetPromiseByPublicToken(ctx, token)
	if err != nil {
		return "", nil, err
	}

	route, err := s.resolveFresh(ctx, promise.TenantID, promise.ID)
	if err != nil {
		return "", nil, err
	}
	return route, promise, nil
}

// CheckRoute reports whether a client-held route tag is still valid, and
// returns the currently correct target so the client can redirect in one
// round trip.
func (s *Service) CheckRoute(ctx context.Context, tenantID, promiseID uuid.UUID, tag domain.RouteTarget) (bool, domain.RouteTarget, error) {
	if _, err := s.store.GetPromise(ctx, tenantID, promiseID); err != nil {
		return false, "", err
	}

	quotes, err := s.store.ListQuoteSnapshots(ctx, tenantID, promiseID)
	if err != nil {
		return false, "", err
	}

	current := domain.ResolveRoute(quotes)
	return domain.IsRouteValid(tag, quotes), current, nil
}

// InvalidateRoute drops the cached route for a promise. Called from the quote
// mutation event handlers.
func (s *Service) InvalidateRoute(ctx context.Context, promiseID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, promiseID); err != nil {
		s.log.Warn("route cache invalidation failed", "promise_id", promiseID.String(), "error", err.Error())
	}
}

// StageHistory returns the promise's stage audit trail.
func (s *Service) StageHistory(ctx context.Context, tenantID, promiseID uuid.UUID) ([]repository.StageHistoryEntry, error) {
	if _, err := s.store.GetPromise(ctx, tenantID, promiseID); err != nil {
		return nil, err
	}
	return s.store.ListStageHistory(ctx, tenantID, promiseID)
}

// Stages returns the tenant's active stage catalog.
func (s *Service) Stages(ctx context.Context, tenantID uuid.UUID) ([]repository.PipelineStage, error) {
	return s.store.ListActiveStages(ctx, tenantID)
}

func (s *Service) resolveFresh(ctx context.Context, tenantID, promiseID uuid.UUID) (domain.RouteTarget, error) {
	quotes, err := s.store.ListQuoteSnapshots(ctx, tenantID, promiseID)
	if err != nil {
		return "", err
	}
	return domain.ResolveRoute(quotes), nil
}
