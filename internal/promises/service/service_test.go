package service

import (
	"context"
	"testing"
	"time"

	"studio_portal_backend/internal/promises/domain"
	"studio_portal_backend/platform/apperr"
	"studio_portal_backend/platform/cache"
	"studio_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testService(store *fakeStore) *Service {
	log := logger.New("development")
	return New(store, NewSynchronizer(store, nil, log), log)
}

func TestResolveRoute_FreshResolution(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	store.quotes = []domain.QuoteSnapshot{
		snap("negotiation", falsePtr()),
		snap("pending", nil),
	}
	svc := testService(store)

	route, err := svc.ResolveRoute(context.Background(), tenantID, store.promise.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if route != domain.RouteNegotiation {
		t.Fatalf("route = %q, want %q", route, domain.RouteNegotiation)
	}
}

func TestResolveRoute_UnknownPromise(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	svc := testService(store)

	_, err := svc.ResolveRoute(context.Background(), tenantID, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveRoute_WrongTenantIsNotFound(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	svc := testService(store)

	_, err := svc.ResolveRoute(context.Background(), uuid.New(), store.promise.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign tenant, got %v", err)
	}
}

func TestResolveRoute_ServesFromCacheUntilInvalidated(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	store.quotes = []domain.QuoteSnapshot{snap("pending", nil)}

	mr := miniredis.RunT(t)
	routeCache := cache.NewRouteCacheWithClient(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}), 5*time.Minute)

	svc := testService(store)
	svc.SetRouteCache(routeCache)
	ctx := context.Background()

	first, err := svc.ResolveRoute(ctx, tenantID, store.promise.ID)
	if err != nil || first != domain.RoutePending {
		t.Fatalf("first resolution = %q, %v", first, err)
	}

	// A quote mutation happened, but without invalidation the cache still
	// answers with the old route.
	store.quotes = []domain.QuoteSnapshot{snap("closing", nil)}
	stale, err := svc.ResolveRoute(ctx, tenantID, store.promise.ID)
	if err != nil || stale != domain.RoutePending {
		t.Fatalf("expected stale cached route, got %q, %v", stale, err)
	}

	svc.InvalidateRoute(ctx, store.promise.ID)
	fresh, err := svc.ResolveRoute(ctx, tenantID, store.promise.ID)
	if err != nil || fresh != domain.RouteClosing {
		t.Fatalf("expected fresh route after invalidation, got %q, %v", fresh, err)
	}
}

func TestResolveRouteByToken(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	store.quotes = []domain.QuoteSnapshot{snap("closing", nil)}
	svc := testService(store)

	route, promise, err := svc.ResolveRouteByToken(context.Background(), store.promise.PublicToken)
	if err != nil {
		t.Fatalf("resolve by token failed: %v", err)
	}
	if route != domain.RouteClosing {
		t.Fatalf("route = %q, want closing-view", route)
	}
	if promise.ID != store.promise.ID {
		t.Fatal("wrong promise returned")
	}

	if _, _, err := svc.ResolveRouteByToken(context.Background(), "bogus"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for bogus token, got %v", err)
	}
}

func TestCheckRoute(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	store.quotes = []domain.QuoteSnapshot{snap("negotiation", nil)}
	svc := testService(store)
	ctx := context.Background()

	valid, current, err := svc.CheckRoute(ctx, tenantID, store.promise.ID, domain.RouteNegotiation)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !valid || current != domain.RouteNegotiation {
		t.Fatalf("expected valid negotiation route, got valid=%v current=%q", valid, current)
	}

	valid, current, err = svc.CheckRoute(ctx, tenantID, store.promise.ID, domain.RoutePending)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if valid {
		t.Fatal("pending tag should be stale while negotiation is open")
	}
	if current != domain.RouteNegotiation {
		t.Fatalf("expected current route negotiation, got %q", current)
	}
}

func TestStageHistory_RequiresExistingPromise(t *testing.T) {
	tenantID := uuid.New()
	store := newFakeStore(tenantID, "pending")
	svc := testService(store)

	if _, err := svc.StageHistory(context.Background(), tenantID, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
