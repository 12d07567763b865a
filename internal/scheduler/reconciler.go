package scheduler

import (
	"context"
	"time"

	"studio_portal_backend/internal/events"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/internal/promises/service"
	"studio_portal_backend/platform/config"
	"studio_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const reconcileConcurrency = 4

// Reconciler periodically re-derives the pipeline stage of every promise
// whose quotes changed within the lookback window. It catches anything the
// event path and the task queue both missed; stage writes are idempotent so
// re-deriving an already-correct promise is a no-op.
type Reconciler struct {
	repo     *repository.Repository
	sync     *service.Synchronizer
	interval time.Duration
	window   time.Duration
	log      *logger.Logger
}

func NewReconciler(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Reconciler {
	repo := repository.New(pool)
	return &Reconciler{
		repo:     repo,
		sync:     service.NewSynchronizer(repo, bus, log),
		interval: cfg.GetReconcileInterval(),
		window:   cfg.GetReconcileWindow(),
		log:      log,
	}
}

// Run blocks until the context is canceled, reconciling on every tick.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("pipeline reconciler disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcileOnce(ctx)
		}
	}
}

func (r *Reconciler) reconcileOnce(ctx context.Context) {
	refs, err := r.repo.ListRecentlyTouchedPromises(ctx, r.window)
	if err != nil {
		r.log.Error("reconcile: list promises", "error", err)
		return
	}
	if len(refs) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for _, ref := range refs {
		g.Go(func() error {
			// Sync is fail-soft; one bad promise never stops the sweep.
			r.sync.Sync(gctx, ref.TenantID, ref.ID, nil)
			return nil
		})
	}
	_ = g.Wait()

	r.log.Info("pipeline reconcile sweep finished", "promises", len(refs))
}
