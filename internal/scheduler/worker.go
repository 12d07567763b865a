package scheduler

import (
	"context"
	"fmt"

	"studio_portal_backend/internal/events"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/internal/promises/service"
	"studio_portal_backend/platform/config"
	"studio_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sync   *service.Synchronizer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sync:   service.NewSynchronizer(repository.New(pool), bus, log),
		log:    log,
	}

	mux.HandleFunc(TaskPipelineSync, w.handlePipelineSync)

	return w, nil
}

func (w *Worker) handlePipelineSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePipelineSyncPayload(task)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	promiseID, err := uuid.Parse(payload.PromiseID)
	if err != nil {
		return err
	}

	var actorID *uuid.UUID
	if payload.ActorID != nil {
		id, err := uuid.Parse(*payload.ActorID)
		if err != nil {
			return err
		}
		actorID = &id
	}

	return w.sync.SyncChecked(ctx, tenantID, promiseID, actorID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
