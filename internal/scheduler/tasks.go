// Package scheduler provides the asynq task definitions, client and worker
// for durable pipeline stage synchronization.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskPipelineSync re-derives one promise's pipeline stage. Enqueued as a
// durable backstop behind the in-process event path, so a crash between the
// quote write and the stage write still converges after restart.
const TaskPipelineSync = "pipeline.sync"

type PipelineSyncPayload struct {
	TenantID  string  `json:"tenantId"`
	PromiseID string  `json:"promiseId"`
	ActorID   *string `json:"actorId,omitempty"`
}

func NewPipelineSyncTask(payload PipelineSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPipelineSync, data), nil
}

func ParsePipelineSyncPayload(task *asynq.Task) (PipelineSyncPayload, error) {
	var payload PipelineSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PipelineSyncPayload{}, err
	}
	return payload, nil
}
