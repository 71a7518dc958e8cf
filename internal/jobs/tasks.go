package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"userhub/internal/push"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPushBatch delivers one batch of pending push messages.
	TaskPushBatch = "push:batch"
)

const defaultPushBatchSize = 100

// PushBatchPayload carries options for a push batch run.
type PushBatchPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewPushBatchTask builds a push batch task.
func NewPushBatchTask(batchSize int) (*asynq.Task, error) {
	body, err := json.Marshal(PushBatchPayload{BatchSize: batchSize})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPushBatch, body, asynq.Queue(QueueDefault)), nil
}

// PushBatchJob hands queued push batch tasks to a push.Batcher.
type PushBatchJob struct {
	Batcher push.Batcher
	Logger  logrus.FieldLogger
}

func NewPushBatchJob(batcher push.Batcher, logger logrus.FieldLogger) *PushBatchJob {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PushBatchJob{Batcher: batcher, Logger: logger}
}

// Handle processes TaskPushBatch tasks.
func (j *PushBatchJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Batcher == nil {
		return errors.New("push batch: handler not configured")
	}
	var payload PushBatchPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode push batch payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = defaultPushBatchSize
	}

	res, err := j.Batcher.SendBatch(ctx, payload.BatchSize)
	if err != nil {
		return fmt.Errorf("send push batch: %w", err)
	}
	if res.Sent+res.Failed > 0 {
		j.Logger.WithFields(logrus.Fields{
			"sent":   res.Sent,
			"failed": res.Failed,
		}).Info("push batch processed")
	}
	return nil
}
