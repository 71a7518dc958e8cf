package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/push"
)

type recordingBatcher struct {
	sizes  []int
	result push.BatchResult
	err    error
}

func (b *recordingBatcher) SendBatch(ctx context.Context, batchSize int) (push.BatchResult, error) {
	b.sizes = append(b.sizes, batchSize)
	return b.result, b.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestPushBatchJob_UsesPayloadBatchSize(t *testing.T) {
	batcher := &recordingBatcher{result: push.BatchResult{Sent: 2}}
	job := NewPushBatchJob(batcher, quietLogger())

	task, err := NewPushBatchTask(25)
	require.NoError(t, err)
	assert.Equal(t, TaskPushBatch, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []int{25}, batcher.sizes)
}

func TestPushBatchJob_DefaultsBatchSize(t *testing.T) {
	batcher := &recordingBatcher{}
	job := NewPushBatchJob(batcher, quietLogger())

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskPushBatch, nil)))
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskPushBatch, []byte(`{"batch_size":0}`))))
	assert.Equal(t, []int{defaultPushBatchSize, defaultPushBatchSize}, batcher.sizes)
}

func TestPushBatchJob_BadPayloadSkipsRetry(t *testing.T) {
	job := NewPushBatchJob(&recordingBatcher{}, quietLogger())

	err := job.Handle(context.Background(), asynq.NewTask(TaskPushBatch, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPushBatchJob_PropagatesBatchError(t *testing.T) {
	boom := errors.New("db down")
	job := NewPushBatchJob(&recordingBatcher{err: boom}, quietLogger())

	err := job.Handle(context.Background(), asynq.NewTask(TaskPushBatch, nil))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestPushBatchJob_NotConfigured(t *testing.T) {
	var job *PushBatchJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskPushBatch, nil)))
}

func TestServeMuxRoutesPushBatch(t *testing.T) {
	batcher := &recordingBatcher{}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPushBatch, NewPushBatchJob(batcher, quietLogger()).Handle)

	task, err := NewPushBatchTask(5)
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []int{5}, batcher.sizes)
}
