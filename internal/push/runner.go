package push

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type RunnerConfig struct {
	Interval  time.Duration
	BatchSize int
	Logger    *logrus.Logger
}

// Runner calls a Batcher on a fixed interval until shut down. Runs never overlap.
type Runner struct {
	cfg     RunnerConfig
	batcher Batcher

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewRunner(cfg RunnerConfig, batcher Batcher) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Runner{cfg: cfg, batcher: batcher}
}

func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(runCtx)
	r.cfg.Logger.Infof("push runner started (interval %s, batch size %d)", r.cfg.Interval, r.cfg.BatchSize)
}

func (r *Runner) Shutdown() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	r.cfg.Logger.Info("push runner stopped")
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if _, err := r.batcher.SendBatch(ctx, r.cfg.BatchSize); err != nil && ctx.Err() == nil {
		r.cfg.Logger.WithError(err).Error("push batch failed")
	}
}
