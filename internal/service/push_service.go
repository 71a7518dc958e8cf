package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"userhub/internal/domain"
	"userhub/internal/push"
	"userhub/internal/repository"
)

type EnqueuePushInput struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// PushService queues notifications and delivers pending ones in batches.
type PushService interface {
	Enqueue(ctx context.Context, in EnqueuePushInput) (*domain.PushMessage, error)
	SendBatch(ctx context.Context, batchSize int) (push.BatchResult, error)
}

type PushConfig struct {
	// Concurrency bounds in-flight sends within one batch.
	Concurrency int
	Logger      logrus.FieldLogger
}

type pushService struct {
	messages repository.PushMessageRepository
	sender   push.Sender
	cfg      PushConfig
}

func NewPushService(messages repository.PushMessageRepository, sender push.Sender, cfg PushConfig) PushService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &pushService{messages: messages, sender: sender, cfg: cfg}
}

func (s *pushService) Enqueue(ctx context.Context, in EnqueuePushInput) (*domain.PushMessage, error) {
	if strings.TrimSpace(in.Token) == "" {
		return nil, domain.NewValidationError("token is required")
	}
	msg := &domain.PushMessage{
		Token:  in.Token,
		Title:  in.Title,
		Body:   in.Body,
		Data:   in.Data,
		Status: domain.PushStatusPending,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("queue push message: %w", err)
	}
	return msg, nil
}

// SendBatch delivers up to batchSize pending messages and marks each one sent or
// failed. A send failure only fails that message; a repository failure aborts
// the batch.
func (s *pushService) SendBatch(ctx context.Context, batchSize int) (push.BatchResult, error) {
	pending, err := s.messages.FindPending(ctx, batchSize)
	if err != nil {
		return push.BatchResult{}, fmt.Errorf("find pending push messages: %w", err)
	}
	if len(pending) == 0 {
		s.cfg.Logger.Debug("no pending push messages")
		return push.BatchResult{}, nil
	}
	s.cfg.Logger.Infof("processing %d push messages", len(pending))

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, msg := range pending {
		g.Go(func() error {
			sendErr := s.sender.Send(gctx, push.Message{
				Token: msg.Token,
				Title: msg.Title,
				Body:  msg.Body,
				Data:  msg.Data,
			})
			if sendErr != nil {
				s.cfg.Logger.WithError(sendErr).WithField("message_id", msg.ID).Warn("push send failed")
				if err := s.messages.MarkFailed(gctx, msg.ID, sendErr.Error()); err != nil {
					return fmt.Errorf("mark push message %s failed: %w", msg.ID, err)
				}
				failed.Add(1)
				return nil
			}
			if err := s.messages.MarkSent(gctx, msg.ID); err != nil {
				return fmt.Errorf("mark push message %s sent: %w", msg.ID, err)
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return push.BatchResult{}, err
	}

	res := push.BatchResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
	s.cfg.Logger.WithFields(logrus.Fields{"sent": res.Sent, "failed": res.Failed}).Info("push batch completed")
	return res, nil
}
