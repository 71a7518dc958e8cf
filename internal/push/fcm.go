package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMConfig selects the Firebase project. CredentialsFile is a service account
// JSON file; when it is empty, application default credentials are used.
type FCMConfig struct {
	CredentialsFile string
	ProjectID       string
}

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender sends through the Firebase Admin messaging client, which refreshes
// its OAuth2 token on its own.
type FCMSender struct {
	client messagingClient
}

func NewFCMSender(ctx context.Context, cfg FCMConfig) (*FCMSender, error) {
	if cfg.CredentialsFile == "" && cfg.ProjectID == "" {
		return nil, ErrNotConfigured
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return newFCMSender(client), nil
}

func newFCMSender(client messagingClient) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("fcm token unregistered: %w", err)
		}
		return fmt.Errorf("send fcm message: %w", err)
	}
	return nil
}
