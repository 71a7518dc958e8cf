package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessaging struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeMessaging) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	if f.err != nil {
		return "", f.err
	}
	return "projects/p/messages/1", nil
}

func TestFCMSenderSend(t *testing.T) {
	client := &fakeMessaging{}
	sender := newFCMSender(client)

	err := sender.Send(context.Background(), Message{
		Token: "device-1",
		Title: "Hello",
		Body:  "World",
		Data:  map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	got := client.sent[0]
	assert.Equal(t, "device-1", got.Token)
	require.NotNil(t, got.Notification)
	assert.Equal(t, "Hello", got.Notification.Title)
	assert.Equal(t, "World", got.Notification.Body)
	assert.Equal(t, "v", got.Data["k"])
}

func TestFCMSenderError(t *testing.T) {
	cause := errors.New("requested entity was not found")
	sender := newFCMSender(&fakeMessaging{err: cause})

	err := sender.Send(context.Background(), Message{Token: "gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "send fcm message: requested entity was not found", err.Error())
}

func TestFCMSenderRequiresCredentials(t *testing.T) {
	_, err := NewFCMSender(context.Background(), FCMConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, DisabledSender().Send(context.Background(), Message{}), ErrNotConfigured)
}

func TestFCMSenderMissingCredentialsFile(t *testing.T) {
	_, err := NewFCMSender(context.Background(), FCMConfig{CredentialsFile: "does-not-exist.json", ProjectID: "p"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
