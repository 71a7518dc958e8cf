package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

const createPushMessagesTable = `
CREATE TABLE IF NOT EXISTS push_messages (
	id TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	data TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	sent_at DATETIME NULL
);
CREATE INDEX IF NOT EXISTS idx_push_messages_status ON push_messages(status);
`

type PushMessageRepository struct {
	db *sql.DB
}

func NewPushMessageRepository(db *sql.DB) *PushMessageRepository {
	return &PushMessageRepository{db: db}
}

var _ repository.PushMessageRepository = (*PushMessageRepository)(nil)

func (r *PushMessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPushMessagesTable); err != nil {
		return fmt.Errorf("create push_messages table: %w", err)
	}
	return nil
}

func (r *PushMessageRepository) Create(ctx context.Context, msg *domain.PushMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = domain.PushStatusPending
	}
	msg.CreatedAt = time.Now().UTC()

	data := "{}"
	if len(msg.Data) > 0 {
		b, err := json.Marshal(msg.Data)
		if err != nil {
			return fmt.Errorf("encode push data: %w", err)
		}
		data = string(b)
	}

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO push_messages (id, token, title, body, data, status, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Token,
		msg.Title,
		msg.Body,
		data,
		string(msg.Status),
		msg.ErrorMessage,
		msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert push message: %w", err)
	}
	return nil
}

// FindPending returns up to limit pending messages, oldest first.
func (r *PushMessageRepository) FindPending(ctx context.Context, limit int) ([]domain.PushMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, token, title, body, data, status, error_message, created_at, sent_at
FROM push_messages
WHERE status = ?
ORDER BY created_at ASC, rowid ASC
LIMIT ?`,
		string(domain.PushStatusPending),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending push messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.PushMessage{}
	for rows.Next() {
		var (
			msg    domain.PushMessage
			data   string
			status string
			sentAt sql.NullTime
		)
		if err := rows.Scan(&msg.ID, &msg.Token, &msg.Title, &msg.Body, &data, &status, &msg.ErrorMessage, &msg.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("scan push message: %w", err)
		}
		msg.Status = domain.PushStatus(status)
		if sentAt.Valid {
			msg.SentAt = &sentAt.Time
		}
		if data != "" && data != "{}" {
			if err := json.Unmarshal([]byte(data), &msg.Data); err != nil {
				return nil, fmt.Errorf("decode push data: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push messages: %w", err)
	}
	return messages, nil
}

func (r *PushMessageRepository) MarkSent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE push_messages
SET status = ?, sent_at = ?, error_message = ''
WHERE id = ?`,
		string(domain.PushStatusSent),
		time.Now().UTC(),
		id,
	); err != nil {
		return fmt.Errorf("mark push message sent: %w", err)
	}
	return nil
}

func (r *PushMessageRepository) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE push_messages
SET status = ?, error_message = ?
WHERE id = ?`,
		string(domain.PushStatusFailed),
		errorMessage,
		id,
	); err != nil {
		return fmt.Errorf("mark push message failed: %w", err)
	}
	return nil
}
