package repo

import (
	"context"

	"github.com/google/uuid"
)

type ChatMessageRepo struct {
	db Querier
}

func NewChatMessageRepo(db Querier) *ChatMessageRepo {
	return &ChatMessageRepo{db: db}
}

// Append stores the serialized delta of one agent run as a single row.
func (r *ChatMessageRepo) Append(ctx context.Context, chatID int64, userID uuid.UUID, payload []byte) error {
	const query = `INSERT INTO chat_messages (chat_id, user_id, message) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, chatID, userID, payload)
	return err
}

// ListPayloads returns every stored delta for a chat in creation order. The
// id tiebreak keeps runs persisted within the same timestamp stable.
func (r *ChatMessageRepo) ListPayloads(ctx context.Context, chatID int64) ([][]byte, error) {
	const query = `
		SELECT message
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryxContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payloads := make([][]byte, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, rows.Err()
}
