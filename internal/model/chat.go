package model

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage holds the serialized message delta produced by one agent run,
// one row per run, replayed in created_at order.
type ChatMessage struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   []byte    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
