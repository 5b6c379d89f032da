package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"

	"github.com/xxxsen/noteagent/internal/model"
	"github.com/xxxsen/noteagent/internal/pkg/dbutil"
	"github.com/xxxsen/noteagent/internal/pkg/errs"
)

type ChatRepo struct {
	db Querier
}

func NewChatRepo(db Querier) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Create(ctx context.Context, userID uuid.UUID, title string) (*model.Chat, error) {
	const query = `
		INSERT INTO chat (title, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	chat := &model.Chat{Title: title, UserID: userID}
	row := r.db.QueryRowxContext(ctx, query, title, userID)
	if err := row.Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepo) Get(ctx context.Context, id int64) (*model.Chat, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("chat", where, []string{"id", "title", "user_id", "created_at", "updated_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowxContext(ctx, sqlStr, args...)
	var chat model.Chat
	if err := row.Scan(&chat.ID, &chat.Title, &chat.UserID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepo) List(ctx context.Context) ([]model.Chat, error) {
	where := map[string]interface{}{"_orderby": "updated_at desc"}
	sqlStr, args, err := builder.BuildSelect("chat", where, []string{"id", "title", "user_id", "created_at", "updated_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chats := make([]model.Chat, 0)
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.UserID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}
