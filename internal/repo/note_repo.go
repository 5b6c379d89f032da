package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/noteagent/internal/model"
	"github.com/xxxsen/noteagent/internal/pkg/errs"
)

type NoteRepo struct {
	db Querier
}

func NewNoteRepo(db Querier) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Create(ctx context.Context, userID uuid.UUID, content string, embedding []float32) (*model.Note, error) {
	const query = `
		INSERT INTO notes (user_id, content, embedding)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	note := &model.Note{
		UserID:    userID,
		Content:   content,
		Embedding: embedding,
	}
	var vec interface{}
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}
	row := r.db.QueryRowxContext(ctx, query, userID, content, vec)
	if err := row.Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	return note, nil
}

func (r *NoteRepo) Get(ctx context.Context, id int64) (*model.Note, error) {
	const query = `SELECT id, user_id, content, created_at, updated_at FROM notes WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	var note model.Note
	if err := row.Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// SearchByEmbedding returns the notes closest to the query vector by cosine
// distance, strictly below maxDistance, closest first. Row visibility is the
// session's concern, not this query's.
func (r *NoteRepo) SearchByEmbedding(ctx context.Context, embedding []float32, maxDistance float64, limit int) ([]model.Note, error) {
	const query = `
		SELECT id, user_id, content, created_at, updated_at
		FROM notes
		WHERE embedding IS NOT NULL AND embedding <=> $1 < $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := r.db.QueryxContext(ctx, query, pgvector.NewVector(embedding), maxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notes := make([]model.Note, 0)
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
