package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/model"
	"github.com/xxxsen/noteagent/internal/pkg/errs"
	"github.com/xxxsen/noteagent/internal/repo"
)

type NoteService struct {
	db           *sqlx.DB
	embedder     ai.IEmbedder
	embeddingDim int
	md           goldmark.Markdown
}

func NewNoteService(db *sqlx.DB, embedder ai.IEmbedder, embeddingDim int) *NoteService {
	return &NoteService{
		db:           db,
		embedder:     embedder,
		embeddingDim: embeddingDim,
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Create embeds the content synchronously and persists the note with its
// vector; a note row never exists without one.
func (s *NoteService) Create(ctx context.Context, userID uuid.UUID, content string) (*model.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ErrInvalid
	}
	embedding, err := s.embedder.Embed(ctx, content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		logutil.GetLogger(ctx).Error("failed to generate note embedding", zap.Error(err))
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	if len(embedding) != s.embeddingDim {
		return nil, fmt.Errorf("unexpected embedding dimension %d, want %d", len(embedding), s.embeddingDim)
	}
	sess, err := repo.OpenSession(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	note, err := repo.NewNoteRepo(sess.Conn()).Create(ctx, userID, content, embedding)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	logutil.GetLogger(ctx).Info("note created", zap.Int64("note_id", note.ID))
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Note, error) {
	sess, err := repo.OpenSession(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return repo.NewNoteRepo(sess.Conn()).Get(ctx, id)
}

// ExportHTML renders the note content (treated as markdown) to HTML.
func (s *NoteService) ExportHTML(ctx context.Context, userID uuid.UUID, id int64) (string, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := s.md.Convert([]byte(note.Content), &out); err != nil {
		return "", fmt.Errorf("render note: %w", err)
	}
	return out.String(), nil
}
