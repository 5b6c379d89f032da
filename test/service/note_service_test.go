package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/noteagent/internal/pkg/errs"
	"github.com/xxxsen/noteagent/internal/service"
	"github.com/xxxsen/noteagent/test/testutil"
)

const embeddingDim = 768

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vector, nil
}

func (f *fixedEmbedder) ModelName() string { return "fixed" }

func unitEmbedding() []float32 {
	v := make([]float32, embeddingDim)
	v[0] = 1
	return v
}

func TestNoteServiceCreateAndGet(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	notes := service.NewNoteService(conn, &fixedEmbedder{vector: unitEmbedding()}, embeddingDim)
	userID := uuid.New()

	note, err := notes.Create(context.Background(), userID, "# Heading\n\nsome text")
	require.NoError(t, err)
	require.NotZero(t, note.ID)

	fetched, err := notes.Get(context.Background(), userID, note.ID)
	require.NoError(t, err)
	require.Equal(t, "# Heading\n\nsome text", fetched.Content)

	// Other users never see the note.
	_, err = notes.Get(context.Background(), uuid.New(), note.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNoteServiceRejectsEmptyContent(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	notes := service.NewNoteService(conn, &fixedEmbedder{vector: unitEmbedding()}, embeddingDim)

	_, err := notes.Create(context.Background(), uuid.New(), "   \n\t")
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestNoteServiceRejectsWrongDimension(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	notes := service.NewNoteService(conn, &fixedEmbedder{vector: []float32{1, 2, 3}}, embeddingDim)

	_, err := notes.Create(context.Background(), uuid.New(), "content")
	require.Error(t, err)
	require.Contains(t, err.Error(), "dimension")
}

func TestNoteServiceExportHTML(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	notes := service.NewNoteService(conn, &fixedEmbedder{vector: unitEmbedding()}, embeddingDim)
	userID := uuid.New()

	note, err := notes.Create(context.Background(), userID, "# Title\n\n- item")
	require.NoError(t, err)

	html, err := notes.ExportHTML(context.Background(), userID, note.ID)
	require.NoError(t, err)
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "<li>item</li>")
}
