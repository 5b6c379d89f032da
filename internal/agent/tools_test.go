package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/noteagent/internal/model"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

type fakeSearcher struct {
	notes []model.Note
	err   error

	gotDistance float64
	gotLimit    int
}

func (f *fakeSearcher) SearchByEmbedding(ctx context.Context, embedding []float32, maxDistance float64, limit int) ([]model.Note, error) {
	f.gotDistance = maxDistance
	f.gotLimit = limit
	return f.notes, f.err
}

func TestSearchNotesToolFormatsResults(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	searcher := &fakeSearcher{notes: []model.Note{
		{ID: 1, Content: "learn Go generics", CreatedAt: created},
		{ID: 2, Content: "buy coffee", CreatedAt: created.Add(24 * time.Hour)},
	}}
	tool := NewSearchNotesTool(&fakeEmbedder{vector: []float32{0.1, 0.2}}, searcher, SearchParams{MaxDistance: 0.5, MaxResults: 5})

	out, err := tool.Run(context.Background(), map[string]interface{}{"query": "golang"})
	require.NoError(t, err)
	require.Equal(t, "Content: learn Go generics\nCreated at: 2026-08-01\n\n\nContent: buy coffee\nCreated at: 2026-08-02\n", out)
	require.Equal(t, 0.5, searcher.gotDistance)
	require.Equal(t, 5, searcher.gotLimit)
}

func TestSearchNotesToolNoMatches(t *testing.T) {
	tool := NewSearchNotesTool(&fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{}, SearchParams{MaxDistance: 0.5, MaxResults: 5})

	out, err := tool.Run(context.Background(), map[string]interface{}{"query": "nothing"})
	require.NoError(t, err)
	require.Equal(t, "No matching notes found.", out)
}

func TestSearchNotesToolEmbedFailureIsRetryable(t *testing.T) {
	tool := NewSearchNotesTool(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeSearcher{}, SearchParams{})

	_, err := tool.Run(context.Background(), map[string]interface{}{"query": "golang"})
	_, retryable := AsRetryable(err)
	require.True(t, retryable)
}

func TestSearchNotesToolRepoFailureIsTerminal(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	tool := NewSearchNotesTool(&fakeEmbedder{vector: []float32{0.1}}, searcher, SearchParams{})

	_, err := tool.Run(context.Background(), map[string]interface{}{"query": "golang"})
	require.Error(t, err)
	_, retryable := AsRetryable(err)
	require.False(t, retryable)
}

func TestSearchNotesToolMissingArg(t *testing.T) {
	tool := NewSearchNotesTool(&fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{}, SearchParams{})

	_, err := tool.Run(context.Background(), map[string]interface{}{})
	_, retryable := AsRetryable(err)
	require.True(t, retryable)

	_, err = tool.Run(context.Background(), map[string]interface{}{"query": 42})
	_, retryable = AsRetryable(err)
	require.True(t, retryable)
}

type fakeQuerier struct {
	cols []string
	rows [][]interface{}
	err  error

	gotSQL string
}

func (f *fakeQuerier) QueryRows(ctx context.Context, sql string) ([]string, [][]interface{}, error) {
	f.gotSQL = sql
	return f.cols, f.rows, f.err
}

func TestQueryMetadataToolRejectsNonSelect(t *testing.T) {
	querier := &fakeQuerier{}
	tool := NewQueryMetadataTool(querier)

	_, err := tool.Run(context.Background(), map[string]interface{}{"query": "DELETE FROM notes"})
	re, retryable := AsRetryable(err)
	require.True(t, retryable)
	require.Equal(t, "Invalid SELECT SQL query", re.Reason)
	// Rejected queries never reach the database.
	require.Empty(t, querier.gotSQL)
}

func TestQueryMetadataToolEngineErrorIsRetryable(t *testing.T) {
	querier := &fakeQuerier{err: errors.New(`column "nonexistent" does not exist`)}
	tool := NewQueryMetadataTool(querier)

	_, err := tool.Run(context.Background(), map[string]interface{}{"query": "SELECT nonexistent FROM notes"})
	re, retryable := AsRetryable(err)
	require.True(t, retryable)
	require.Contains(t, re.Reason, "does not exist")
}

func TestQueryMetadataToolFormatsRows(t *testing.T) {
	querier := &fakeQuerier{
		cols: []string{"id", "created_at"},
		rows: [][]interface{}{
			{int64(1), "2026-08-01T00:00:00Z"},
			{int64(2), nil},
		},
	}
	tool := NewQueryMetadataTool(querier)

	out, err := tool.Run(context.Background(), map[string]interface{}{"query": "SELECT id, created_at FROM notes"})
	require.NoError(t, err)
	require.Equal(t, "columns: id, created_at\nrow: 1, 2026-08-01T00:00:00Z\nrow: 2, NULL", out)
}

func TestQueryMetadataToolNoRows(t *testing.T) {
	tool := NewQueryMetadataTool(&fakeQuerier{cols: []string{"id"}})

	out, err := tool.Run(context.Background(), map[string]interface{}{"query": "SELECT id FROM notes WHERE id = -1"})
	require.NoError(t, err)
	require.Equal(t, "No notes found.", out)
}
