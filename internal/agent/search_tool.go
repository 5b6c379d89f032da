package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/noteagent/internal/ai"
	"github.com/xxxsen/noteagent/internal/model"
)

// NoteSearcher retrieves the notes closest to a query vector, strictly below
// maxDistance in cosine distance, closest first, at most limit of them.
type NoteSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, maxDistance float64, limit int) ([]model.Note, error)
}

type SearchParams struct {
	MaxDistance float64
	MaxResults  int
}

// NewSearchNotesTool builds the semantic search tool. An embedding failure is
// retryable: the model may rephrase and try again.
func NewSearchNotesTool(embedder ai.IEmbedder, notes NoteSearcher, params SearchParams) Tool {
	return Tool{
		Decl: ai.ToolDecl{
			Name:        "search_notes",
			Description: "Searches notes using semantic search based on the query.",
			Params: []ai.ToolParam{
				{Name: "query", Description: "Natural language query to search for.", Required: true},
			},
		},
		Run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}
			embedding, err := embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
			if err != nil {
				return "", Retryablef("failed to generate embedding: %v", err)
			}
			found, err := notes.SearchByEmbedding(ctx, embedding, params.MaxDistance, params.MaxResults)
			if err != nil {
				return "", fmt.Errorf("search notes: %w", err)
			}
			if len(found) == 0 {
				return "No matching notes found.", nil
			}
			blocks := make([]string, 0, len(found))
			for _, note := range found {
				blocks = append(blocks, fmt.Sprintf("Content: %s\nCreated at: %s\n", note.Content, note.CreatedAt.Format("2006-01-02")))
			}
			return strings.Join(blocks, "\n\n"), nil
		},
	}
}
