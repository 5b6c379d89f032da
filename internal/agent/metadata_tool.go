package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/noteagent/internal/ai"
)

// RowQuerier executes already-validated SQL and returns columns plus value
// rows. The connection it runs on carries the caller's row-security scope.
type RowQuerier interface {
	QueryRows(ctx context.Context, sql string) ([]string, [][]interface{}, error)
}

// NewQueryMetadataTool builds the SQL metadata tool. Both a validator reject
// and an engine error (for example an unknown column in otherwise valid
// syntax) come back as retryable failures carrying the reason, so the model
// can revise the query and resubmit.
func NewQueryMetadataTool(querier RowQuerier) Tool {
	return Tool{
		Decl: ai.ToolDecl{
			Name:        "query_notes_metadata",
			Description: "Queries note metadata using SQL based on the query.",
			Params: []ai.ToolParam{
				{Name: "query", Description: "SQL SELECT query to run against the notes table.", Required: true},
			},
		},
		Run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}
			if !IsValidSelect(query) {
				return "", Retryablef("Invalid SELECT SQL query")
			}
			cols, rows, err := querier.QueryRows(ctx, query)
			if err != nil {
				return "", Retryablef("Failed to query notes metadata: %v", err)
			}
			if len(rows) == 0 {
				return "No notes found.", nil
			}
			return formatRows(cols, rows), nil
		},
	}
}

func formatRows(cols []string, rows [][]interface{}) string {
	var sb strings.Builder
	sb.WriteString("columns: ")
	sb.WriteString(strings.Join(cols, ", "))
	for _, row := range rows {
		values := make([]string, 0, len(row))
		for _, value := range row {
			if value == nil {
				values = append(values, "NULL")
				continue
			}
			values = append(values, fmt.Sprintf("%v", value))
		}
		sb.WriteString("\nrow: ")
		sb.WriteString(strings.Join(values, ", "))
	}
	return sb.String()
}
