package repo

import (
	"context"
	"time"
)

// MetadataRepo executes model-generated SELECT statements against the
// session-scoped connection. Callers are expected to have validated the SQL
// already; the database role and row level security bound what it can reach.
type MetadataRepo struct {
	db Querier
}

func NewMetadataRepo(db Querier) *MetadataRepo {
	return &MetadataRepo{db: db}
}

func (r *MetadataRepo) QueryRows(ctx context.Context, sqlStr string) ([]string, [][]interface{}, error) {
	rows, err := r.db.QueryxContext(ctx, sqlStr)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var result [][]interface{}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			switch t := v.(type) {
			case []byte:
				vals[i] = string(t)
			case time.Time:
				vals[i] = t.UTC().Format(time.RFC3339)
			}
		}
		result = append(result, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, result, nil
}
