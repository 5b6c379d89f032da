package repo

import (
	"github.com/jmoiron/sqlx"
)

// Querier is the subset of sqlx that the repos use. Unlike sqlx.ExtContext it
// omits the named-parameter binder, so both *sqlx.DB and the pinned *sqlx.Conn
// of a Session satisfy it.
type Querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}
