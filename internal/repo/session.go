package repo

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Session pins one pooled connection for the duration of a request and scopes
// it to the calling user via row level security. The role and the identity
// claim are set once per request; every query issued through the session,
// including model-generated SQL, runs under that scope.
type Session struct {
	conn *sqlx.Conn
}

func OpenSession(ctx context.Context, db *sqlx.DB, userID uuid.UUID) (*Session, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "SET ROLE authenticated"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set role: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "SELECT set_config('request.jwt.claim.sub', $1, false)", userID.String()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set identity claim: %w", err)
	}
	return &Session{conn: conn}, nil
}

func (s *Session) Conn() *sqlx.Conn {
	return s.conn
}

// Close resets the role and the identity claim before the connection goes back
// to the pool. A connection that cannot be reset is discarded so a later
// request can never observe another user's scope.
func (s *Session) Close() error {
	ctx := context.Background()
	_, resetErr := s.conn.ExecContext(ctx, "RESET ROLE")
	if resetErr == nil {
		_, resetErr = s.conn.ExecContext(ctx, "SELECT set_config('request.jwt.claim.sub', '', false)")
	}
	if resetErr != nil {
		logutil.GetLogger(ctx).Warn("failed to reset session scope, discarding connection", zap.Error(resetErr))
		_ = s.conn.Raw(func(driverConn interface{}) error {
			return driver.ErrBadConn
		})
	}
	return s.conn.Close()
}
