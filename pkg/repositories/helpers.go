package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/LugiaKB/cinemind-backend/pkg/database"
)

// Conn is what repositories need from the database: a querier bound to the
// caller's transaction (if any) and the ability to open one.
type Conn interface {
	database.TxRunner
	Querier(ctx context.Context) database.Querier
}

var _ Conn = (*database.DB)(nil)

// isUniqueViolation checks for PostgreSQL error code 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// jsonbValue marshals v for a JSONB column.
func jsonbValue(v any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}
