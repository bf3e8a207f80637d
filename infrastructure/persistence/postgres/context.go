// Package postgres is the PostgreSQL adapter for the Order repository and
// the outbox writer, and holds the pool and migration helpers. Its pgx use is
// grounded on the pgxpool usage pattern in the pack's
// notification service (the teacher's own persistence layer used GORM over
// MySQL, which cannot express the row-level SKIP LOCKED semantics this
// module's dispatcher needs).
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// TxFromContext retrieves the pgx transaction attached to ctx, or nil if
// none is present.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// ContextWithTx returns a new context carrying tx.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}
