package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gwskins/GWSkins_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		// Rolling back a committed transaction is the normal deferred path
		if !errors.Is(err, pgx.ErrTxClosed) {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}
}
