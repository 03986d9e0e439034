package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
)

// WithTx runs fn inside a transaction begun on s and commits it when fn
// returns nil. The unit of work is detached from the caller's cancellation
// and bounded by timeout instead, so a started transaction always ends in a
// commit or a rollback. Errors outside the domain taxonomy come back wrapped
// in domain.ErrStorageFailure.
func WithTx(ctx context.Context, s Store, timeout time.Duration, fn func(ctx context.Context, tx Tx) error) error {
	ctx = context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("WithTx: begin: %w", asStorageFailure(err))
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.FromContext(ctx).Error("rollback failed", "error", rbErr, "cause", err)
		}
		return asStorageFailure(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("WithTx: commit: %w", asStorageFailure(err))
	}
	return nil
}

func asStorageFailure(err error) error {
	if domain.IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}
