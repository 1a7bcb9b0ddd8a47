package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/log"
)

// Retry policy for serialization conflicts
const (
	maxTxAttempts  = 3
	baseTxBackoff  = 50 * time.Millisecond
	maxJitterRange = 25 * time.Millisecond
)

// TxFn runs inside a serializable transaction scope. All reads and writes
// through tx observe a consistent snapshot and commit atomically or not at
// all.
type TxFn func(tx *sql.Tx) error

// WithTransaction executes fn inside a serializable transaction, retrying
// the whole scope on serialization conflicts with exponential backoff and
// jitter. Exhausted retries surface common.ErrConflict; an expired context
// surfaces common.ErrTimeout.
func (i *Instance) WithTransaction(ctx context.Context, fn TxFn) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseTxBackoff << uint(attempt-1)
			backoff += time.Duration(rand.Int63n(int64(maxJitterRange)))
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", common.ErrTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = runInTx(ctx, db, fn)
		if lastErr == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", common.ErrTimeout, ctxErr)
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warnf(log.DatabaseMgr,
			"serialization conflict, retrying scope (attempt %d/%d): %v",
			attempt+1, maxTxAttempts, lastErr)
	}
	return fmt.Errorf("%w: retries exhausted: %v", common.ErrConflict, lastErr)
}

func runInTx(ctx context.Context, db *sql.DB, fn TxFn) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil &&
			!errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf(log.DatabaseMgr, "scope rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
