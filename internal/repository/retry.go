package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
)

const DefaultMaxAttempts = 5

// RunInTx runs fn in a store transaction, re-running the whole function when
// the commit conflicts, at most maxAttempts times. Exhaustion is reported as
// models.ErrConflict. Other errors abort immediately.
func RunInTx(ctx context.Context, s Store, maxAttempts int, fn func(ctx context.Context, tx Tx) error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = s.RunInTx(ctx, fn)
		if !errors.Is(err, ErrTxConflict) {
			return err
		}
		metrics.TxConflicts.Inc()
		slog.DebugContext(ctx, "tx conflict, retrying", "attempt", attempt)
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", models.ErrConflict, maxAttempts, err)
}
