package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

const accountCols = `kind, id, display_name, balance, is_frozen, tier, plan, pin_hash, plan_updated_at, created_at`

func getAccount(ctx context.Context, q querier, ref models.AccountRef) (models.Account, error) {
	var a models.Account
	err := q.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE kind=$1 AND id=$2`,
		ref.Kind, ref.ID,
	).Scan(&a.Kind, &a.ID, &a.DisplayName, &a.Balance, &a.IsFrozen, &a.Tier, &a.Plan, &a.PinHash, &a.PlanUpdatedAt, &a.CreatedAt)
	return a, notFound(err, fmt.Errorf("%w: account %s", models.ErrNotFound, ref))
}

// incrementBalance: amount = amount + delta; CHECK (balance >= 0) backs the
// ledger's pre-read.
func incrementBalance(ctx context.Context, q querier, ref models.AccountRef, delta int64) error {
	ct, err := q.Exec(ctx,
		`UPDATE accounts SET balance = balance + $3 WHERE kind=$1 AND id=$2`,
		ref.Kind, ref.ID, delta,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
	}
	return nil
}

func setMerchantPlan(ctx context.Context, q querier, merchantID string, plan models.Plan, at time.Time) error {
	ct, err := q.Exec(ctx,
		`UPDATE accounts SET plan=$2, plan_updated_at=$3 WHERE kind='merchant' AND id=$1`,
		merchantID, plan, at,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: merchant %s", models.ErrNotFound, merchantID)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error) {
	return getAccount(ctx, s.pool, ref)
}
