// Package ledger is the only writer of account balances. Every adjustment is
// an additive increment issued inside the caller's store transaction.
package ledger

import (
	"context"
	"fmt"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// Leg is one balance movement. Positive deltas credit, negative debit.
type Leg struct {
	Account models.AccountRef
	Delta   int64
}

func Credit(ref models.AccountRef, amount int64) Leg { return Leg{Account: ref, Delta: amount} }
func Debit(ref models.AccountRef, amount int64) Leg  { return Leg{Account: ref, Delta: -amount} }

type Ledger struct{}

func New() *Ledger { return &Ledger{} }

// Adjust applies a single leg. A zero delta is a caller error here.
func (l *Ledger) Adjust(ctx context.Context, tx repository.Tx, ref models.AccountRef, delta int64) error {
	if delta == 0 {
		return fmt.Errorf("%w: zero adjustment on %s", models.ErrValidation, ref)
	}
	return l.Apply(ctx, tx, Leg{Account: ref, Delta: delta})
}

// Apply reads every touched account, refuses the whole set if any balance
// would end below zero, then issues the increments. Reads precede writes so
// the enclosing transaction detects concurrent changes to those balances.
// Zero legs move nothing and are skipped.
func (l *Ledger) Apply(ctx context.Context, tx repository.Tx, legs ...Leg) error {
	if len(legs) == 0 {
		return nil
	}
	net := map[models.AccountRef]int64{}
	var order []models.AccountRef
	for _, leg := range legs {
		if err := leg.Account.Validate(); err != nil {
			return err
		}
		if leg.Delta == 0 {
			continue
		}
		if _, seen := net[leg.Account]; !seen {
			order = append(order, leg.Account)
		}
		net[leg.Account] += leg.Delta
	}

	for _, ref := range order {
		acc, err := tx.GetAccount(ctx, ref)
		if err != nil {
			return err
		}
		if d := net[ref]; d < 0 && acc.Balance+d < 0 {
			return fmt.Errorf("%w: %s has %d, needs %d", models.ErrInsufficientFunds, ref, acc.Balance, -d)
		}
	}

	for _, leg := range legs {
		if leg.Delta == 0 {
			continue
		}
		if err := tx.IncrementBalance(ctx, leg.Account, leg.Delta); err != nil {
			return err
		}
	}
	return nil
}
