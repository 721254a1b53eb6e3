package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
	"github.com/baharkarakas/wallet-ops/internal/repository/memory"
)

func seed() *memory.Store {
	st := memory.New()
	st.PutAccount(models.Account{ID: "a", Kind: models.AccountUser, Balance: 100})
	st.PutAccount(models.Account{ID: "m", Kind: models.AccountMerchant, Balance: 50})
	return st
}

func balance(t *testing.T, st *memory.Store, ref models.AccountRef) int64 {
	t.Helper()
	a, err := st.GetAccount(context.Background(), ref)
	if err != nil {
		t.Fatalf("get %s: %v", ref, err)
	}
	return a.Balance
}

func TestApplyMovesBalances(t *testing.T) {
	st := seed()
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return New().Apply(ctx, tx, Debit(models.MerchantRef("m"), 50), Credit(models.UserRef("a"), 70))
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if balance(t, st, models.MerchantRef("m")) != 0 || balance(t, st, models.UserRef("a")) != 170 {
		t.Fatalf("unexpected balances")
	}
}

func TestApplyRefusesOverdraftAtomically(t *testing.T) {
	st := seed()
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return New().Apply(ctx, tx, Credit(models.UserRef("a"), 10), Debit(models.MerchantRef("m"), 51))
	})
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want insufficient funds", err)
	}
	if balance(t, st, models.UserRef("a")) != 100 || balance(t, st, models.MerchantRef("m")) != 50 {
		t.Fatalf("partial effect visible")
	}
}

func TestApplyNetsLegsPerAccount(t *testing.T) {
	st := seed()
	// -120 alone would overdraw, but +30 on the same account keeps it at 10.
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return New().Apply(ctx, tx, Credit(models.UserRef("a"), 30), Debit(models.UserRef("a"), 120))
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := balance(t, st, models.UserRef("a")); got != 10 {
		t.Fatalf("balance = %d, want 10", got)
	}
}

func TestAdjustRejects(t *testing.T) {
	tests := []struct {
		name string
		ref  models.AccountRef
		d    int64
		want error
	}{
		{"zero delta", models.UserRef("a"), 0, models.ErrValidation},
		{"bad ref", models.AccountRef{Kind: "bank", ID: "a"}, 5, models.ErrValidation},
		{"missing account", models.UserRef("ghost"), 5, models.ErrNotFound},
		{"overdraft", models.UserRef("a"), -101, models.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seed()
			err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
				return New().Adjust(ctx, tx, tt.ref, tt.d)
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplySkipsZeroLegs(t *testing.T) {
	st := seed()
	// A zero leg on a missing account must not be read or written.
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return New().Apply(ctx, tx, Debit(models.UserRef("ghost"), 0), Credit(models.UserRef("a"), 5))
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := balance(t, st, models.UserRef("a")); got != 105 {
		t.Fatalf("balance = %d, want 105", got)
	}
}
