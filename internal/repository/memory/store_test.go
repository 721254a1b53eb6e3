package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

func TestRunInTxDetectsConflict(t *testing.T) {
	st := New()
	st.PutAccount(models.Account{ID: "a", Kind: models.AccountUser, Balance: 10})
	ref := models.UserRef("a")

	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.GetAccount(ctx, ref); err != nil {
			return err
		}
		// A concurrent writer commits after our read.
		if err := st.RunInTx(ctx, func(ctx context.Context, tx2 repository.Tx) error {
			return tx2.IncrementBalance(ctx, ref, 5)
		}); err != nil {
			t.Fatalf("inner tx: %v", err)
		}
		return tx.IncrementBalance(ctx, ref, 1)
	})
	if !errors.Is(err, repository.ErrTxConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	a, _ := st.GetAccount(context.Background(), ref)
	if a.Balance != 15 {
		t.Fatalf("balance = %d, want 15", a.Balance)
	}
}

func TestReadAfterWriteRejected(t *testing.T) {
	st := New()
	st.PutAccount(models.Account{ID: "a", Kind: models.AccountUser, Balance: 10})
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if err := tx.IncrementBalance(ctx, models.UserRef("a"), 1); err != nil {
			return err
		}
		_, err := tx.GetAccount(ctx, models.UserRef("a"))
		return err
	})
	if !errors.Is(err, errReadAfterWrite) {
		t.Fatalf("err = %v", err)
	}
}

func TestCommitRollsBackOnFailedWrite(t *testing.T) {
	st := New()
	st.PutAccount(models.Account{ID: "a", Kind: models.AccountUser, Balance: 10})
	now := time.Now()
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if err := tx.IncrementBalance(ctx, models.UserRef("a"), 5); err != nil {
			return err
		}
		return tx.MarkTransactionRefunded(ctx, "missing", now)
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	a, _ := st.GetAccount(context.Background(), models.UserRef("a"))
	if a.Balance != 10 {
		t.Fatalf("first write not rolled back: %d", a.Balance)
	}
}

func TestCommitBatch(t *testing.T) {
	st := New()
	st.PutAccount(models.Account{ID: "u", Kind: models.AccountUser})
	ctx := context.Background()

	err := st.CommitBatch(ctx, func(b repository.Batch) {
		b.SetPinHash("u", "hash")
		b.InsertAuditLog(models.AuditLog{ID: "l1", Action: models.AuditResetPin, PerformedBy: "root"})
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	a, _ := st.GetAccount(ctx, models.UserRef("u"))
	if a.PinHash != "hash" || len(st.AuditLogs()) != 1 {
		t.Fatalf("batch not applied")
	}

	err = st.CommitBatch(ctx, func(b repository.Batch) {
		b.InsertAuditLog(models.AuditLog{ID: "l2", Action: models.AuditResetPin, PerformedBy: "root"})
		b.SetPinHash("ghost", "hash")
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(st.AuditLogs()) != 1 {
		t.Fatalf("failed batch left an audit entry")
	}

	err = st.CommitBatch(ctx, func(b repository.Batch) {
		b.InsertNotification(models.Notification{ID: "n1"})
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("invalid notification err = %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	st := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := map[string]time.Duration{"old": 0, "mid": time.Hour, "new": 2 * time.Hour}
	for id, off := range offsets {
		st.PutTransaction(models.Transaction{ID: id, Timestamp: base.Add(off)})
	}
	got, _ := st.ListTransactions(context.Background(), 2)
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "mid" {
		t.Fatalf("order = %+v", got)
	}
}
