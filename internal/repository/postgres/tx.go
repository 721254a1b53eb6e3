package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

// pgTx adapts a pgx.Tx to repository.Tx.
type pgTx struct{ q querier }

func (t *pgTx) GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error) {
	return getAccount(ctx, t.q, ref)
}

func (t *pgTx) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return getTransaction(ctx, t.q, id)
}

func (t *pgTx) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	return getInvoice(ctx, t.q, id)
}

func (t *pgTx) IncrementBalance(ctx context.Context, ref models.AccountRef, delta int64) error {
	return incrementBalance(ctx, t.q, ref, delta)
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr models.Transaction) error {
	return insertTransaction(ctx, t.q, tr)
}

func (t *pgTx) MarkTransactionRefunded(ctx context.Context, id string, at time.Time) error {
	return markRefunded(ctx, t.q, id, at)
}

func (t *pgTx) InsertInvoice(ctx context.Context, inv models.Invoice) error {
	return insertInvoice(ctx, t.q, inv)
}

func (t *pgTx) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	return updateInvoice(ctx, t.q, inv)
}

func (t *pgTx) SetMerchantPlan(ctx context.Context, merchantID string, plan models.Plan, at time.Time) error {
	return setMerchantPlan(ctx, t.q, merchantID, plan, at)
}

func (t *pgTx) InsertAuditLog(ctx context.Context, l models.AuditLog) error {
	return insertAuditLog(ctx, t.q, l)
}

// pgBatch queues statements for a single pgx.Batch round trip.
type pgBatch struct {
	b   pgx.Batch
	err error
}

func (b *pgBatch) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *pgBatch) InsertNotification(n models.Notification) {
	if err := n.Validate(); err != nil {
		b.fail(err)
		return
	}
	b.b.Queue(`INSERT INTO notifications(id, merchant_id, type, invoice_id, message, read, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7)`, n.ID, n.MerchantID, n.Type, n.InvoiceID, n.Message, n.Read, n.CreatedAt)
}

func (b *pgBatch) InsertAuditLog(l models.AuditLog) {
	if err := l.Validate(); err != nil {
		b.fail(err)
		return
	}
	b.b.Queue(insertAuditSQL, l.ID, l.EntityType, l.EntityID, l.Action, l.PerformedBy, l.Details, l.CreatedAt)
}

func (b *pgBatch) SetPinHash(userID, hash string) {
	b.b.Queue(`UPDATE accounts SET pin_hash=$2 WHERE kind='user' AND id=$1`, userID, hash).
		Exec(func(ct pgconn.CommandTag) error {
			if ct.RowsAffected() == 0 {
				return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
			}
			return nil
		})
}
