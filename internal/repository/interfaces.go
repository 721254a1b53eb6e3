package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

// ErrTxConflict is returned by Store.RunInTx when the commit lost against a
// concurrent writer. RunInTx in this package retries it.
var ErrTxConflict = errors.New("transaction conflict")

// Tx is the view of the store inside one atomic transaction: snapshot reads
// plus buffered writes committed with conflict detection. All reads must be
// issued before the first write, as with document-store transactions.
type Tx interface {
	GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	GetInvoice(ctx context.Context, id string) (models.Invoice, error)

	// IncrementBalance is a pure additive update. Only the ledger package calls it.
	IncrementBalance(ctx context.Context, ref models.AccountRef, delta int64) error
	InsertTransaction(ctx context.Context, t models.Transaction) error
	MarkTransactionRefunded(ctx context.Context, id string, at time.Time) error
	InsertInvoice(ctx context.Context, inv models.Invoice) error
	UpdateInvoice(ctx context.Context, inv models.Invoice) error
	SetMerchantPlan(ctx context.Context, merchantID string, plan models.Plan, at time.Time) error
	InsertAuditLog(ctx context.Context, l models.AuditLog) error
}

// Batch collects unconditional writes applied all-or-nothing, without
// conflict detection against reads taken outside it.
type Batch interface {
	InsertNotification(n models.Notification)
	InsertAuditLog(l models.AuditLog)
	SetPinHash(userID, hash string)
}

type Reader interface {
	GetAccount(ctx context.Context, ref models.AccountRef) (models.Account, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	GetInvoice(ctx context.Context, id string) (models.Invoice, error)
	ListInvoicesByMerchant(ctx context.Context, merchantID string) ([]models.Invoice, error)
	ListNotifications(ctx context.Context, merchantID string) ([]models.Notification, error)
}

type Admins interface {
	GetAdmin(ctx context.Context, uid string) (models.AdminUser, error)
}

// Store is implemented by the postgres, mongo and memory backends.
type Store interface {
	Reader
	Admins

	// RunInTx runs fn once in an atomic transaction. A lost commit is
	// reported as ErrTxConflict; use the package-level RunInTx to retry.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommitBatch applies the writes queued by fn atomically.
	CommitBatch(ctx context.Context, fn func(b Batch)) error

	Close(ctx context.Context) error
}
