package services

import (
	"context"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// Authorizer resolves a caller credential to an admin identity or fails with
// models.ErrUnauthorized.
type Authorizer interface {
	Authorize(ctx context.Context, credential string) (models.AdminIdentity, error)
}

// Console is the set of admin entry points. Every call authorizes first and
// then runs exactly one core operation under the store timeout.
type Console struct {
	gate     Authorizer
	store    repository.Store
	timeout  time.Duration
	Reversal *ReversalService
	Invoices *InvoiceService
	Users    *UserService
	Balances *BalanceService
}

type ConsoleDeps struct {
	Gate     Authorizer
	Store    repository.Store
	Timeout  time.Duration
	Reversal *ReversalService
	Invoices *InvoiceService
	Users    *UserService
	Balances *BalanceService
}

func NewConsole(d ConsoleDeps) *Console {
	return &Console{
		gate:     d.Gate,
		store:    d.Store,
		timeout:  d.Timeout,
		Reversal: d.Reversal,
		Invoices: d.Invoices,
		Users:    d.Users,
		Balances: d.Balances,
	}
}

// begin authorizes the caller and returns the operation context and the
// LedgerContext to hand to the core.
func (c *Console) begin(ctx context.Context, credential, op string) (context.Context, context.CancelFunc, LedgerContext, error) {
	cancel := func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	admin, err := c.gate.Authorize(ctx, credential)
	if err != nil {
		cancel()
		c.finish(ctx, op, err)
		return ctx, nil, LedgerContext{}, err
	}
	ctx = logger.With(ctx, logger.From(ctx).With("op", op, "admin", admin.UID))
	return ctx, cancel, LedgerContext{Store: c.store, Admin: admin}, nil
}

func (c *Console) finish(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	metrics.OperationsFailed.WithLabelValues(op).Inc()
	logger.From(ctx).WarnContext(ctx, "operation failed", "op", op, "err", err)
}

// ----------------- Ledger -----------------

func (c *Console) ReverseTransaction(ctx context.Context, credential, txID string) (string, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "reverse_transaction")
	if err != nil {
		return "", err
	}
	defer cancel()
	id, err := c.Reversal.Reverse(ctx, lc, txID)
	c.finish(ctx, "reverse_transaction", err)
	return id, err
}

func (c *Console) GetTransaction(ctx context.Context, credential, txID string) (models.Transaction, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "get_transaction")
	if err != nil {
		return models.Transaction{}, err
	}
	defer cancel()
	tr, err := c.Balances.Transaction(ctx, lc, txID)
	c.finish(ctx, "get_transaction", err)
	return tr, err
}

func (c *Console) ListTransactions(ctx context.Context, credential string, limit int) ([]models.Transaction, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "list_transactions")
	if err != nil {
		return nil, err
	}
	defer cancel()
	list, err := c.Balances.Transactions(ctx, lc, limit)
	c.finish(ctx, "list_transactions", err)
	return list, err
}

func (c *Console) GetAccount(ctx context.Context, credential string, ref models.AccountRef) (models.Account, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "get_account")
	if err != nil {
		return models.Account{}, err
	}
	defer cancel()
	acc, err := c.Balances.Account(ctx, lc, ref)
	c.finish(ctx, "get_account", err)
	return acc, err
}

// ----------------- Invoices -----------------

func (c *Console) CreateInvoice(ctx context.Context, credential, merchantID string, amount int64, plan models.Plan) (models.Invoice, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "create_invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	defer cancel()
	inv, err := c.Invoices.Create(ctx, lc, merchantID, amount, plan)
	c.finish(ctx, "create_invoice", err)
	return inv, err
}

func (c *Console) EditInvoice(ctx context.Context, credential, id string, amount int64, plan models.Plan) (models.Invoice, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "edit_invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	defer cancel()
	inv, err := c.Invoices.Edit(ctx, lc, id, amount, plan)
	c.finish(ctx, "edit_invoice", err)
	return inv, err
}

func (c *Console) CancelInvoice(ctx context.Context, credential, id string) (models.Invoice, error) {
	return c.invoiceOp(ctx, credential, "cancel_invoice", id, c.Invoices.Cancel)
}

func (c *Console) ApproveInvoice(ctx context.Context, credential, id string) (models.Invoice, error) {
	return c.invoiceOp(ctx, credential, "approve_invoice", id, c.Invoices.Approve)
}

func (c *Console) SuspendInvoice(ctx context.Context, credential, id string) (models.Invoice, error) {
	return c.invoiceOp(ctx, credential, "suspend_invoice", id, c.Invoices.Suspend)
}

func (c *Console) RefundInvoice(ctx context.Context, credential, id, payerHint string) (models.Invoice, error) {
	return c.invoiceOp(ctx, credential, "refund_invoice", id, func(ctx context.Context, lc LedgerContext, id string) (models.Invoice, error) {
		return c.Invoices.Refund(ctx, lc, id, payerHint)
	})
}

func (c *Console) GetInvoice(ctx context.Context, credential, id string) (models.Invoice, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "get_invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	defer cancel()
	inv, err := c.Invoices.Get(ctx, lc, id)
	c.finish(ctx, "get_invoice", err)
	return inv, err
}

func (c *Console) ListMerchantInvoices(ctx context.Context, credential, merchantID string) ([]models.Invoice, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "list_invoices")
	if err != nil {
		return nil, err
	}
	defer cancel()
	list, err := c.Invoices.ListForMerchant(ctx, lc, merchantID)
	c.finish(ctx, "list_invoices", err)
	return list, err
}

func (c *Console) ListNotifications(ctx context.Context, credential, merchantID string) ([]models.Notification, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "list_notifications")
	if err != nil {
		return nil, err
	}
	defer cancel()
	list, err := c.Balances.Notifications(ctx, lc, merchantID)
	c.finish(ctx, "list_notifications", err)
	return list, err
}

func (c *Console) invoiceOp(ctx context.Context, credential, op, id string, fn func(context.Context, LedgerContext, string) (models.Invoice, error)) (models.Invoice, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, op)
	if err != nil {
		return models.Invoice{}, err
	}
	defer cancel()
	inv, err := fn(ctx, lc, id)
	c.finish(ctx, op, err)
	return inv, err
}

// ----------------- Users -----------------

func (c *Console) ResetUserPin(ctx context.Context, credential, userID string) (string, error) {
	ctx, cancel, lc, err := c.begin(ctx, credential, "reset_user_pin")
	if err != nil {
		return "", err
	}
	defer cancel()
	pin, err := c.Users.ResetPin(ctx, lc, userID)
	c.finish(ctx, "reset_user_pin", err)
	return pin, err
}
