package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/wallet-ops/internal/ledger"
	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/notify"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// InvoiceService is the only writer of invoice status.
//
//	UNPAID --Edit--> UNPAID
//	UNPAID --Cancel--> CANCELED
//	UNPAID --CapturePayment--> PAID
//	PAID --Approve--> COMPLETED (merchant plan = target plan)
//	PAID --Suspend--> SUSPENDED
//	PAID|SUSPENDED --Refund--> REFUNDED
type InvoiceService struct {
	ledger *ledger.Ledger
	sink   notify.Sink
	opts   Options
}

func NewInvoiceService(l *ledger.Ledger, sink notify.Sink, opts Options) *InvoiceService {
	return &InvoiceService{ledger: l, sink: sink, opts: opts}
}

// ----------------- Helpers -----------------

func requireStatus(inv models.Invoice, op string, allowed ...models.InvoiceStatus) error {
	for _, s := range allowed {
		if inv.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s invoice %s in status %s", models.ErrInvalidState, op, inv.ID, inv.Status)
}

func validateTerms(amount int64, plan models.Plan) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0", models.ErrValidation)
	}
	if !plan.Valid() {
		return fmt.Errorf("%w: unknown plan %q", models.ErrValidation, plan)
	}
	return nil
}

func requireID(id, what string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s id required", models.ErrValidation, what)
	}
	return id, nil
}

// transition runs a guarded single-invoice update: read, check the guard,
// then write what mutate returns, inside one conflict-detected transaction.
func (s *InvoiceService) transition(ctx context.Context, lc LedgerContext, id, op string, mutate func(inv *models.Invoice) error, allowed ...models.InvoiceStatus) (models.Invoice, error) {
	id, err := requireID(id, "invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	var out models.Invoice
	err = repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		inv, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := requireStatus(inv, op, allowed...); err != nil {
			return err
		}
		if err := mutate(&inv); err != nil {
			return err
		}
		now := s.opts.now()
		inv.UpdatedAt = &now
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	metrics.InvoiceTransitions.WithLabelValues(string(out.Status)).Inc()
	return out, nil
}

// ----------------- CREATE / EDIT -----------------

func (s *InvoiceService) Create(ctx context.Context, lc LedgerContext, merchantID string, amount int64, plan models.Plan) (models.Invoice, error) {
	merchantID, err := requireID(merchantID, "merchant")
	if err != nil {
		return models.Invoice{}, err
	}
	if err := validateTerms(amount, plan); err != nil {
		return models.Invoice{}, err
	}

	var ob notify.Outbox
	inv := models.Invoice{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		Amount:     amount,
		TargetPlan: plan,
		Status:     models.InvoiceUnpaid,
		CreatedBy:  lc.Admin.UID,
	}
	err = repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		ob.Reset()
		if _, err := tx.GetAccount(ctx, models.MerchantRef(merchantID)); err != nil {
			return err
		}
		inv.CreatedAt = s.opts.now()
		if err := tx.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		ob.Add(notify.New(merchantID, models.NotifyUpgradeInvoice, inv.ID,
			fmt.Sprintf("Upgrade invoice for plan %s: %d due", plan, amount), inv.CreatedAt))
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	ob.Flush(ctx, s.sink)
	metrics.InvoiceTransitions.WithLabelValues(string(models.InvoiceUnpaid)).Inc()
	logger.From(ctx).InfoContext(ctx, "invoice created", "invoice_id", inv.ID, "merchant_id", merchantID, "amount", amount)
	return inv, nil
}

func (s *InvoiceService) Edit(ctx context.Context, lc LedgerContext, id string, amount int64, plan models.Plan) (models.Invoice, error) {
	if err := validateTerms(amount, plan); err != nil {
		return models.Invoice{}, err
	}
	return s.transition(ctx, lc, id, "edit", func(inv *models.Invoice) error {
		inv.Amount = amount
		inv.TargetPlan = plan
		return nil
	}, models.InvoiceUnpaid)
}

// ----------------- STATUS CHANGES -----------------

func (s *InvoiceService) Cancel(ctx context.Context, lc LedgerContext, id string) (models.Invoice, error) {
	return s.transition(ctx, lc, id, "cancel", func(inv *models.Invoice) error {
		now := s.opts.now()
		inv.Status = models.InvoiceCanceled
		inv.CanceledAt = &now
		return nil
	}, models.InvoiceUnpaid)
}

func (s *InvoiceService) Suspend(ctx context.Context, lc LedgerContext, id string) (models.Invoice, error) {
	return s.transition(ctx, lc, id, "suspend", func(inv *models.Invoice) error {
		now := s.opts.now()
		inv.Status = models.InvoiceSuspended
		inv.SuspendedAt = &now
		return nil
	}, models.InvoicePaid)
}

// CapturePayment is the payment-capture hook: it debits the payer and moves
// the invoice from UNPAID to PAID. It is not reachable by admins.
func (s *InvoiceService) CapturePayment(ctx context.Context, lc LedgerContext, id, payerID string) (models.Invoice, error) {
	id, err := requireID(id, "invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	payerID, err = requireID(payerID, "payer")
	if err != nil {
		return models.Invoice{}, err
	}
	var out models.Invoice
	err = repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		inv, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := requireStatus(inv, "pay", models.InvoiceUnpaid); err != nil {
			return err
		}
		if err := s.ledger.Apply(ctx, tx, ledger.Debit(models.UserRef(payerID), inv.Amount)); err != nil {
			return err
		}
		now := s.opts.now()
		if err := tx.InsertTransaction(ctx, models.Transaction{
			ID:           uuid.NewString(),
			Type:         models.TxnInvoicePayment,
			SenderID:     payerID,
			ReceiverID:   models.SystemAccountID,
			Amount:       inv.Amount,
			NetAmount:    inv.Amount,
			Status:       models.TxnCompleted,
			OriginalTxID: inv.ID,
			Description:  "upgrade invoice payment",
			CreatedBy:    lc.Admin.UID,
			Timestamp:    now,
		}); err != nil {
			return err
		}
		inv.Status = models.InvoicePaid
		inv.PaidBy = payerID
		inv.PaidAt = &now
		inv.UpdatedAt = &now
		out = inv
		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return models.Invoice{}, err
	}
	metrics.InvoiceTransitions.WithLabelValues(string(models.InvoicePaid)).Inc()
	return out, nil
}

// Approve completes a paid invoice and upgrades the merchant's plan in the
// same transaction.
func (s *InvoiceService) Approve(ctx context.Context, lc LedgerContext, id string) (models.Invoice, error) {
	id, err := requireID(id, "invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	var (
		ob  notify.Outbox
		out models.Invoice
	)
	err = repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		ob.Reset()
		inv, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := requireStatus(inv, "approve", models.InvoicePaid); err != nil {
			return err
		}
		if _, err := tx.GetAccount(ctx, models.MerchantRef(inv.MerchantID)); err != nil {
			return err
		}

		now := s.opts.now()
		inv.Status = models.InvoiceCompleted
		inv.ApprovedBy = lc.Admin.UID
		inv.ApprovedAt = &now
		inv.UpdatedAt = &now
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		if err := tx.SetMerchantPlan(ctx, inv.MerchantID, inv.TargetPlan, now); err != nil {
			return err
		}
		if err := tx.InsertAuditLog(ctx, models.AuditLog{
			ID:          uuid.NewString(),
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditApproveInvoice,
			PerformedBy: lc.Admin.UID,
			Details:     map[string]any{"merchant_id": inv.MerchantID, "plan": string(inv.TargetPlan)},
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		ob.Add(notify.New(inv.MerchantID, models.NotifyPlanUpgraded, inv.ID,
			fmt.Sprintf("Your plan was upgraded to %s", inv.TargetPlan), now))
		out = inv
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	ob.Flush(ctx, s.sink)
	metrics.InvoiceTransitions.WithLabelValues(string(models.InvoiceCompleted)).Inc()
	logger.From(ctx).InfoContext(ctx, "invoice approved", "invoice_id", id, "plan", out.TargetPlan, "admin", lc.Admin.UID)
	return out, nil
}

// ----------------- REFUND -----------------

// Refund returns the invoice amount to its payer. Status is re-read and
// re-checked inside the transaction, so of two concurrent refunds only one
// commits; the other retries and fails with ErrAlreadyProcessed.
func (s *InvoiceService) Refund(ctx context.Context, lc LedgerContext, id, payerHint string) (models.Invoice, error) {
	id, err := requireID(id, "invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	payerHint = strings.TrimSpace(payerHint)
	var (
		ob       notify.Outbox
		out      models.Invoice
		refundID = uuid.NewString()
	)
	err = repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		ob.Reset()
		inv, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceRefunded {
			return fmt.Errorf("%w: invoice %s already refunded", models.ErrAlreadyProcessed, inv.ID)
		}
		if err := requireStatus(inv, "refund", models.InvoicePaid, models.InvoiceSuspended); err != nil {
			return err
		}
		payer := inv.PaidBy
		if payer == "" {
			payer = payerHint
		}
		if payer == "" {
			return fmt.Errorf("%w: invoice %s has no payer on record and none was given", models.ErrValidation, inv.ID)
		}
		if err := s.ledger.Apply(ctx, tx, ledger.Credit(models.UserRef(payer), inv.Amount)); err != nil {
			return err
		}

		now := s.opts.now()
		if err := tx.InsertTransaction(ctx, models.Transaction{
			ID:           refundID,
			Type:         models.TxnRefund,
			SenderID:     models.SystemAccountID,
			ReceiverID:   payer,
			Amount:       inv.Amount,
			NetAmount:    inv.Amount,
			Status:       models.TxnCompleted,
			OriginalTxID: inv.ID,
			Description:  "upgrade invoice refund",
			CreatedBy:    lc.Admin.UID,
			Timestamp:    now,
		}); err != nil {
			return err
		}
		inv.Status = models.InvoiceRefunded
		inv.RefundAmount = inv.Amount
		inv.RefundedAt = &now
		inv.UpdatedAt = &now
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		if err := tx.InsertAuditLog(ctx, models.AuditLog{
			ID:          uuid.NewString(),
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditRefundInvoice,
			PerformedBy: lc.Admin.UID,
			Details:     map[string]any{"payer": payer, "amount": inv.Amount, "refund_tx_id": refundID},
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		ob.Add(notify.New(inv.MerchantID, models.NotifyInvoiceRefunded, inv.ID,
			fmt.Sprintf("Invoice %s was refunded", inv.ID), now))
		out = inv
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	ob.Flush(ctx, s.sink)
	metrics.InvoiceTransitions.WithLabelValues(string(models.InvoiceRefunded)).Inc()
	logger.From(ctx).InfoContext(ctx, "invoice refunded", "invoice_id", id, "refund_tx_id", refundID, "admin", lc.Admin.UID)
	return out, nil
}

// ----------------- Queries -----------------

func (s *InvoiceService) Get(ctx context.Context, lc LedgerContext, id string) (models.Invoice, error) {
	id, err := requireID(id, "invoice")
	if err != nil {
		return models.Invoice{}, err
	}
	return lc.Store.GetInvoice(ctx, id)
}

func (s *InvoiceService) ListForMerchant(ctx context.Context, lc LedgerContext, merchantID string) ([]models.Invoice, error) {
	merchantID, err := requireID(merchantID, "merchant")
	if err != nil {
		return nil, err
	}
	return lc.Store.ListInvoicesByMerchant(ctx, merchantID)
}
