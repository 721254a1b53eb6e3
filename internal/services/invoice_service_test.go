package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func seedInvoice(f *fixture, id string, status models.InvoiceStatus, amount int64, paidBy string) {
	f.store.PutInvoice(models.Invoice{
		ID: id, MerchantID: "M", Amount: amount, TargetPlan: models.PlanPro,
		Status: status, PaidBy: paidBy, CreatedAt: fixedNow,
	})
}

func TestInvoiceApproveFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("P", 600000)

	inv, err := f.invoices.Create(ctx, f.lc, "M", 500000, models.PlanPro)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Status != models.InvoiceUnpaid || inv.CreatedBy != adminUID {
		t.Fatalf("unexpected invoice: %+v", inv)
	}

	if _, err := f.invoices.CapturePayment(ctx, f.lc, inv.ID, "P"); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := f.balance(t, models.UserRef("P")); got != 100000 {
		t.Fatalf("payer balance = %d, want 100000", got)
	}

	approved, err := f.invoices.Approve(ctx, f.lc, inv.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.InvoiceCompleted || approved.ApprovedBy != adminUID || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved invoice: %+v", approved)
	}
	m, _ := f.store.GetAccount(ctx, models.MerchantRef("M"))
	if m.Plan != models.PlanPro {
		t.Fatalf("merchant plan = %s, want PRO", m.Plan)
	}
	if got := f.sink.types(); len(got) != 2 || got[0] != models.NotifyUpgradeInvoice || got[1] != models.NotifyPlanUpgraded {
		t.Fatalf("notifications = %v", got)
	}
	for _, n := range f.sink.recs {
		if !n.CreatedAt.Equal(fixedNow) {
			t.Fatalf("notification %s stamped %v, want service clock %v", n.Type, n.CreatedAt, fixedNow)
		}
	}
	if n := len(f.transactionsOfType(t, models.TxnInvoicePayment)); n != 1 {
		t.Fatalf("got %d invoice payments", n)
	}
}

func TestInvoiceCreateUnknownMerchant(t *testing.T) {
	f := newFixture(t)
	_, err := f.invoices.Create(context.Background(), f.lc, "ghost", 100, models.PlanPro)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if len(f.sink.types()) != 0 {
		t.Fatalf("notification emitted for failed create")
	}
}

func TestInvoiceCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	for _, tc := range []struct {
		amount int64
		plan   models.Plan
	}{{0, models.PlanPro}, {-5, models.PlanPro}, {100, "GOLD"}, {100, ""}} {
		if _, err := f.invoices.Create(context.Background(), f.lc, "M", tc.amount, tc.plan); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("create(%d, %q) err = %v, want validation", tc.amount, tc.plan, err)
		}
	}
}

func TestInvoiceRefundSuspended(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("U1", 1000)
	seedInvoice(f, "inv", models.InvoiceSuspended, 200000, "U1")

	out, err := f.invoices.Refund(ctx, f.lc, "inv", "")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got := f.balance(t, models.UserRef("U1")); got != 201000 {
		t.Fatalf("U1 balance = %d, want 201000", got)
	}
	if out.Status != models.InvoiceRefunded || out.RefundAmount != 200000 {
		t.Fatalf("unexpected invoice: %+v", out)
	}
	refunds := f.transactionsOfType(t, models.TxnRefund)
	if len(refunds) != 1 || refunds[0].Amount != 200000 || refunds[0].ReceiverID != "U1" ||
		refunds[0].SenderID != models.SystemAccountID || refunds[0].OriginalTxID != "inv" {
		t.Fatalf("unexpected refund records: %+v", refunds)
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != models.NotifyInvoiceRefunded {
		t.Fatalf("notifications = %v", got)
	}
}

func TestInvoiceRefundPayerFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("H", 0)
	seedInvoice(f, "a", models.InvoicePaid, 700, "")
	seedInvoice(f, "b", models.InvoicePaid, 700, "")

	if _, err := f.invoices.Refund(ctx, f.lc, "a", "H"); err != nil {
		t.Fatalf("refund with hint: %v", err)
	}
	if got := f.balance(t, models.UserRef("H")); got != 700 {
		t.Fatalf("hint payer balance = %d", got)
	}
	if _, err := f.invoices.Refund(ctx, f.lc, "b", ""); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("refund without payer err = %v, want validation", err)
	}
	if f.invoice(t, "b").Status != models.InvoicePaid {
		t.Fatalf("invoice b changed")
	}
}

func TestInvoiceRefundTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("U1", 0)
	seedInvoice(f, "inv", models.InvoicePaid, 500, "U1")

	if _, err := f.invoices.Refund(ctx, f.lc, "inv", ""); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if _, err := f.invoices.Refund(ctx, f.lc, "inv", ""); !errors.Is(err, models.ErrAlreadyProcessed) {
		t.Fatalf("second refund err = %v, want already processed", err)
	}
	if got := f.balance(t, models.UserRef("U1")); got != 500 {
		t.Fatalf("payer credited %d", got)
	}
}

// A second refund commits between the first one's reads and its commit. The
// first must observe the conflict, retry, and give up on the now refunded
// invoice instead of crediting the payer again.
func TestInvoiceRefundInterleavedCreditsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("U1", 1000)
	seedInvoice(f, "inv", models.InvoiceSuspended, 200000, "U1")

	var (
		raced     atomic.Bool
		racingErr error
	)
	f.store.SetCommitHook(func() {
		if raced.CompareAndSwap(false, true) {
			_, racingErr = f.invoices.Refund(ctx, f.lc, "inv", "")
		}
	})

	_, err := f.invoices.Refund(ctx, f.lc, "inv", "")
	if racingErr != nil {
		t.Fatalf("racing refund: %v", racingErr)
	}
	if !errors.Is(err, models.ErrAlreadyProcessed) {
		t.Fatalf("first refund err = %v, want already processed", err)
	}
	if got := f.balance(t, models.UserRef("U1")); got != 201000 {
		t.Fatalf("U1 balance = %d, want 201000", got)
	}
	if n := len(f.transactionsOfType(t, models.TxnRefund)); n != 1 {
		t.Fatalf("got %d refund records", n)
	}
}

func TestInvoiceGuards(t *testing.T) {
	all := []models.InvoiceStatus{
		models.InvoiceUnpaid, models.InvoicePaid, models.InvoiceCompleted,
		models.InvoiceSuspended, models.InvoiceCanceled, models.InvoiceRefunded,
	}
	type op struct {
		name    string
		allowed []models.InvoiceStatus
		run     func(f *fixture) error
	}
	ops := []op{
		{"edit", []models.InvoiceStatus{models.InvoiceUnpaid}, func(f *fixture) error {
			_, err := f.invoices.Edit(context.Background(), f.lc, "inv", 900, models.PlanEnterprise)
			return err
		}},
		{"cancel", []models.InvoiceStatus{models.InvoiceUnpaid}, func(f *fixture) error {
			_, err := f.invoices.Cancel(context.Background(), f.lc, "inv")
			return err
		}},
		{"approve", []models.InvoiceStatus{models.InvoicePaid}, func(f *fixture) error {
			_, err := f.invoices.Approve(context.Background(), f.lc, "inv")
			return err
		}},
		{"suspend", []models.InvoiceStatus{models.InvoicePaid}, func(f *fixture) error {
			_, err := f.invoices.Suspend(context.Background(), f.lc, "inv")
			return err
		}},
		{"refund", []models.InvoiceStatus{models.InvoicePaid, models.InvoiceSuspended}, func(f *fixture) error {
			_, err := f.invoices.Refund(context.Background(), f.lc, "inv", "")
			return err
		}},
	}

	for _, o := range ops {
		for _, from := range all {
			t.Run(o.name+"/"+string(from), func(t *testing.T) {
				f := newFixture(t)
				f.merchant("M", 0, models.PlanFree)
				f.user("U", 0)
				seedInvoice(f, "inv", from, 400, "U")

				err := o.run(f)
				allowed := false
				for _, s := range o.allowed {
					allowed = allowed || s == from
				}
				if allowed {
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					return
				}
				if o.name == "refund" && from == models.InvoiceRefunded {
					if !errors.Is(err, models.ErrAlreadyProcessed) {
						t.Fatalf("err = %v, want already processed", err)
					}
				} else if !errors.Is(err, models.ErrInvalidState) {
					t.Fatalf("err = %v, want invalid state", err)
				}
				if got := f.invoice(t, "inv").Status; got != from {
					t.Fatalf("status moved to %s on rejected %s", got, o.name)
				}
				m, _ := f.store.GetAccount(context.Background(), models.MerchantRef("M"))
				if m.Plan != models.PlanFree {
					t.Fatalf("plan changed on rejected %s", o.name)
				}
			})
		}
	}
}

func TestInvoiceEditKeepsUnpaid(t *testing.T) {
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	seedInvoice(f, "inv", models.InvoiceUnpaid, 400, "")

	out, err := f.invoices.Edit(context.Background(), f.lc, "inv", 900, models.PlanEnterprise)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if out.Status != models.InvoiceUnpaid || out.Amount != 900 || out.TargetPlan != models.PlanEnterprise {
		t.Fatalf("unexpected invoice: %+v", out)
	}
	if _, err := f.invoices.Edit(context.Background(), f.lc, "inv", 0, models.PlanPro); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("zero amount edit err = %v", err)
	}
}

// Approval must leave either both the invoice and the plan changed or
// neither. A missing merchant aborts the whole transaction.
func TestInvoiceApproveAtomic(t *testing.T) {
	f := newFixture(t)
	f.store.PutInvoice(models.Invoice{
		ID: "inv", MerchantID: "gone", Amount: 10, TargetPlan: models.PlanPro,
		Status: models.InvoicePaid, PaidBy: "U", CreatedAt: fixedNow,
	})
	if _, err := f.invoices.Approve(context.Background(), f.lc, "inv"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := f.invoice(t, "inv").Status; got != models.InvoicePaid {
		t.Fatalf("invoice status = %s after failed approval", got)
	}
	if len(f.store.AuditLogs()) != 0 || len(f.sink.types()) != 0 {
		t.Fatalf("side effects after failed approval")
	}
}

func TestInvoiceNotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.sink.err = errors.New("sink down")
	seedInvoice(f, "inv", models.InvoicePaid, 10, "U")

	if _, err := f.invoices.Approve(context.Background(), f.lc, "inv"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if f.invoice(t, "inv").Status != models.InvoiceCompleted {
		t.Fatalf("approval not committed")
	}
}

func TestCapturePaymentInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.merchant("M", 0, models.PlanFree)
	f.user("P", 10)
	seedInvoice(f, "inv", models.InvoiceUnpaid, 400, "")

	if _, err := f.invoices.CapturePayment(context.Background(), f.lc, "inv", "P"); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want insufficient funds", err)
	}
	if f.invoice(t, "inv").Status != models.InvoiceUnpaid || f.balance(t, models.UserRef("P")) != 10 {
		t.Fatalf("state changed on failed capture")
	}
}
