package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/ledger"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository/memory"
)

const adminUID = "admin-1"

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu   sync.Mutex
	recs []models.Notification
	err  error
}

func (s *recordingSink) Deliver(_ context.Context, recs []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, recs...)
	return nil
}

func (s *recordingSink) types() []models.NotificationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationType, len(s.recs))
	for i, n := range s.recs {
		out[i] = n.Type
	}
	return out
}

type fixture struct {
	store    *memory.Store
	sink     *recordingSink
	lc       LedgerContext
	reversal *ReversalService
	invoices *InvoiceService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	st.PutAdmin(models.AdminUser{UID: adminUID, Email: "ops@example.com", Role: models.RoleSuperAdmin})
	sink := &recordingSink{}
	opts := Options{MaxAttempts: 5, Now: func() time.Time { return fixedNow }}
	l := ledger.New()
	return &fixture{
		store:    st,
		sink:     sink,
		lc:       LedgerContext{Store: st, Admin: models.AdminIdentity{UID: adminUID, Role: models.RoleSuperAdmin}},
		reversal: NewReversalService(l, opts),
		invoices: NewInvoiceService(l, sink, opts),
		users:    NewUserService(opts),
	}
}

func (f *fixture) user(id string, balance int64) {
	f.store.PutAccount(models.Account{ID: id, Kind: models.AccountUser, Balance: balance, CreatedAt: fixedNow})
}

func (f *fixture) merchant(id string, balance int64, plan models.Plan) {
	f.store.PutAccount(models.Account{ID: id, Kind: models.AccountMerchant, Balance: balance, Plan: plan, CreatedAt: fixedNow})
}

func (f *fixture) balance(t *testing.T, ref models.AccountRef) int64 {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), ref)
	if err != nil {
		t.Fatalf("get account %s: %v", ref, err)
	}
	return a.Balance
}

func (f *fixture) invoice(t *testing.T, id string) models.Invoice {
	t.Helper()
	inv, err := f.store.GetInvoice(context.Background(), id)
	if err != nil {
		t.Fatalf("get invoice %s: %v", id, err)
	}
	return inv
}

func (f *fixture) transactionsOfType(t *testing.T, typ models.TransactionType) []models.Transaction {
	t.Helper()
	all, err := f.store.ListTransactions(context.Background(), 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	var out []models.Transaction
	for _, tr := range all {
		if tr.Type == typ {
			out = append(out, tr)
		}
	}
	return out
}
