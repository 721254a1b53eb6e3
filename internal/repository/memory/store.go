// Package memory is an in-process Store with the same transaction semantics
// as the document backends: versioned snapshot reads, buffered writes and a
// commit that fails with repository.ErrTxConflict if anything read was
// modified in the meantime. Used by tests and APP_STORE=memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu            sync.Mutex
	versions      map[string]uint64
	accounts      map[models.AccountRef]models.Account
	transactions  map[string]models.Transaction
	invoices      map[string]models.Invoice
	notifications []models.Notification
	auditLogs     []models.AuditLog
	admins        map[string]models.AdminUser

	commitHook func()
}

func New() *Store {
	return &Store{
		versions:     map[string]uint64{},
		accounts:     map[models.AccountRef]models.Account{},
		transactions: map[string]models.Transaction{},
		invoices:     map[string]models.Invoice{},
		admins:       map[string]models.AdminUser{},
	}
}

func accountKey(ref models.AccountRef) string { return "accounts/" + ref.String() }
func transactionKey(id string) string         { return "transactions/" + id }
func invoiceKey(id string) string             { return "invoices/" + id }

// SetCommitHook installs f to run at the start of every transaction commit,
// before read validation. Tests use it to interleave a competing writer.
func (s *Store) SetCommitHook(f func()) {
	s.mu.Lock()
	s.commitHook = f
	s.mu.Unlock()
}

// ----------------- Seeding -----------------

func (s *Store) PutAccount(a models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Ref()] = a
	s.versions[accountKey(a.Ref())]++
}

func (s *Store) PutTransaction(t models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	s.versions[transactionKey(t.ID)]++
}

func (s *Store) PutInvoice(inv models.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	s.versions[invoiceKey(inv.ID)]++
}

func (s *Store) PutAdmin(a models.AdminUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[a.UID] = a
}

func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	return out
}

// TotalBalance sums every account balance.
func (s *Store) TotalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, a := range s.accounts {
		sum += a.Balance
	}
	return sum
}

// ----------------- Reader -----------------

func (s *Store) GetAccount(_ context.Context, ref models.AccountRef) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[ref]
	if !ok {
		return models.Account{}, fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
	}
	return a, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id)
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return models.Invoice{}, fmt.Errorf("%w: invoice %s", models.ErrNotFound, id)
	}
	return inv, nil
}

func (s *Store) ListInvoicesByMerchant(_ context.Context, merchantID string) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.MerchantID == merchantID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListNotifications(_ context.Context, merchantID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if n := s.notifications[i]; n.MerchantID == merchantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) GetAdmin(_ context.Context, uid string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[uid]
	if !ok {
		return models.AdminUser{}, fmt.Errorf("%w: admin %s", models.ErrNotFound, uid)
	}
	return a, nil
}

func (s *Store) Close(context.Context) error { return nil }

// ----------------- Transactions -----------------

// write is one buffered mutation. apply runs under s.mu and returns an undo
// used to roll back earlier writes if a later one fails.
type write struct {
	key   string
	apply func() (undo func(), err error)
}

type memTx struct {
	s      *Store
	reads  map[string]uint64
	writes []write
}

var errReadAfterWrite = errors.New("memory: read issued after a write in the same transaction")

func (t *memTx) observe(key string) error {
	if len(t.writes) > 0 {
		return errReadAfterWrite
	}
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.s.versions[key]
	}
	return nil
}

func (t *memTx) GetAccount(_ context.Context, ref models.AccountRef) (models.Account, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.observe(accountKey(ref)); err != nil {
		return models.Account{}, err
	}
	a, ok := t.s.accounts[ref]
	if !ok {
		return models.Account{}, fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
	}
	return a, nil
}

func (t *memTx) GetTransaction(_ context.Context, id string) (models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.observe(transactionKey(id)); err != nil {
		return models.Transaction{}, err
	}
	tr, ok := t.s.transactions[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id)
	}
	return tr, nil
}

func (t *memTx) GetInvoice(_ context.Context, id string) (models.Invoice, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.observe(invoiceKey(id)); err != nil {
		return models.Invoice{}, err
	}
	inv, ok := t.s.invoices[id]
	if !ok {
		return models.Invoice{}, fmt.Errorf("%w: invoice %s", models.ErrNotFound, id)
	}
	return inv, nil
}

func (t *memTx) IncrementBalance(_ context.Context, ref models.AccountRef, delta int64) error {
	t.writes = append(t.writes, write{key: accountKey(ref), apply: t.s.incrementBalance(ref, delta)})
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr models.Transaction) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	t.writes = append(t.writes, write{key: transactionKey(tr.ID), apply: func() (func(), error) {
		if _, exists := t.s.transactions[tr.ID]; exists {
			return nil, fmt.Errorf("memory: transaction %s already exists", tr.ID)
		}
		t.s.transactions[tr.ID] = tr
		return func() { delete(t.s.transactions, tr.ID) }, nil
	}})
	return nil
}

func (t *memTx) MarkTransactionRefunded(_ context.Context, id string, at time.Time) error {
	t.writes = append(t.writes, write{key: transactionKey(id), apply: func() (func(), error) {
		prev, ok := t.s.transactions[id]
		if !ok {
			return nil, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id)
		}
		next := prev
		next.RefundedByAdmin = true
		next.RefundedAt = &at
		t.s.transactions[id] = next
		return func() { t.s.transactions[id] = prev }, nil
	}})
	return nil
}

func (t *memTx) InsertInvoice(_ context.Context, inv models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	t.writes = append(t.writes, write{key: invoiceKey(inv.ID), apply: func() (func(), error) {
		if _, exists := t.s.invoices[inv.ID]; exists {
			return nil, fmt.Errorf("memory: invoice %s already exists", inv.ID)
		}
		t.s.invoices[inv.ID] = inv
		return func() { delete(t.s.invoices, inv.ID) }, nil
	}})
	return nil
}

func (t *memTx) UpdateInvoice(_ context.Context, inv models.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	t.writes = append(t.writes, write{key: invoiceKey(inv.ID), apply: func() (func(), error) {
		prev, ok := t.s.invoices[inv.ID]
		if !ok {
			return nil, fmt.Errorf("%w: invoice %s", models.ErrNotFound, inv.ID)
		}
		t.s.invoices[inv.ID] = inv
		return func() { t.s.invoices[inv.ID] = prev }, nil
	}})
	return nil
}

func (t *memTx) SetMerchantPlan(_ context.Context, merchantID string, plan models.Plan, at time.Time) error {
	ref := models.MerchantRef(merchantID)
	t.writes = append(t.writes, write{key: accountKey(ref), apply: func() (func(), error) {
		prev, ok := t.s.accounts[ref]
		if !ok {
			return nil, fmt.Errorf("%w: merchant %s", models.ErrNotFound, merchantID)
		}
		next := prev
		next.Plan = plan
		next.PlanUpdatedAt = &at
		t.s.accounts[ref] = next
		return func() { t.s.accounts[ref] = prev }, nil
	}})
	return nil
}

func (t *memTx) InsertAuditLog(_ context.Context, l models.AuditLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	t.writes = append(t.writes, write{key: "audit_logs/" + l.ID, apply: t.s.appendAudit(l)})
	return nil
}

func (s *Store) incrementBalance(ref models.AccountRef, delta int64) func() (func(), error) {
	return func() (func(), error) {
		prev, ok := s.accounts[ref]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", models.ErrNotFound, ref)
		}
		if prev.Balance+delta < 0 {
			return nil, fmt.Errorf("%w: account %s", models.ErrInsufficientFunds, ref)
		}
		next := prev
		next.Balance += delta
		s.accounts[ref] = next
		return func() { s.accounts[ref] = prev }, nil
	}
}

func (s *Store) appendAudit(l models.AuditLog) func() (func(), error) {
	return func() (func(), error) {
		n := len(s.auditLogs)
		s.auditLogs = append(s.auditLogs, l)
		return func() { s.auditLogs = s.auditLogs[:n] }, nil
	}
}

// applyLocked runs writes in order and rolls all of them back on the first
// failure. Versions are bumped only on success.
func (s *Store) applyLocked(writes []write) error {
	undos := make([]func(), 0, len(writes))
	for _, w := range writes {
		undo, err := w.apply()
		if err != nil {
			for i := len(undos) - 1; i >= 0; i-- {
				undos[i]()
			}
			return err
		}
		undos = append(undos, undo)
	}
	for _, w := range writes {
		s.versions[w.key]++
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx := &memTx{s: s, reads: map[string]uint64{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	hook := s.commitHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range tx.reads {
		if s.versions[key] != v {
			return repository.ErrTxConflict
		}
	}
	return s.applyLocked(tx.writes)
}

// ----------------- Batch -----------------

type memBatch struct {
	s      *Store
	writes []write
	err    error
}

func (b *memBatch) InsertNotification(n models.Notification) {
	if err := n.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.writes = append(b.writes, write{key: "notifications/" + n.ID, apply: func() (func(), error) {
		k := len(b.s.notifications)
		b.s.notifications = append(b.s.notifications, n)
		return func() { b.s.notifications = b.s.notifications[:k] }, nil
	}})
}

func (b *memBatch) InsertAuditLog(l models.AuditLog) {
	if err := l.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.writes = append(b.writes, write{key: "audit_logs/" + l.ID, apply: b.s.appendAudit(l)})
}

func (b *memBatch) SetPinHash(userID, hash string) {
	ref := models.UserRef(userID)
	b.writes = append(b.writes, write{key: accountKey(ref), apply: func() (func(), error) {
		prev, ok := b.s.accounts[ref]
		if !ok {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
		}
		next := prev
		next.PinHash = hash
		b.s.accounts[ref] = next
		return func() { b.s.accounts[ref] = prev }, nil
	}})
}

func (s *Store) CommitBatch(_ context.Context, fn func(b repository.Batch)) error {
	b := &memBatch{s: s}
	fn(b)
	if b.err != nil {
		return b.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(b.writes)
}
