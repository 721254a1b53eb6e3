package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

// scriptedStore returns the queued results from RunInTx, one per call.
type scriptedStore struct {
	Store
	results []error
	calls   int
}

func (s *scriptedStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.calls++
	if len(s.results) == 0 {
		return nil
	}
	err := s.results[0]
	s.results = s.results[1:]
	return err
}

func TestRunInTxRetriesConflicts(t *testing.T) {
	s := &scriptedStore{results: []error{ErrTxConflict, ErrTxConflict, nil}}
	if err := RunInTx(context.Background(), s, 5, nil); err != nil {
		t.Fatalf("err = %v", err)
	}
	if s.calls != 3 {
		t.Fatalf("calls = %d, want 3", s.calls)
	}
}

func TestRunInTxGivesUp(t *testing.T) {
	s := &scriptedStore{results: []error{ErrTxConflict, ErrTxConflict, ErrTxConflict}}
	err := RunInTx(context.Background(), s, 3, nil)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if s.calls != 3 {
		t.Fatalf("calls = %d, want 3", s.calls)
	}
}

func TestRunInTxDoesNotRetryOtherErrors(t *testing.T) {
	s := &scriptedStore{results: []error{models.ErrInsufficientFunds, nil}}
	if err := RunInTx(context.Background(), s, 5, nil); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
	if s.calls != 1 {
		t.Fatalf("calls = %d, want 1", s.calls)
	}
}

func TestRunInTxStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &scriptedStore{}
	if err := RunInTx(ctx, s, 5, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if s.calls != 0 {
		t.Fatalf("store called on canceled context")
	}
}
