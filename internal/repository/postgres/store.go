package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/wallet-ops/internal/models"
	repo "github.com/baharkarakas/wallet-ops/internal/repository"
)

var _ repo.Store = (*Store)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct{ pool *pgxpool.Pool }

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// Serializable gives snapshot reads and fails the commit (40001) when a
// concurrent transaction touched what we read.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return mapErr(err)
	}
	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

// CommitBatch sends every queued statement in one round trip inside a
// read-committed transaction: all-or-nothing, no read validation.
func (s *Store) CommitBatch(ctx context.Context, fn func(b repo.Batch)) error {
	b := &pgBatch{}
	fn(b)
	if b.err != nil {
		return b.err
	}
	if b.b.Len() == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.SendBatch(ctx, &b.b).Close(); err != nil {
		_ = tx.Rollback(ctx)
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCheckViolation       = "23514"
	codeUniqueViolation      = "23505"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return repo.ErrTxConflict
		case codeCheckViolation:
			return errors.Join(models.ErrInsufficientFunds, err)
		case codeUniqueViolation:
			return errors.Join(models.ErrAlreadyProcessed, err)
		}
	}
	return err
}

func notFound(err error, what error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return what
	}
	return err
}
