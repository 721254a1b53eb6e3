package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

const transactionCols = `id, type, sender_id, receiver_id, amount, fee, net_amount, status,
  refunded_by_admin, refunded_at, original_tx_id, description, created_by, timestamp`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Type, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Fee, &t.NetAmount, &t.Status,
		&t.RefundedByAdmin, &t.RefundedAt, &t.OriginalTxID, &t.Description, &t.CreatedBy, &t.Timestamp)
	return t, err
}

func getTransaction(ctx context.Context, q querier, id string) (models.Transaction, error) {
	t, err := scanTransaction(q.QueryRow(ctx, `SELECT `+transactionCols+` FROM transactions WHERE id=$1`, id))
	return t, notFound(err, fmt.Errorf("%w: transaction %s", models.ErrNotFound, id))
}

func insertTransaction(ctx context.Context, q querier, t models.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
INSERT INTO transactions (
  id, type, sender_id, receiver_id, amount, fee, net_amount, status,
  refunded_by_admin, original_tx_id, description, created_by, timestamp
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		t.ID, t.Type, t.SenderID, t.ReceiverID, t.Amount, t.Fee, t.NetAmount, t.Status,
		t.RefundedByAdmin, t.OriginalTxID, t.Description, t.CreatedBy, t.Timestamp,
	)
	return err
}

// markRefunded only flips false -> true; a second flip matches no row.
func markRefunded(ctx context.Context, q querier, id string, at time.Time) error {
	ct, err := q.Exec(ctx,
		`UPDATE transactions SET refunded_by_admin=true, refunded_at=$2 WHERE id=$1 AND refunded_by_admin=false`,
		id, at,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s already refunded", models.ErrAlreadyProcessed, id)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return getTransaction(ctx, s.pool, id)
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionCols+` FROM transactions ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
