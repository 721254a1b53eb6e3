package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

const invoiceCols = `id, merchant_id, amount, target_plan, status, paid_by, refund_amount, created_by, approved_by,
  created_at, updated_at, paid_at, approved_at, suspended_at, canceled_at, refunded_at`

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var i models.Invoice
	err := row.Scan(&i.ID, &i.MerchantID, &i.Amount, &i.TargetPlan, &i.Status, &i.PaidBy, &i.RefundAmount,
		&i.CreatedBy, &i.ApprovedBy, &i.CreatedAt, &i.UpdatedAt, &i.PaidAt, &i.ApprovedAt, &i.SuspendedAt,
		&i.CanceledAt, &i.RefundedAt)
	return i, err
}

func getInvoice(ctx context.Context, q querier, id string) (models.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id=$1`, id))
	return inv, notFound(err, fmt.Errorf("%w: invoice %s", models.ErrNotFound, id))
}

func insertInvoice(ctx context.Context, q querier, i models.Invoice) error {
	if err := i.Validate(); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
INSERT INTO invoices (`+invoiceCols+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		i.ID, i.MerchantID, i.Amount, i.TargetPlan, i.Status, i.PaidBy, i.RefundAmount, i.CreatedBy, i.ApprovedBy,
		i.CreatedAt, i.UpdatedAt, i.PaidAt, i.ApprovedAt, i.SuspendedAt, i.CanceledAt, i.RefundedAt,
	)
	return err
}

func updateInvoice(ctx context.Context, q querier, i models.Invoice) error {
	if err := i.Validate(); err != nil {
		return err
	}
	ct, err := q.Exec(ctx, `
UPDATE invoices SET
  amount=$2, target_plan=$3, status=$4, paid_by=$5, refund_amount=$6, approved_by=$7,
  updated_at=$8, paid_at=$9, approved_at=$10, suspended_at=$11, canceled_at=$12, refunded_at=$13
WHERE id=$1`,
		i.ID, i.Amount, i.TargetPlan, i.Status, i.PaidBy, i.RefundAmount, i.ApprovedBy,
		i.UpdatedAt, i.PaidAt, i.ApprovedAt, i.SuspendedAt, i.CanceledAt, i.RefundedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", models.ErrNotFound, i.ID)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (models.Invoice, error) {
	return getInvoice(ctx, s.pool, id)
}

func (s *Store) ListInvoicesByMerchant(ctx context.Context, merchantID string) ([]models.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE merchant_id=$1 ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
