package postgres

import (
	"context"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func (s *Store) ListNotifications(ctx context.Context, merchantID string) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, merchant_id, type, invoice_id, message, read, created_at
  FROM notifications
 WHERE merchant_id=$1
 ORDER BY created_at DESC
 LIMIT 100`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.MerchantID, &n.Type, &n.InvoiceID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
