package postgres

import (
	"context"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

const insertAuditSQL = `INSERT INTO audit_logs(id, entity_type, entity_id, action, performed_by, details, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7)`

func insertAuditLog(ctx context.Context, q querier, l models.AuditLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := q.Exec(ctx, insertAuditSQL, l.ID, l.EntityType, l.EntityID, l.Action, l.PerformedBy, l.Details, l.CreatedAt)
	return err
}
