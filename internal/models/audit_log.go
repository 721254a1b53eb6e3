package models

import (
	"fmt"
	"time"
)

const (
	AuditReverseTransaction = "REVERSE_TRANSACTION"
	AuditApproveInvoice     = "APPROVE_INVOICE"
	AuditRefundInvoice      = "REFUND_INVOICE"
	AuditResetPin           = "RESET_PIN"
)

type AuditLog struct {
	ID          string         `json:"id"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Action      string         `json:"action"`
	PerformedBy string         `json:"performed_by"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (l AuditLog) Validate() error {
	if l.ID == "" || l.Action == "" || l.PerformedBy == "" {
		return fmt.Errorf("%w: audit log id, action and actor required", ErrValidation)
	}
	return nil
}
