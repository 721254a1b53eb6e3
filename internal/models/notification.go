package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotifyUpgradeInvoice  NotificationType = "UPGRADE_INVOICE"
	NotifyPlanUpgraded    NotificationType = "PLAN_UPGRADED"
	NotifyInvoiceRefunded NotificationType = "INVOICE_REFUNDED"
)

// Notification is a one-way event record for the merchant inbox.
type Notification struct {
	ID         string           `json:"id"`
	MerchantID string           `json:"merchant_id"`
	Type       NotificationType `json:"type"`
	InvoiceID  string           `json:"invoice_id,omitempty"`
	Message    string           `json:"message"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (n Notification) Validate() error {
	if n.ID == "" || n.MerchantID == "" || n.Type == "" {
		return fmt.Errorf("%w: notification id, merchant and type required", ErrValidation)
	}
	return nil
}
