package models

import (
	"fmt"
	"strings"
	"time"
)

type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "UNPAID"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCompleted InvoiceStatus = "COMPLETED"
	InvoiceSuspended InvoiceStatus = "SUSPENDED"
	InvoiceCanceled  InvoiceStatus = "CANCELED"
	InvoiceRefunded  InvoiceStatus = "REFUNDED"
)

func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceCompleted || s == InvoiceCanceled || s == InvoiceRefunded
}

// Invoice is an upgrade invoice; status is written only by the invoice workflow.
type Invoice struct {
	ID           string        `json:"id"`
	MerchantID   string        `json:"merchant_id"`
	Amount       int64         `json:"amount"`
	TargetPlan   Plan          `json:"target_plan"`
	Status       InvoiceStatus `json:"status"`
	PaidBy       string        `json:"paid_by,omitempty"`
	RefundAmount int64         `json:"refund_amount,omitempty"`
	CreatedBy    string        `json:"created_by,omitempty"`
	ApprovedBy   string        `json:"approved_by,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	SuspendedAt  *time.Time    `json:"suspended_at,omitempty"`
	CanceledAt   *time.Time    `json:"canceled_at,omitempty"`
	RefundedAt   *time.Time    `json:"refunded_at,omitempty"`
}

func (i Invoice) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: invoice id required", ErrValidation)
	}
	if strings.TrimSpace(i.MerchantID) == "" {
		return fmt.Errorf("%w: merchant id required", ErrValidation)
	}
	if i.Amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}
	if !i.TargetPlan.Valid() {
		return fmt.Errorf("%w: unknown plan %q", ErrValidation, i.TargetPlan)
	}
	switch i.Status {
	case InvoiceUnpaid, InvoicePaid, InvoiceCompleted, InvoiceSuspended, InvoiceCanceled, InvoiceRefunded:
	default:
		return fmt.Errorf("%w: unknown invoice status %q", ErrValidation, i.Status)
	}
	return nil
}
