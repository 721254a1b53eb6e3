package models

import (
	"fmt"
	"strings"
	"time"
)

type TransactionType string

const (
	TxnP2P            TransactionType = "P2P"
	TxnPayment        TransactionType = "PAYMENT"
	TxnRefund         TransactionType = "REFUND"
	TxnRefundTicket   TransactionType = "REFUND_TICKET"
	TxnInvoicePayment TransactionType = "INVOICE_PAYMENT"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxnP2P, TxnPayment, TxnRefund, TxnRefundTicket, TxnInvoicePayment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "PENDING"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
)

// SystemAccountID is the counterparty used for platform-side legs.
const SystemAccountID = "SYSTEM"

// Transaction is an immutable entry of the transaction log. The only field
// ever changed after insert is RefundedByAdmin (false -> true).
type Transaction struct {
	ID              string            `json:"id"`
	Type            TransactionType   `json:"type"`
	SenderID        string            `json:"sender_id"`
	ReceiverID      string            `json:"receiver_id"`
	Amount          int64             `json:"amount"`
	Fee             int64             `json:"fee"`
	NetAmount       int64             `json:"net_amount"`
	Status          TransactionStatus `json:"status"`
	RefundedByAdmin bool              `json:"refunded_by_admin"`
	RefundedAt      *time.Time        `json:"refunded_at,omitempty"`
	OriginalTxID    string            `json:"original_tx_id,omitempty"`
	Description     string            `json:"description,omitempty"`
	CreatedBy       string            `json:"created_by,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// Reversible reports whether the reversal protocol may run on t.
func (t Transaction) Reversible() error {
	if t.RefundedByAdmin {
		return fmt.Errorf("%w: transaction %s already refunded", ErrAlreadyProcessed, t.ID)
	}
	if t.Status != TxnCompleted {
		return fmt.Errorf("%w: can only refund completed transactions (status %s)", ErrInvalidState, t.Status)
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: transaction id required", ErrValidation)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}
	if t.Fee < 0 || t.Fee > t.Amount {
		return fmt.Errorf("%w: fee out of range", ErrValidation)
	}
	if t.NetAmount != t.Amount-t.Fee {
		return fmt.Errorf("%w: net amount must equal amount - fee", ErrValidation)
	}
	if t.SenderID == "" || t.ReceiverID == "" {
		return fmt.Errorf("%w: sender and receiver required", ErrValidation)
	}
	return nil
}
