package mongo

import (
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func accountID(ref models.AccountRef) string { return ref.String() }

type accountDoc struct {
	ID            string     `bson:"_id"`
	Kind          string     `bson:"kind"`
	AccountID     string     `bson:"account_id"`
	DisplayName   string     `bson:"display_name,omitempty"`
	Balance       int64      `bson:"balance"`
	IsFrozen      bool       `bson:"is_frozen"`
	Tier          string     `bson:"tier,omitempty"`
	Plan          string     `bson:"plan,omitempty"`
	PinHash       string     `bson:"pin_hash,omitempty"`
	PlanUpdatedAt *time.Time `bson:"plan_updated_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
}

func (d accountDoc) toModel() models.Account {
	return models.Account{
		ID:            d.AccountID,
		Kind:          models.AccountKind(d.Kind),
		DisplayName:   d.DisplayName,
		Balance:       d.Balance,
		IsFrozen:      d.IsFrozen,
		Tier:          d.Tier,
		Plan:          models.Plan(d.Plan),
		PinHash:       d.PinHash,
		PlanUpdatedAt: d.PlanUpdatedAt,
		CreatedAt:     d.CreatedAt,
	}
}

type transactionDoc struct {
	ID              string     `bson:"_id"`
	Type            string     `bson:"type"`
	SenderID        string     `bson:"sender_id"`
	ReceiverID      string     `bson:"receiver_id"`
	Amount          int64      `bson:"amount"`
	Fee             int64      `bson:"fee"`
	NetAmount       int64      `bson:"net_amount"`
	Status          string     `bson:"status"`
	RefundedByAdmin bool       `bson:"refunded_by_admin"`
	RefundedAt      *time.Time `bson:"refunded_at,omitempty"`
	OriginalTxID    string     `bson:"original_tx_id,omitempty"`
	Description     string     `bson:"description,omitempty"`
	CreatedBy       string     `bson:"created_by,omitempty"`
	Timestamp       time.Time  `bson:"timestamp"`
}

func toTransactionDoc(t models.Transaction) transactionDoc {
	return transactionDoc{
		ID: t.ID, Type: string(t.Type), SenderID: t.SenderID, ReceiverID: t.ReceiverID,
		Amount: t.Amount, Fee: t.Fee, NetAmount: t.NetAmount, Status: string(t.Status),
		RefundedByAdmin: t.RefundedByAdmin, RefundedAt: t.RefundedAt, OriginalTxID: t.OriginalTxID,
		Description: t.Description, CreatedBy: t.CreatedBy, Timestamp: t.Timestamp,
	}
}

func (d transactionDoc) toModel() models.Transaction {
	return models.Transaction{
		ID: d.ID, Type: models.TransactionType(d.Type), SenderID: d.SenderID, ReceiverID: d.ReceiverID,
		Amount: d.Amount, Fee: d.Fee, NetAmount: d.NetAmount, Status: models.TransactionStatus(d.Status),
		RefundedByAdmin: d.RefundedByAdmin, RefundedAt: d.RefundedAt, OriginalTxID: d.OriginalTxID,
		Description: d.Description, CreatedBy: d.CreatedBy, Timestamp: d.Timestamp,
	}
}

type invoiceDoc struct {
	ID           string     `bson:"_id"`
	MerchantID   string     `bson:"merchant_id"`
	Amount       int64      `bson:"amount"`
	TargetPlan   string     `bson:"target_plan"`
	Status       string     `bson:"status"`
	PaidBy       string     `bson:"paid_by,omitempty"`
	RefundAmount int64      `bson:"refund_amount,omitempty"`
	CreatedBy    string     `bson:"created_by,omitempty"`
	ApprovedBy   string     `bson:"approved_by,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    *time.Time `bson:"updated_at,omitempty"`
	PaidAt       *time.Time `bson:"paid_at,omitempty"`
	ApprovedAt   *time.Time `bson:"approved_at,omitempty"`
	SuspendedAt  *time.Time `bson:"suspended_at,omitempty"`
	CanceledAt   *time.Time `bson:"canceled_at,omitempty"`
	RefundedAt   *time.Time `bson:"refunded_at,omitempty"`
}

func toInvoiceDoc(i models.Invoice) invoiceDoc {
	return invoiceDoc{
		ID: i.ID, MerchantID: i.MerchantID, Amount: i.Amount, TargetPlan: string(i.TargetPlan),
		Status: string(i.Status), PaidBy: i.PaidBy, RefundAmount: i.RefundAmount, CreatedBy: i.CreatedBy,
		ApprovedBy: i.ApprovedBy, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt, PaidAt: i.PaidAt,
		ApprovedAt: i.ApprovedAt, SuspendedAt: i.SuspendedAt, CanceledAt: i.CanceledAt, RefundedAt: i.RefundedAt,
	}
}

func (d invoiceDoc) toModel() models.Invoice {
	return models.Invoice{
		ID: d.ID, MerchantID: d.MerchantID, Amount: d.Amount, TargetPlan: models.Plan(d.TargetPlan),
		Status: models.InvoiceStatus(d.Status), PaidBy: d.PaidBy, RefundAmount: d.RefundAmount,
		CreatedBy: d.CreatedBy, ApprovedBy: d.ApprovedBy, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		PaidAt: d.PaidAt, ApprovedAt: d.ApprovedAt, SuspendedAt: d.SuspendedAt, CanceledAt: d.CanceledAt,
		RefundedAt: d.RefundedAt,
	}
}

type notificationDoc struct {
	ID         string    `bson:"_id"`
	MerchantID string    `bson:"merchant_id"`
	Type       string    `bson:"type"`
	InvoiceID  string    `bson:"invoice_id,omitempty"`
	Message    string    `bson:"message"`
	Read       bool      `bson:"read"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toNotificationDoc(n models.Notification) notificationDoc {
	return notificationDoc{
		ID: n.ID, MerchantID: n.MerchantID, Type: string(n.Type), InvoiceID: n.InvoiceID,
		Message: n.Message, Read: n.Read, CreatedAt: n.CreatedAt,
	}
}

func (d notificationDoc) toModel() models.Notification {
	return models.Notification{
		ID: d.ID, MerchantID: d.MerchantID, Type: models.NotificationType(d.Type), InvoiceID: d.InvoiceID,
		Message: d.Message, Read: d.Read, CreatedAt: d.CreatedAt,
	}
}

type auditDoc struct {
	ID          string         `bson:"_id"`
	EntityType  string         `bson:"entity_type"`
	EntityID    string         `bson:"entity_id"`
	Action      string         `bson:"action"`
	PerformedBy string         `bson:"performed_by"`
	Details     map[string]any `bson:"details,omitempty"`
	CreatedAt   time.Time      `bson:"timestamp"`
}

func toAuditDoc(l models.AuditLog) auditDoc {
	return auditDoc{
		ID: l.ID, EntityType: l.EntityType, EntityID: l.EntityID, Action: l.Action,
		PerformedBy: l.PerformedBy, Details: l.Details, CreatedAt: l.CreatedAt,
	}
}

type adminDoc struct {
	UID       string    `bson:"_id"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
}
