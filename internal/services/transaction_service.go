package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/wallet-ops/internal/ledger"
	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/metrics"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// ReversalService undoes completed P2P and PAYMENT transactions.
type ReversalService struct {
	ledger *ledger.Ledger
	opts   Options
}

func NewReversalService(l *ledger.Ledger, opts Options) *ReversalService {
	return &ReversalService{ledger: l, opts: opts}
}

// ----------------- Helpers -----------------

// reversalLegs returns the counter-entries for t. The fee kept on the
// forward transaction stays with the platform: the sender gets the gross
// amount back while the receiver only returns what it was credited.
func reversalLegs(t models.Transaction) ([]ledger.Leg, error) {
	switch t.Type {
	case models.TxnP2P:
		return []ledger.Leg{
			ledger.Debit(models.UserRef(t.ReceiverID), t.NetAmount),
			ledger.Credit(models.UserRef(t.SenderID), t.Amount),
		}, nil
	case models.TxnPayment:
		return []ledger.Leg{
			ledger.Debit(models.MerchantRef(t.ReceiverID), t.NetAmount),
			ledger.Credit(models.UserRef(t.SenderID), t.Amount),
		}, nil
	default:
		return nil, fmt.Errorf("%w: cannot reverse %s transaction", models.ErrUnsupported, t.Type)
	}
}

func refundTicket(id string, orig models.Transaction, admin string, opts Options) models.Transaction {
	return models.Transaction{
		ID:           id,
		Type:         models.TxnRefundTicket,
		SenderID:     orig.ReceiverID,
		ReceiverID:   orig.SenderID,
		Amount:       orig.Amount,
		Fee:          0,
		NetAmount:    orig.Amount,
		Status:       models.TxnCompleted,
		OriginalTxID: orig.ID,
		Description:  "admin reversal of " + orig.ID,
		CreatedBy:    admin,
		Timestamp:    opts.now(),
	}
}

// ----------------- REVERSE -----------------

// Reverse applies the counter-entries of transaction txID, flags it refunded
// and records a REFUND_TICKET, all in one store transaction. A second call
// for the same id fails with ErrAlreadyProcessed.
func (s *ReversalService) Reverse(ctx context.Context, lc LedgerContext, txID string) (string, error) {
	txID = strings.TrimSpace(txID)
	if txID == "" {
		return "", fmt.Errorf("%w: transaction id required", models.ErrValidation)
	}
	reversalID := uuid.NewString()
	var reversedType models.TransactionType

	err := repository.RunInTx(ctx, lc.Store, s.opts.attempts(), func(ctx context.Context, tx repository.Tx) error {
		orig, err := tx.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if err := orig.Reversible(); err != nil {
			return err
		}
		legs, err := reversalLegs(orig)
		if err != nil {
			return err
		}
		if err := s.ledger.Apply(ctx, tx, legs...); err != nil {
			return err
		}

		now := s.opts.now()
		if err := tx.MarkTransactionRefunded(ctx, orig.ID, now); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, refundTicket(reversalID, orig, lc.Admin.UID, s.opts)); err != nil {
			return err
		}
		reversedType = orig.Type
		return tx.InsertAuditLog(ctx, models.AuditLog{
			ID:          uuid.NewString(),
			EntityType:  "transaction",
			EntityID:    orig.ID,
			Action:      models.AuditReverseTransaction,
			PerformedBy: lc.Admin.UID,
			Details: map[string]any{
				"reversal_id": reversalID,
				"type":        string(orig.Type),
				"amount":      orig.Amount,
				"net_amount":  orig.NetAmount,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", err
	}

	metrics.ReversalsTotal.WithLabelValues(string(reversedType)).Inc()
	logger.From(ctx).InfoContext(ctx, "transaction reversed",
		"tx_id", txID, "reversal_id", reversalID, "type", reversedType, "admin", lc.Admin.UID)
	return reversalID, nil
}
