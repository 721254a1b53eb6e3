package services

import (
	"context"
	"fmt"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

// BalanceService is the read side of accounts and the transaction log.
type BalanceService struct{}

func NewBalanceService() *BalanceService { return &BalanceService{} }

func (s *BalanceService) Account(ctx context.Context, lc LedgerContext, ref models.AccountRef) (models.Account, error) {
	if err := ref.Validate(); err != nil {
		return models.Account{}, err
	}
	return lc.Store.GetAccount(ctx, ref)
}

func (s *BalanceService) Transaction(ctx context.Context, lc LedgerContext, id string) (models.Transaction, error) {
	id, err := requireID(id, "transaction")
	if err != nil {
		return models.Transaction{}, err
	}
	return lc.Store.GetTransaction(ctx, id)
}

const maxListLimit = 500

func (s *BalanceService) Transactions(ctx context.Context, lc LedgerContext, limit int) ([]models.Transaction, error) {
	if limit < 0 || limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d", models.ErrValidation, maxListLimit)
	}
	return lc.Store.ListTransactions(ctx, limit)
}

func (s *BalanceService) Notifications(ctx context.Context, lc LedgerContext, merchantID string) ([]models.Notification, error) {
	merchantID, err := requireID(merchantID, "merchant")
	if err != nil {
		return nil, err
	}
	return lc.Store.ListNotifications(ctx, merchantID)
}
