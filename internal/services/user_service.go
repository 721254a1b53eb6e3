package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/baharkarakas/wallet-ops/internal/auth"
	"github.com/baharkarakas/wallet-ops/internal/logger"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

type UserService struct {
	opts Options
}

func NewUserService(opts Options) *UserService { return &UserService{opts: opts} }

// ResetPin replaces a user's PIN with a fresh random one. The hash and the
// RESET_PIN audit entry are written in one batch; the clear PIN is only
// ever returned here.
func (s *UserService) ResetPin(ctx context.Context, lc LedgerContext, userID string) (string, error) {
	userID, err := requireID(userID, "user")
	if err != nil {
		return "", err
	}
	if _, err := lc.Store.GetAccount(ctx, models.UserRef(userID)); err != nil {
		return "", err
	}
	pin, err := auth.NewPIN()
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	hash, err := auth.HashPIN(pin)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}

	err = lc.Store.CommitBatch(ctx, func(b repository.Batch) {
		b.SetPinHash(userID, hash)
		b.InsertAuditLog(models.AuditLog{
			ID:          uuid.NewString(),
			EntityType:  "user",
			EntityID:    userID,
			Action:      models.AuditResetPin,
			PerformedBy: lc.Admin.UID,
			CreatedAt:   s.opts.now(),
		})
	})
	if err != nil {
		return "", err
	}
	logger.From(ctx).InfoContext(ctx, "user pin reset", "user_id", userID, "admin", lc.Admin.UID)
	return pin, nil
}
