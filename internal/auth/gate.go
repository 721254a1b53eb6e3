package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

const devPrefix = "dev-"

// Gate resolves a credential to an admin identity. Only the admin-users
// collection is consulted; a denied caller never reaches money or invoices.
type Gate struct {
	tm      *TokenManager
	admins  repository.Admins
	devMode bool
}

func NewGate(tm *TokenManager, admins repository.Admins, appEnv string) *Gate {
	return &Gate{tm: tm, admins: admins, devMode: appEnv == "dev"}
}

func (g *Gate) Authorize(ctx context.Context, credential string) (models.AdminIdentity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return models.AdminIdentity{}, fmt.Errorf("%w: missing credential", models.ErrUnauthorized)
	}

	var uid string
	if g.devMode && strings.HasPrefix(credential, devPrefix) {
		uid = strings.TrimPrefix(credential, devPrefix)
	} else {
		claims, err := g.tm.Parse(credential)
		if err != nil {
			return models.AdminIdentity{}, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
		}
		uid = claims.UID
	}

	admin, err := g.admins.GetAdmin(ctx, uid)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.AdminIdentity{}, fmt.Errorf("%w: %s is not an admin", models.ErrUnauthorized, uid)
		}
		return models.AdminIdentity{}, err
	}
	if !admin.Role.Allowed() {
		slog.WarnContext(ctx, "admin role not allowed", "uid", uid, "role", admin.Role)
		return models.AdminIdentity{}, fmt.Errorf("%w: role %s", models.ErrUnauthorized, admin.Role)
	}
	return models.AdminIdentity{UID: admin.UID, Role: admin.Role}, nil
}
