package postgres

import (
	"context"
	"fmt"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func (s *Store) GetAdmin(ctx context.Context, uid string) (models.AdminUser, error) {
	var a models.AdminUser
	err := s.pool.QueryRow(ctx,
		`SELECT uid, email, role, created_at FROM admin_users WHERE uid=$1`, uid,
	).Scan(&a.UID, &a.Email, &a.Role, &a.CreatedAt)
	return a, notFound(err, fmt.Errorf("%w: admin %s", models.ErrNotFound, uid))
}
