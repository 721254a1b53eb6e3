package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/wallet-ops/internal/models"
	repo "github.com/baharkarakas/wallet-ops/internal/repository"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{codeSerializationFailure, repo.ErrTxConflict},
		{codeDeadlockDetected, repo.ErrTxConflict},
		{codeCheckViolation, models.ErrInsufficientFunds},
		{codeUniqueViolation, models.ErrAlreadyProcessed},
	}
	for _, tt := range tests {
		err := mapErr(fmt.Errorf("exec: %w", &pgconn.PgError{Code: tt.code}))
		if !errors.Is(err, tt.want) {
			t.Errorf("code %s: err = %v, want %v", tt.code, err, tt.want)
		}
	}
	plain := errors.New("connection reset")
	if mapErr(plain) != plain || mapErr(nil) != nil {
		t.Fatalf("unrelated errors must pass through")
	}
}

func TestNotFound(t *testing.T) {
	if err := notFound(pgx.ErrNoRows, models.ErrNotFound); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
