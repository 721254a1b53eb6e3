package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

type adminTable struct {
	rows  map[string]models.AdminUser
	calls int
}

func (a *adminTable) GetAdmin(_ context.Context, uid string) (models.AdminUser, error) {
	a.calls++
	u, ok := a.rows[uid]
	if !ok {
		return models.AdminUser{}, fmt.Errorf("%w: admin %s", models.ErrNotFound, uid)
	}
	return u, nil
}

func newTable() *adminTable {
	return &adminTable{rows: map[string]models.AdminUser{
		"root":    {UID: "root", Role: models.RoleRoot},
		"manager": {UID: "manager", Role: models.RoleManager},
		"viewer":  {UID: "viewer", Role: "VIEWER"},
	}}
}

func TestGateAuthorize(t *testing.T) {
	tm := NewTokenManager("s3cret", "wallet-ops", time.Hour)
	rootTok, _, err := tm.Issue("root")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	viewerTok, _, _ := tm.Issue("viewer")
	strangerTok, _, _ := tm.Issue("stranger")
	foreignTok, _, _ := NewTokenManager("other", "wallet-ops", time.Hour).Issue("root")
	otherIssuerTok, _, _ := NewTokenManager("s3cret", "someone-else", time.Hour).Issue("root")

	tests := []struct {
		name     string
		env      string
		cred     string
		wantUID  string
		wantErr  error
		lookedUp bool
	}{
		{name: "jwt root", env: "prod", cred: rootTok, wantUID: "root", lookedUp: true},
		{name: "dev token", env: "dev", cred: "dev-manager", wantUID: "manager", lookedUp: true},
		{name: "dev token outside dev", env: "prod", cred: "dev-manager", wantErr: models.ErrUnauthorized},
		{name: "empty", env: "dev", cred: "  ", wantErr: models.ErrUnauthorized},
		{name: "bad signature", env: "prod", cred: foreignTok, wantErr: models.ErrUnauthorized},
		{name: "wrong issuer", env: "prod", cred: otherIssuerTok, wantErr: models.ErrUnauthorized},
		{name: "not an admin", env: "prod", cred: strangerTok, wantErr: models.ErrUnauthorized, lookedUp: true},
		{name: "role not allowed", env: "prod", cred: viewerTok, wantErr: models.ErrUnauthorized, lookedUp: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := newTable()
			g := NewGate(tm, admins, tt.env)
			id, err := g.Authorize(context.Background(), tt.cred)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil || id.UID != tt.wantUID {
				t.Fatalf("got %+v, %v", id, err)
			}
			if (admins.calls > 0) != tt.lookedUp {
				t.Fatalf("admin lookups = %d", admins.calls)
			}
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("s3cret", "wallet-ops", -time.Minute)
	tok, _, err := tm.Issue("root")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tm.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want invalid token", err)
	}
}

func TestPIN(t *testing.T) {
	pin, err := NewPIN()
	if err != nil {
		t.Fatalf("new pin: %v", err)
	}
	if len(pin) != pinDigits {
		t.Fatalf("pin %q has wrong length", pin)
	}
	hash, err := HashPIN(pin)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := VerifyPIN(pin, hash); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPIN("xxxxxx", hash); err == nil {
		t.Fatalf("wrong pin verified")
	}
}
