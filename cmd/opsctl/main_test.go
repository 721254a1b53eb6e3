package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/app"
	"github.com/baharkarakas/wallet-ops/internal/config"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/repository/memory"
)

func seededApp(t *testing.T) *memory.Store {
	t.Helper()
	var st *memory.Store
	prev := openFunc
	openFunc = func(ctx context.Context, cfg config.Config, log *slog.Logger) (*app.App, error) {
		cfg.Store = config.StoreMemory
		cfg.Env = "dev"
		cfg.StoreTimeout = time.Second
		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		st = a.Store.(*memory.Store)
		st.PutAdmin(models.AdminUser{UID: "root", Role: models.RoleRoot})
		st.PutAccount(models.Account{ID: "S", Kind: models.AccountUser})
		st.PutAccount(models.Account{ID: "R", Kind: models.AccountUser, Balance: 500})
		st.PutTransaction(models.Transaction{
			ID: "t1", Type: models.TxnP2P, SenderID: "S", ReceiverID: "R",
			Amount: 500, NetAmount: 500, Status: models.TxnCompleted, Timestamp: time.Now(),
		})
		return a, nil
	}
	t.Cleanup(func() { openFunc = prev })
	return st
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReverseCommand(t *testing.T) {
	seededApp(t)
	t.Setenv("OPS_TOKEN", "")
	out, err := run(t, "reverse", "t1", "--token", "dev-root")
	if err != nil {
		t.Fatalf("reverse: %v\n%s", err, out)
	}
	var res map[string]string
	if err := json.Unmarshal([]byte(out), &res); err != nil || res["reversal_id"] == "" {
		t.Fatalf("output %q", out)
	}
}

func TestCredentialRequired(t *testing.T) {
	seededApp(t)
	t.Setenv("OPS_TOKEN", "")
	if _, err := run(t, "reverse", "t1"); err == nil || !strings.Contains(err.Error(), "credential") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvoiceCommandDenied(t *testing.T) {
	seededApp(t)
	t.Setenv("OPS_TOKEN", "dev-intruder")
	if _, err := run(t, "invoice", "approve", "inv-1"); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvoiceCommandArgs(t *testing.T) {
	seededApp(t)
	if _, err := run(t, "invoice", "cancel"); err == nil {
		t.Fatalf("missing id accepted")
	}
}
