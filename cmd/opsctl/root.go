package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/wallet-ops/internal/app"
	"github.com/baharkarakas/wallet-ops/internal/config"
	"github.com/baharkarakas/wallet-ops/internal/logger"
)

type rootOpts struct {
	token string
	store string
}

// openFunc builds the application; replaced in tests.
var openFunc = func(ctx context.Context, cfg config.Config, log *slog.Logger) (*app.App, error) {
	return app.New(ctx, cfg, log)
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:           "opsctl",
		Short:         "Wallet operations console",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.token, "token", "", "admin credential (defaults to $OPS_TOKEN)")
	root.PersistentFlags().StringVar(&opts.store, "store", "", "store backend: postgres, mongo or memory (defaults to $APP_STORE)")

	root.AddCommand(newMigrateCmd(opts), newReverseCmd(opts), newInvoiceCmd(opts))
	return root
}

func (o *rootOpts) credential() (string, error) {
	if o.token != "" {
		return o.token, nil
	}
	if t := os.Getenv("OPS_TOKEN"); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("no credential: pass --token or set OPS_TOKEN")
}

func (o *rootOpts) config() config.Config {
	cfg := config.Load()
	if o.store != "" {
		cfg.Store = o.store
	}
	return cfg
}

// withApp opens the application, runs fn and closes it again.
func (o *rootOpts) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, cred string) (any, error)) error {
	cred, err := o.credential()
	if err != nil {
		return err
	}
	cfg := o.config()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New(cfg.Env)
	a, err := openFunc(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	out, err := fn(logger.With(ctx, log), a, cred)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
