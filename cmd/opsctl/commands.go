package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/wallet-ops/internal/app"
	"github.com/baharkarakas/wallet-ops/internal/logger"
)

func newMigrateCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations or create indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.config()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := app.OpenStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer st.Close(ctx)
			logger.New(cfg.Env).Info("migrations applied", "store", cfg.Store)
			return nil
		},
	}
}

func newReverseCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a completed P2P or PAYMENT transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, cred string) (any, error) {
				id, err := a.Console.ReverseTransaction(ctx, cred, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]string{"reversal_id": id}, nil
			})
		},
	}
}

func newInvoiceCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Move an upgrade invoice through its workflow",
	}

	var payer string
	refund := invoiceAction(opts, "refund", "Refund a paid or suspended invoice to its payer",
		func(ctx context.Context, a *app.App, cred, id string) (any, error) {
			return a.Console.RefundInvoice(ctx, cred, id, payer)
		})
	refund.Flags().StringVar(&payer, "payer", "", "payer to credit when the invoice has none recorded")

	cmd.AddCommand(
		invoiceAction(opts, "approve", "Approve a paid invoice and upgrade the merchant plan",
			func(ctx context.Context, a *app.App, cred, id string) (any, error) {
				return a.Console.ApproveInvoice(ctx, cred, id)
			}),
		invoiceAction(opts, "cancel", "Cancel an unpaid invoice",
			func(ctx context.Context, a *app.App, cred, id string) (any, error) {
				return a.Console.CancelInvoice(ctx, cred, id)
			}),
		invoiceAction(opts, "suspend", "Suspend a paid invoice",
			func(ctx context.Context, a *app.App, cred, id string) (any, error) {
				return a.Console.SuspendInvoice(ctx, cred, id)
			}),
		refund,
	)
	return cmd
}

func invoiceAction(opts *rootOpts, name, short string, fn func(ctx context.Context, a *app.App, cred, id string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <invoice-id>", name),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App, cred string) (any, error) {
				return fn(ctx, a, cred, args[0])
			})
		},
	}
}
