package commands

import (
	"context"
	"fmt"
	"time"

	"prakriti-darpan/store"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo reports into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				if err := st.SeedIfEmpty(ctx); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				reports, err := st.List(ctx)
				if err != nil {
					return err
				}
				return printReports(cmd.OutOrStdout(), opts.Format, reports)
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(ctx, opts.Config, opts.Logger)
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			opts.Logger.Error("error closing report store", "err", err)
		}
	}()

	return fn(ctx, st)
}
