package commands

import (
	"context"
	"fmt"

	"prakriti-darpan/store"

	"github.com/spf13/cobra"
)

// NewReportsCommand creates the reports command group.
func NewReportsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect and manage stored reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				reports, err := st.List(ctx)
				if err != nil {
					return err
				}
				return printReports(cmd.OutOrStdout(), opts.Format, reports)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				report, ok, err := st.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("report %q not found", args[0])
				}
				return printReport(cmd.OutOrStdout(), opts.Format, report)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every locally stored report",
		Long: `Delete every locally stored report.

With a remote table configured only the local fallback copy is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear reports without --yes")
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				if err := st.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared local reports (mode %s)\n", st.Mode())
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing")
	cmd.AddCommand(clearCmd)

	return cmd
}
