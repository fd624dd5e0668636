package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckforge/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Align card statuses with the files on disk",
		Long: `Reconcile walks the deck and makes the store agree with the filesystem:
cards whose rendered file exists become completed, completed cards whose file
is gone fall back to pending. Cards that are generating or failed keep their
status either way.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStoreRaw()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := reconcile.New(store, store.Paths(), logger).Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
}
