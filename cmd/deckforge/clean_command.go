package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var ids []int64

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete generated files for selected cards and reset them to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 {
				return fmt.Errorf("at least one card ID is required (use --ids)")
			}
			ctrl, store, err := buildController(cmd, ctx, "", "")
			if err != nil {
				return err
			}
			defer store.Close()

			if err := ctrl.DeleteGenerated(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d cards\n", len(ids))
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Card IDs to clean")

	return cmd
}
