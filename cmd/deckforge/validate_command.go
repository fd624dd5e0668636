package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckforge/internal/generation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var cardOnly bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every card is ready for generation",
		Long: `Validate runs the same pre-flight checks a generation run would, without
starting any renderer process. All problems are reported at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, store, err := buildController(cmd, ctx, "", "")
			if err != nil {
				return err
			}
			defer store.Close()

			cards, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			mode := generation.ModeFull
			if cardOnly {
				mode = generation.ModeCardOnly
			}
			if err := ctrl.Validate(cards, mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cards ready for generation\n", len(cards))
			return nil
		},
	}

	cmd.Flags().BoolVar(&cardOnly, "card-only", false, "Validate for frame-only rendering (art descriptions not required)")

	return cmd
}
