package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckforge/internal/deck"
)

func newDecksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List decks in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names, err := deck.ListDecks(cfg.Paths.LibraryDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "no decks found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
