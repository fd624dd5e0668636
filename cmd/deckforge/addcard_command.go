package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckforge/internal/deck"
)

func newAddCardCommand(ctx *commandContext) *cobra.Command {
	var (
		name      string
		typeLine  string
		manaCost  string
		rulesText string
		power     int
		toughness int
		flavor    string
		rarity    string
		art       string
	)

	cmd := &cobra.Command{
		Use:   "add-card",
		Short: "Add a card to the deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			card := &deck.Card{
				Name:           name,
				TypeLine:       typeLine,
				ManaCost:       manaCost,
				RulesText:      rulesText,
				Flavor:         flavor,
				Rarity:         rarity,
				ArtDescription: art,
			}
			if cmd.Flags().Changed("power") {
				card.Power = &power
			}
			if cmd.Flags().Changed("toughness") {
				card.Toughness = &toughness
			}

			if err := store.Add(cmd.Context(), card); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added card %d: %s\n", card.ID, card.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Card name (required)")
	cmd.Flags().StringVar(&typeLine, "type", "", "Type line, e.g. \"Creature — Dragon\" (required)")
	cmd.Flags().StringVar(&manaCost, "cost", "", "Mana cost, e.g. 2UR")
	cmd.Flags().StringVar(&rulesText, "text", "", "Rules text")
	cmd.Flags().IntVar(&power, "power", 0, "Creature power")
	cmd.Flags().IntVar(&toughness, "toughness", 0, "Creature toughness")
	cmd.Flags().StringVar(&flavor, "flavor", "", "Flavor text")
	cmd.Flags().StringVar(&rarity, "rarity", "", "Rarity")
	cmd.Flags().StringVar(&art, "art", "", "Art description prompt")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
