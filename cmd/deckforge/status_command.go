package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deckforge/internal/deck"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the generation status of every card in the deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx := cmd.Context()
			var cards []*deck.Card
			if statusFilter != "" {
				status, ok := deck.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				cards, err = store.ListByStatus(runCtx, status)
			} else {
				cards, err = store.List(runCtx)
			}
			if err != nil {
				return err
			}
			counts, err := store.Counts(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if shouldColorize(out) {
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Type", "Status", "Generated"},
					statusRows(cards),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
			} else {
				for _, card := range cards {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
						card.ID, card.Name, card.TypeLine, card.Status, generatedLabel(card))
				}
			}
			fmt.Fprintln(out, countsLine(len(cards), counts))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Show only cards with this status (pending, generating, completed, failed)")

	return cmd
}

func statusRows(cards []*deck.Card) [][]string {
	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, []string{
			strconv.FormatInt(card.ID, 10),
			card.Name,
			card.TypeLine,
			string(card.Status),
			generatedLabel(card),
		})
	}
	return rows
}

func generatedLabel(card *deck.Card) string {
	if card.GeneratedAt == nil {
		return "-"
	}
	return card.GeneratedAt.Local().Format(time.DateTime)
}

func countsLine(shown int, counts map[deck.Status]int) string {
	total := 0
	for _, count := range counts {
		total += count
	}
	parts := make([]string, 0, len(deck.AllStatuses()))
	for _, status := range deck.AllStatuses() {
		if count := counts[status]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, status))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d cards", total)
	}
	return fmt.Sprintf("%d cards: %s", total, strings.Join(parts, ", "))
}
