package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deckforge/internal/deck"
	"deckforge/internal/generation"
)

const timeRounding = 100 * time.Millisecond

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		missing   bool
		failed    bool
		all       bool
		ids       []int64
		model     string
		style     string
		skipImage bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate cards through the external renderer",
		Long: `Generate invokes the configured renderer once per selected card.

By default only pending cards are generated. Use --failed to retry failed
cards, --ids to force specific cards regardless of status, or --all to
regenerate the entire deck.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if countSelectors(missing, failed, all, len(ids) > 0) > 1 {
				return fmt.Errorf("choose at most one of --missing, --failed, --ids, --all")
			}

			ctrl, store, err := buildController(cmd, ctx, model, style)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx := cmd.Context()
			mode := generation.ModeFull
			if skipImage {
				mode = generation.ModeCardOnly
			}

			var report generation.Report
			switch {
			case failed:
				report, err = ctrl.RetryFailed(runCtx)
			case all:
				report, err = regenerateAll(runCtx, ctrl, store, mode)
			case len(ids) > 0:
				report, err = ctrl.RegenerateSelected(runCtx, ids, mode)
			default:
				report, err = ctrl.GenerateMissing(runCtx)
			}
			if err != nil {
				return err
			}
			return printRunOutcome(cmd, ctrl, report)
		},
	}

	cmd.Flags().BoolVar(&missing, "missing", false, "Generate only pending cards (default)")
	cmd.Flags().BoolVar(&failed, "failed", false, "Retry failed cards")
	cmd.Flags().BoolVar(&all, "all", false, "Regenerate every card in the deck")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Generate specific cards by ID")
	cmd.Flags().StringVar(&model, "model", "", "Override the configured renderer model")
	cmd.Flags().StringVar(&style, "style", "", "Override the configured art style")
	cmd.Flags().BoolVar(&skipImage, "skip-image", false, "Render the card frame without generating artwork")

	return cmd
}

func countSelectors(selected ...bool) int {
	count := 0
	for _, s := range selected {
		if s {
			count++
		}
	}
	return count
}

// buildController opens the deck store and wires a controller with CLI event
// output. Model and style overrides apply to this invocation only.
func buildController(cmd *cobra.Command, ctx *commandContext, model, style string) (*generation.Controller, *deck.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := ctx.openStore()
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(model) != "" {
		cfg.Renderer.Model = strings.TrimSpace(model)
	}
	if strings.TrimSpace(style) != "" {
		cfg.Renderer.Style = strings.TrimSpace(style)
	}

	ctrl := generation.NewController(cfg, store,
		generation.WithEvents(newCLIEvents(cmd.OutOrStdout())),
		generation.WithControllerLogger(logger),
	)
	return ctrl, store, nil
}

func regenerateAll(ctx context.Context, ctrl *generation.Controller, store *deck.Store, mode generation.Mode) (generation.Report, error) {
	cards, err := store.List(ctx)
	if err != nil {
		return generation.Report{}, err
	}
	ids := make([]int64, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	return ctrl.RegenerateSelected(ctx, ids, mode)
}

func printRunOutcome(cmd *cobra.Command, ctrl *generation.Controller, report generation.Report) error {
	stats, err := ctrl.Statistics(cmd.Context(), &report)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	succeeded := 0
	for _, result := range report.Results {
		if result.Success {
			succeeded++
		}
	}
	fmt.Fprintf(out, "\n%d of %d cards generated in %s\n",
		succeeded, report.Dispatched, stats.Duration.Round(timeRounding))
	if report.Stopped {
		fmt.Fprintln(out, "run stopped before all cards were dispatched")
	}
	if report.Halted {
		fmt.Fprintf(out, "run halted: %s\n", report.HaltReason)
	}
	fmt.Fprintf(out, "deck: %d completed, %d pending, %d failed (%.0f%% complete)\n",
		stats.Completed, stats.Pending, stats.Failed, stats.CompletionPercent)

	if report.Halted || len(stats.Errors) > 0 {
		return fmt.Errorf("generation finished with failures")
	}
	return nil
}
