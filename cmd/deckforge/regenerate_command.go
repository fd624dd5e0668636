package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deckforge/internal/generation"
)

func newRegenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		ids         []int64
		keepArt     bool
		newArt      bool
		customImage string
		model       string
		style       string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate selected cards",
		Long: `Regenerate resets the selected cards and runs them through the renderer
again. With --keep-art the existing artwork is reused and only the card frame
is re-rendered. With --new-art fresh artwork is generated. With --custom-image
a user-supplied image replaces the generated artwork; this form accepts
exactly one card ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 {
				return fmt.Errorf("at least one card ID is required (use --ids)")
			}
			if countSelectors(keepArt, newArt, customImage != "") > 1 {
				return fmt.Errorf("choose at most one of --keep-art, --new-art, --custom-image")
			}
			if customImage != "" && len(ids) != 1 {
				return fmt.Errorf("--custom-image applies to exactly one card")
			}

			ctrl, store, err := buildController(cmd, ctx, model, style)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx := cmd.Context()
			var report generation.Report
			switch {
			case customImage != "":
				report, err = ctrl.UseCustomImage(runCtx, ids[0], customImage)
			case keepArt:
				report, err = ctrl.RegenerateSelected(runCtx, ids, generation.ModeCardOnly)
			case newArt:
				report, err = ctrl.RegenerateSelected(runCtx, ids, generation.ModeNewArt)
			default:
				report, err = ctrl.RegenerateSelected(runCtx, ids, generation.ModeFull)
			}
			if err != nil {
				return err
			}
			return printRunOutcome(cmd, ctrl, report)
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Card IDs to regenerate")
	cmd.Flags().BoolVar(&keepArt, "keep-art", false, "Reuse existing artwork, re-render the frame only")
	cmd.Flags().BoolVar(&newArt, "new-art", false, "Generate fresh artwork")
	cmd.Flags().StringVar(&customImage, "custom-image", "", "Path to a user-supplied artwork image")
	cmd.Flags().StringVar(&model, "model", "", "Override the configured renderer model")
	cmd.Flags().StringVar(&style, "style", "", "Override the configured art style")

	return cmd
}
