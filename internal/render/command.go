package render

import (
	"strconv"
	"strings"

	"deckforge/internal/deck"
	"deckforge/internal/textutil"
)

// Command is a fully resolved renderer invocation for one card.
type Command struct {
	Binary string
	Args   []string
}

// Display returns a single-line form of the command for logs. Arguments
// containing whitespace or quotes are double-quoted; the command itself is
// executed without a shell, so this form is informational only.
func (c Command) Display() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\"'") {
		return strconv.Quote(arg)
	}
	return arg
}

// Options carries the per-invocation settings that are not card attributes.
type Options struct {
	RenderedDir string
	ArtworkDir  string
	// SkipImage suppresses artwork generation; the renderer composites the
	// card with a placeholder.
	SkipImage bool
	// CustomImage points the renderer at existing artwork instead of
	// generating new art. Takes precedence over SkipImage.
	CustomImage string
}

// Builder maps cards to renderer command lines. It performs no filesystem or
// process side effects; callers surface the returned warnings.
type Builder struct {
	Binary    string
	ExtraArgs []string
	Model     string
	Style     string
}

// Build constructs the renderer invocation for card. Name, type line, rules
// text, rarity, model, style and both output directories are always present;
// rules text is included even when empty so lands render a blank text box
// instead of inheriting renderer defaults. Warnings report recoverable spec
// problems such as a creature missing power or toughness.
func (b Builder) Build(card *deck.Card, opts Options) (Command, []string) {
	args := make([]string, 0, 24+len(b.ExtraArgs))
	args = append(args, b.ExtraArgs...)

	args = append(args, "--name", card.Name)

	if !card.IsLand() && card.ManaCost != "" {
		if formatted := textutil.FormatManaCost(card.ManaCost); formatted != "" {
			args = append(args, "--cost", formatted)
		}
	}

	args = append(args, "--type", card.TypeLine)
	args = append(args, "--text", card.RulesText)

	var warnings []string
	if card.IsCreature() {
		switch {
		case card.Power != nil && card.Toughness != nil:
			args = append(args, "--power", strconv.Itoa(*card.Power))
			args = append(args, "--toughness", strconv.Itoa(*card.Toughness))
		default:
			warnings = append(warnings, "creature "+card.Name+" is missing power or toughness")
			if card.Power != nil {
				args = append(args, "--power", strconv.Itoa(*card.Power))
			}
			if card.Toughness != nil {
				args = append(args, "--toughness", strconv.Itoa(*card.Toughness))
			}
		}
	}

	if card.Flavor != "" {
		args = append(args, "--flavor", card.Flavor)
	}

	args = append(args, "--rarity", card.Rarity)

	if card.HasArtDescription() {
		args = append(args, "--art", card.ArtDescription)
	}

	args = append(args, "--model", b.Model)
	args = append(args, "--style", b.Style)
	args = append(args, "--output", opts.RenderedDir)
	args = append(args, "--images-output", opts.ArtworkDir)

	switch {
	case opts.CustomImage != "":
		args = append(args, "--custom-image", opts.CustomImage)
	case opts.SkipImage:
		args = append(args, "--skip-image")
	}

	return Command{Binary: b.Binary, Args: args}, warnings
}
