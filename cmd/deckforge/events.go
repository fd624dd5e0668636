package main

import (
	"fmt"
	"io"
	"path/filepath"

	"deckforge/internal/deck"
	"deckforge/internal/generation"
)

// cliEvents prints per-card progress as the worker runs. Completion lines get
// a colored status tag when the output is a terminal.
type cliEvents struct {
	out      io.Writer
	colorize bool
}

func newCLIEvents(out io.Writer) *cliEvents {
	return &cliEvents{out: out, colorize: shouldColorize(out)}
}

func (e *cliEvents) Progress(cardID int64, status deck.Status) {
	if status == deck.StatusGenerating {
		fmt.Fprintf(e.out, "card %d: generating...\n", cardID)
	}
}

func (e *cliEvents) Completed(result generation.Result) {
	if result.Success {
		line := fmt.Sprintf("card %d: done", result.CardID)
		if result.CardPath != "" {
			line += " (" + filepath.Base(result.CardPath) + ")"
		}
		fmt.Fprintln(e.out, e.tag(line, ansiGreen))
		return
	}
	fmt.Fprintln(e.out, e.tag(fmt.Sprintf("card %d: failed: %s", result.CardID, result.Message), ansiRed))
}

func (e *cliEvents) tag(line, color string) string {
	if e.colorize {
		return color + line + ansiReset
	}
	return line
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)
