package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"deckforge/internal/deck"
	"deckforge/internal/logging"
)

// Summary reports what one reconciliation pass changed.
type Summary struct {
	Checked  int
	Promoted int
	Demoted  int
}

func (s Summary) String() string {
	return fmt.Sprintf("checked %d cards, promoted %d, demoted %d", s.Checked, s.Promoted, s.Demoted)
}

// Reconciler re-derives card status from rendered file presence. Declared
// status, the persisted record and the filesystem drift apart across
// restarts and partial failures; the filesystem is authoritative. Cards in
// generating or failed are left untouched in both directions: a running
// card concludes through the worker, and a known failure must stay visible
// until explicitly retried.
type Reconciler struct {
	store  *deck.Store
	paths  deck.Paths
	logger *slog.Logger
}

// New constructs a reconciler over the given store and deck layout.
func New(store *deck.Store, paths deck.Paths, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{store: store, paths: paths, logger: logger}
}

// Reconcile walks every card once. Repeated calls with an unchanged
// filesystem make no further mutations.
func (r *Reconciler) Reconcile(ctx context.Context) (Summary, error) {
	cards, err := r.store.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, card := range cards {
		summary.Checked++
		if card.Status == deck.StatusGenerating || card.Status == deck.StatusFailed {
			continue
		}

		path, present := r.renderedFile(card)
		switch {
		case present && card.Status != deck.StatusCompleted:
			card.Status = deck.StatusCompleted
			card.CardPath = path
			if err := r.store.Update(ctx, card); err != nil {
				return summary, err
			}
			summary.Promoted++
			r.logger.Info("card promoted to completed",
				logging.Int64(logging.FieldCardID, card.ID),
				logging.String(logging.FieldCardName, card.Name),
				logging.String("card_path", path))
		case present && card.CardPath != path:
			// Status already right; repoint a stale path at the real file.
			card.CardPath = path
			if err := r.store.Update(ctx, card); err != nil {
				return summary, err
			}
		case !present && card.Status == deck.StatusCompleted:
			card.Status = deck.StatusPending
			card.CardPath = ""
			if err := r.store.Update(ctx, card); err != nil {
				return summary, err
			}
			summary.Demoted++
			r.logger.Info("card demoted to pending, rendered file missing",
				logging.Int64(logging.FieldCardID, card.ID),
				logging.String(logging.FieldCardName, card.Name))
		}
	}

	if summary.Promoted > 0 || summary.Demoted > 0 {
		r.logger.Info("status reconciled", logging.String("summary", summary.String()))
	}
	return summary, nil
}

// renderedFile reports whether a rendered card file exists, preferring the
// recorded path and falling back to the predicted sanitized filename.
func (r *Reconciler) renderedFile(card *deck.Card) (string, bool) {
	if card.CardPath != "" && fileExists(card.CardPath) {
		return card.CardPath, true
	}
	expected := r.paths.RenderedCardPath(card.Name)
	if fileExists(expected) {
		return expected, true
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
