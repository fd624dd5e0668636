package reconcile_test

import (
	"context"
	"testing"

	"deckforge/internal/deck"
	"deckforge/internal/reconcile"
	"deckforge/internal/testsupport"
)

func setup(t *testing.T) (*deck.Store, deck.Paths, *reconcile.Reconciler) {
	t.Helper()
	library := t.TempDir()
	store := testsupport.MustOpenStore(t, library, "Test Deck")
	paths := store.Paths()
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return store, paths, reconcile.New(store, paths, nil)
}

func TestReconcilePromotesWhenFileExists(t *testing.T) {
	store, paths, reconciler := setup(t)
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Serra Angel", "Creature — Angel")
	testsupport.WriteImage(t, paths.RenderedCardPath(card.Name), 20, 30, 200)

	summary, err := reconciler.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if summary.Promoted != 1 || summary.Demoted != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	updated, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != deck.StatusCompleted {
		t.Fatalf("status = %s", updated.Status)
	}
	if updated.CardPath != paths.RenderedCardPath(card.Name) {
		t.Fatalf("card path = %q", updated.CardPath)
	}
}

func TestReconcileDemotesWhenFileMissing(t *testing.T) {
	store, _, reconciler := setup(t)
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Serra Angel", "Creature — Angel")
	if err := store.MarkCompleted(ctx, card.ID, "", "/nonexistent/Serra_Angel.png"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	summary, err := reconciler.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if summary.Demoted != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	updated, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != deck.StatusPending || updated.CardPath != "" {
		t.Fatalf("unexpected state: %#v", updated)
	}
}

func TestReconcilePreservesGeneratingAndFailed(t *testing.T) {
	store, paths, reconciler := setup(t)
	ctx := context.Background()

	generating := testsupport.SeedCard(t, store, "Running Card", "Instant")
	if err := store.MarkGenerating(ctx, generating.ID); err != nil {
		t.Fatalf("MarkGenerating: %v", err)
	}
	failed := testsupport.SeedCard(t, store, "Broken Card", "Sorcery")
	if err := store.MarkFailed(ctx, failed.ID, "renderer exited with code 1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	// Even with files on disk, transient and terminal states stay put.
	testsupport.WriteImage(t, paths.RenderedCardPath(generating.Name), 20, 30, 200)
	testsupport.WriteImage(t, paths.RenderedCardPath(failed.Name), 20, 30, 200)

	if _, err := reconciler.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	got, err := store.GetByID(ctx, generating.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != deck.StatusGenerating {
		t.Fatalf("generating card became %s", got.Status)
	}
	got, err = store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != deck.StatusFailed {
		t.Fatalf("failed card became %s", got.Status)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store, paths, reconciler := setup(t)
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Serra Angel", "Creature — Angel")
	testsupport.WriteImage(t, paths.RenderedCardPath(card.Name), 20, 30, 200)

	first, err := reconciler.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if first.Promoted != 1 {
		t.Fatalf("first pass summary = %+v", first)
	}

	second, err := reconciler.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if second.Promoted != 0 || second.Demoted != 0 {
		t.Fatalf("second pass mutated state: %+v", second)
	}
}
