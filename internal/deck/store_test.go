package deck_test

import (
	"context"
	"testing"

	"deckforge/internal/deck"
	"deckforge/internal/testsupport"
)

func TestAddAssignsIDAndDefaults(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")

	ctx := context.Background()
	card := &deck.Card{Name: "Lightning Bolt", TypeLine: "Instant", ManaCost: "R"}
	if err := store.Add(ctx, card); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if card.ID == 0 {
		t.Fatal("expected card ID to be assigned")
	}

	fetched, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.Name != "Lightning Bolt" {
		t.Fatalf("unexpected fetched card: %#v", fetched)
	}
	if fetched.Status != deck.StatusPending {
		t.Fatalf("expected pending status, got %s", fetched.Status)
	}
}

func TestAddRequiresName(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")
	if err := store.Add(context.Background(), &deck.Card{TypeLine: "Instant"}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestStatusTransitions(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Grizzly Bears", "Creature — Bear")

	if err := store.MarkGenerating(ctx, card.ID); err != nil {
		t.Fatalf("MarkGenerating: %v", err)
	}
	if err := store.MarkCompleted(ctx, card.ID, "/art/bears.png", "/cards/Grizzly_Bears.png"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	updated, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != deck.StatusCompleted {
		t.Fatalf("status = %s", updated.Status)
	}
	if updated.CardPath != "/cards/Grizzly_Bears.png" {
		t.Fatalf("card path = %q", updated.CardPath)
	}
	if updated.ImagePath != "/art/bears.png" {
		t.Fatalf("image path = %q", updated.ImagePath)
	}
	if updated.GeneratedAt == nil {
		t.Fatal("expected GeneratedAt to be stamped")
	}

	if err := store.MarkFailed(ctx, card.ID, "renderer exited with code 2"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	failed, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != deck.StatusFailed {
		t.Fatalf("status = %s", failed.Status)
	}
	if failed.ErrorMessage != "renderer exited with code 2" {
		t.Fatalf("error message = %q", failed.ErrorMessage)
	}

	if err := store.ResetToPending(ctx, card.ID); err != nil {
		t.Fatalf("ResetToPending: %v", err)
	}
	reset, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reset.Status != deck.StatusPending || reset.ErrorMessage != "" {
		t.Fatalf("unexpected reset state: %#v", reset)
	}
}

func TestSetStatusUnknownCard(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")
	if err := store.SetStatus(context.Background(), 9999, deck.StatusCompleted); err == nil {
		t.Fatal("expected error for unknown card")
	}
}

func TestOpenCoercesGeneratingToPending(t *testing.T) {
	library := t.TempDir()
	store := testsupport.MustOpenStore(t, library, "Restart Deck")
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Sol Ring", "Artifact")
	if err := store.MarkGenerating(ctx, card.ID); err != nil {
		t.Fatalf("MarkGenerating: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, library, "Restart Deck")
	fetched, err := reopened.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != deck.StatusPending {
		t.Fatalf("expected generating coerced to pending, got %s", fetched.Status)
	}
}

func TestOpenPreservesFailedAcrossRestart(t *testing.T) {
	library := t.TempDir()
	store := testsupport.MustOpenStore(t, library, "Restart Deck")
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Counterspell", "Instant")
	if err := store.MarkFailed(ctx, card.ID, "no output file found"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, library, "Restart Deck")
	fetched, err := reopened.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != deck.StatusFailed {
		t.Fatalf("expected failed preserved, got %s", fetched.Status)
	}
}

func TestListByStatusAndCounts(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")
	ctx := context.Background()

	a := testsupport.SeedCard(t, store, "Card A", "Instant")
	b := testsupport.SeedCard(t, store, "Card B", "Sorcery")
	testsupport.SeedCard(t, store, "Card C", "Enchantment")

	if err := store.MarkCompleted(ctx, a.ID, "", "/cards/Card_A.png"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := store.MarkFailed(ctx, b.ID, "boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	pending, err := store.ListByStatus(ctx, deck.StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "Card C" {
		t.Fatalf("unexpected pending cards: %#v", pending)
	}

	both, err := store.ListByStatus(ctx, deck.StatusCompleted, deck.StatusFailed)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(both))
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[deck.StatusPending] != 1 || counts[deck.StatusCompleted] != 1 || counts[deck.StatusFailed] != 1 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestClearArtifacts(t *testing.T) {
	store := testsupport.MustOpenStore(t, t.TempDir(), "Test Deck")
	ctx := context.Background()
	card := testsupport.SeedCard(t, store, "Card A", "Instant")
	if err := store.MarkCompleted(ctx, card.ID, "/art/a.png", "/cards/Card_A.png"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := store.ClearArtifacts(ctx, card.ID); err != nil {
		t.Fatalf("ClearArtifacts: %v", err)
	}
	cleared, err := store.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if cleared.Status != deck.StatusPending || cleared.CardPath != "" || cleared.ImagePath != "" || cleared.GeneratedAt != nil {
		t.Fatalf("unexpected cleared state: %#v", cleared)
	}
}
