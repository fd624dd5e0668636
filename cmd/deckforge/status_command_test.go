package main

import (
	"context"
	"strings"
	"testing"

	"deckforge/internal/deck"
	"deckforge/internal/testsupport"
)

func TestAddCardAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env,
		"add-card", "--name", "Lightning Bolt", "--type", "Instant", "--cost", "R",
		"--text", "Deal 3 damage to any target.")
	if err != nil {
		t.Fatalf("add-card: %v", err)
	}
	requireContains(t, out, "added card 1: Lightning Bolt")

	out, _, err = runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Lightning Bolt")
	requireContains(t, out, "pending")
	requireContains(t, out, "1 cards: 1 pending")
}

func TestStatusFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addCard(t, &deck.Card{Name: "Island", TypeLine: "Basic Land"})
	env.withStore(t, func(store *deck.Store) {
		rendered := store.Paths().RenderedCardPath("Counterspell")
		testsupport.WriteImage(t, rendered, 40, 60, 200)
		card := &deck.Card{Name: "Counterspell", TypeLine: "Instant", Status: deck.StatusCompleted, CardPath: rendered}
		if err := store.Add(context.Background(), card); err != nil {
			t.Fatalf("store.Add: %v", err)
		}
	})

	out, _, err := runCLI(t, env, "status", "--status", "completed")
	if err != nil {
		t.Fatalf("status --status: %v", err)
	}
	requireContains(t, out, "Counterspell")
	if strings.Contains(out, "Island\t") {
		t.Fatalf("pending card leaked into filtered output: %q", out)
	}

	if _, _, err := runCLI(t, env, "status", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAddCardRequiresTypeLine(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "add-card", "--name", "Nameless"); err == nil {
		t.Fatal("expected error when type line is missing")
	}
}

func TestDecksList(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addCard(t, &deck.Card{Name: "Sol Ring", TypeLine: "Artifact"})

	out, _, err := runCLI(t, env, "decks")
	if err != nil {
		t.Fatalf("decks: %v", err)
	}
	requireContains(t, out, testDeckName)
}
