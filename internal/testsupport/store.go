package testsupport

import (
	"context"
	"testing"

	"deckforge/internal/deck"
)

// MustOpenStore opens a deck.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, libraryDir, deckName string) *deck.Store {
	t.Helper()

	store, err := deck.Open(libraryDir, deckName)
	if err != nil {
		t.Fatalf("deck.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedCard inserts a pending card for tests using the provided store.
func SeedCard(t testing.TB, store *deck.Store, name, typeLine string) *deck.Card {
	t.Helper()

	card := &deck.Card{Name: name, TypeLine: typeLine}
	if err := store.Add(context.Background(), card); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return card
}
