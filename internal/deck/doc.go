// Package deck persists a deck's cards in SQLite and exposes helpers for
// driving their generation lifecycle.
//
// The Store owns status semantics: cards move pending -> generating ->
// completed/failed, and a card found in generating when the database is
// opened is coerced back to pending because no renderer process can survive
// a restart. Paths describes the per-deck directory layout (deck.db,
// rendered_cards/, artwork/) shared with the resolver and reconciler.
//
// Treat this package as the single source of truth for card lifecycle
// semantics; schema changes bump schemaVersion in schema.go.
package deck
