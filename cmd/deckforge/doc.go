// Command deckforge manages Commander deck card generation. It stores cards
// per deck in a SQLite database, drives an external renderer process per
// card, and keeps card statuses aligned with the files on disk.
package main
