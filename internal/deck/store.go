package deck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages card persistence for one deck, backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	paths Paths
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to a deck database. Any card left in
// `generating` by a previous process is coerced back to `pending`: nothing
// can still be running after a restart.
func Open(libraryDir, deckName string) (*Store, error) {
	paths, err := NewPaths(libraryDir, deckName)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", paths.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: paths.DBPath, paths: paths}
	ctx := context.Background()
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := store.resetInterruptedGeneration(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Paths returns the deck directory layout this store belongs to.
func (s *Store) Paths() Paths { return s.paths }

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

const cardColumns = `id, name, type_line, mana_cost, rules_text, power, toughness,
    flavor, rarity, art_description, custom_image_path, status,
    image_path, card_path, error_message, generated_at, created_at, updated_at`

func scanCard(scanner interface{ Scan(...any) error }) (*Card, error) {
	var (
		card        Card
		power       sql.NullInt64
		toughness   sql.NullInt64
		status      string
		generatedAt sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := scanner.Scan(
		&card.ID, &card.Name, &card.TypeLine, &card.ManaCost, &card.RulesText,
		&power, &toughness, &card.Flavor, &card.Rarity, &card.ArtDescription,
		&card.CustomImagePath, &status, &card.ImagePath, &card.CardPath,
		&card.ErrorMessage, &generatedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if power.Valid {
		v := int(power.Int64)
		card.Power = &v
	}
	if toughness.Valid {
		v := int(toughness.Int64)
		card.Toughness = &v
	}
	if parsed, ok := ParseStatus(status); ok {
		card.Status = parsed
	} else {
		card.Status = StatusPending
	}
	if generatedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, generatedAt.String); err == nil {
			card.GeneratedAt = &ts
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		card.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		card.UpdatedAt = ts
	}
	return &card, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

// Add inserts a new card and assigns its ID.
func (s *Store) Add(ctx context.Context, card *Card) error {
	if card == nil {
		return errors.New("card is nil")
	}
	if strings.TrimSpace(card.Name) == "" {
		return errors.New("card name is required")
	}
	if card.Status == "" {
		card.Status = StatusPending
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(ctx,
		`INSERT INTO cards (
            name, type_line, mana_cost, rules_text, power, toughness,
            flavor, rarity, art_description, custom_image_path, status,
            image_path, card_path, error_message, generated_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Name, card.TypeLine, card.ManaCost, card.RulesText,
		nullableInt(card.Power), nullableInt(card.Toughness),
		card.Flavor, card.Rarity, card.ArtDescription, card.CustomImagePath,
		string(card.Status), card.ImagePath, card.CardPath, card.ErrorMessage,
		nullableTime(card.GeneratedAt), timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	card.ID = id
	card.CreatedAt = now
	card.UpdatedAt = now
	return nil
}

// GetByID fetches a single card, or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Card, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}
	return card, nil
}

// List returns all cards in insertion order.
func (s *Store) List(ctx context.Context) ([]*Card, error) {
	return s.query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
}

// ListByStatus returns cards holding any of the provided statuses, in
// insertion order.
func (s *Store) ListByStatus(ctx context.Context, statuses ...Status) ([]*Card, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE status IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`
	return s.query(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Card, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// Update persists all mutable fields of a card.
func (s *Store) Update(ctx context.Context, card *Card) error {
	if card == nil || card.ID == 0 {
		return errors.New("card must have an ID")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE cards SET
            name = ?, type_line = ?, mana_cost = ?, rules_text = ?,
            power = ?, toughness = ?, flavor = ?, rarity = ?,
            art_description = ?, custom_image_path = ?, status = ?,
            image_path = ?, card_path = ?, error_message = ?,
            generated_at = ?, updated_at = ?
        WHERE id = ?`,
		card.Name, card.TypeLine, card.ManaCost, card.RulesText,
		nullableInt(card.Power), nullableInt(card.Toughness),
		card.Flavor, card.Rarity, card.ArtDescription, card.CustomImagePath,
		string(card.Status), card.ImagePath, card.CardPath, card.ErrorMessage,
		nullableTime(card.GeneratedAt), now.Format(time.RFC3339Nano),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("update card %d: %w", card.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %d not found", card.ID)
	}
	card.UpdatedAt = now
	return nil
}

// SetStatus transitions a card to the given status, clearing any stale error
// message unless the new status is failed.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	errorMessage := ""
	return s.setStatus(ctx, id, status, &errorMessage, nil, nil, nil)
}

// MarkGenerating transitions a card to generating.
func (s *Store) MarkGenerating(ctx context.Context, id int64) error {
	errorMessage := ""
	return s.setStatus(ctx, id, StatusGenerating, &errorMessage, nil, nil, nil)
}

// MarkCompleted transitions a card to completed, recording the resolved
// artifact locations and stamping GeneratedAt.
func (s *Store) MarkCompleted(ctx context.Context, id int64, imagePath, cardPath string) error {
	errorMessage := ""
	now := time.Now().UTC()
	return s.setStatus(ctx, id, StatusCompleted, &errorMessage, &imagePath, &cardPath, &now)
}

// MarkFailed transitions a card to failed with a diagnostic message.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.setStatus(ctx, id, StatusFailed, &message, nil, nil, nil)
}

func (s *Store) setStatus(ctx context.Context, id int64, status Status, errorMessage, imagePath, cardPath *string, generatedAt *time.Time) error {
	assignments := []string{"status = ?", "updated_at = ?"}
	args := []any{string(status), time.Now().UTC().Format(time.RFC3339Nano)}
	if errorMessage != nil {
		assignments = append(assignments, "error_message = ?")
		args = append(args, *errorMessage)
	}
	if imagePath != nil && *imagePath != "" {
		assignments = append(assignments, "image_path = ?")
		args = append(args, *imagePath)
	}
	if cardPath != nil {
		assignments = append(assignments, "card_path = ?")
		args = append(args, *cardPath)
	}
	if generatedAt != nil {
		assignments = append(assignments, "generated_at = ?")
		args = append(args, generatedAt.UTC().Format(time.RFC3339Nano))
	}
	args = append(args, id)

	res, err := s.execWithRetry(ctx,
		"UPDATE cards SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("set status %s on card %d: %w", status, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %d not found", id)
	}
	return nil
}

// ResetToPending forces the given cards back to pending, clearing error
// messages. Used by retry and forced-regeneration flows.
func (s *Store) ResetToPending(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if err := s.SetStatus(ctx, id, StatusPending); err != nil {
			return err
		}
	}
	return nil
}

// ClearArtifacts resets a card's recorded artifact locations alongside a
// transition back to pending.
func (s *Store) ClearArtifacts(ctx context.Context, id int64) error {
	empty := ""
	_, err := s.execWithRetry(ctx,
		`UPDATE cards SET status = ?, image_path = ?, card_path = ?, error_message = ?, generated_at = NULL, updated_at = ? WHERE id = ?`,
		string(StatusPending), empty, empty, empty,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("clear artifacts on card %d: %w", id, err)
	}
	return nil
}

// Counts returns the number of cards per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM cards GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		if status, ok := ParseStatus(raw); ok {
			counts[status] = count
		}
	}
	return counts, rows.Err()
}

// resetInterruptedGeneration coerces generating cards back to pending.
func (s *Store) resetInterruptedGeneration(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE cards SET status = ?, updated_at = ? WHERE status = ?`,
		string(StatusPending),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(StatusGenerating),
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted generation: %w", err)
	}
	return res.RowsAffected()
}
