package deck

import (
	"strings"
	"time"
)

// Status represents the generation lifecycle of a card.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusGenerating,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Card represents a single card persisted in the deck store.
//
// IDs are unique within one deck snapshot but may be renumbered by external
// deck edits between saves; the pipeline resolves IDs against the store at
// dispatch time rather than holding Card pointers across a run.
type Card struct {
	ID              int64
	Name            string
	TypeLine        string
	ManaCost        string
	RulesText       string
	Power           *int
	Toughness       *int
	Flavor          string
	Rarity          string
	ArtDescription  string
	CustomImagePath string
	Status          Status
	ImagePath       string
	CardPath        string
	ErrorMessage    string
	GeneratedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCreature reports whether the type line denotes a creature. The German
// word is accepted because imported deck lists mix both languages.
func (c Card) IsCreature() bool {
	typeLower := strings.ToLower(c.TypeLine)
	return strings.Contains(typeLower, "creature") || strings.Contains(typeLower, "kreatur")
}

// IsLand reports whether the type line denotes a land. Lands carry no mana
// cost on the renderer command line.
func (c Card) IsLand() bool {
	return strings.Contains(c.TypeLine, "Land")
}

// HasArtDescription reports whether the card carries a non-empty art prompt.
func (c Card) HasArtDescription() bool {
	return strings.TrimSpace(c.ArtDescription) != ""
}
