package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deckforge/internal/textutil"
)

const (
	renderedDirName = "rendered_cards"
	artworkDirName  = "artwork"
	databaseName    = "deck.db"
)

// Paths locates the on-disk layout of a single deck.
type Paths struct {
	Root        string
	RenderedDir string
	ArtworkDir  string
	DBPath      string
}

// NewPaths derives a deck's directory layout from the library root and the
// deck name. The deck name is sanitized the same way card names are so it is
// always a single safe path segment.
func NewPaths(libraryDir, deckName string) (Paths, error) {
	libraryDir = strings.TrimSpace(libraryDir)
	if libraryDir == "" {
		return Paths{}, fmt.Errorf("library directory not set")
	}
	segment := textutil.SafeFileName(deckName)
	if segment == "" {
		return Paths{}, fmt.Errorf("deck name %q produces an empty directory name", deckName)
	}
	root := filepath.Join(libraryDir, segment)
	return Paths{
		Root:        root,
		RenderedDir: filepath.Join(root, renderedDirName),
		ArtworkDir:  filepath.Join(root, artworkDirName),
		DBPath:      filepath.Join(root, databaseName),
	}, nil
}

// EnsureDirectories creates the deck directory tree.
func (p Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.RenderedDir, p.ArtworkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RenderedCardPath predicts the final rendered-card location for a card name.
func (p Paths) RenderedCardPath(cardName string) string {
	return filepath.Join(p.RenderedDir, textutil.SafeFileName(cardName)+".png")
}

// ListDecks returns the deck directory names under the library root, sorted
// by the filesystem's natural order.
func ListDecks(libraryDir string) ([]string, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read library directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
