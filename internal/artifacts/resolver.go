package artifacts

import (
	"strings"
	"time"
)

// DefaultWindow bounds how old a file may be and still count as output of
// the invocation that just finished.
const DefaultWindow = 10 * time.Second

// Request identifies the artifact one renderer invocation should have
// produced.
type Request struct {
	// SafeName is the sanitized card name used to predict filenames.
	SafeName string
	// Ext is the expected extension including the leading dot.
	Ext string
	// Ref is the moment the invocation concluded; the recency step measures
	// file age against it.
	Ref time.Time
}

// Resolver locates renderer output. The renderer's filenames and write
// timing are not fully predictable, so resolution walks an ordered fallback
// chain; the first match wins and ties go to the newest modification time.
type Resolver struct {
	Window time.Duration
}

// Resolve runs the candidate chain against the primary directory snapshot
// and then the fallback snapshot:
//
//  1. exact <safe>.<ext> in primary
//  2. <safe>_*.<ext> in primary, newest first
//  3. newest primary file of the extension modified within the window
//  4. steps 1 and 2 against the fallback snapshot
//
// The boolean is false when no candidate matched, which callers treat as
// "no output file found" regardless of the renderer's exit code.
func (r Resolver) Resolve(primary, fallback Snapshot, req Request) (Entry, bool) {
	if entry, ok := exactMatch(primary, req.SafeName, req.Ext); ok {
		return entry, true
	}
	if entry, ok := patternMatch(primary, req.SafeName, req.Ext); ok {
		return entry, true
	}
	if entry, ok := r.recentMatch(primary, req); ok {
		return entry, true
	}
	if entry, ok := exactMatch(fallback, req.SafeName, req.Ext); ok {
		return entry, true
	}
	if entry, ok := patternMatch(fallback, req.SafeName, req.Ext); ok {
		return entry, true
	}
	return Entry{}, false
}

// ResolveArtwork locates standalone artwork by exact name. The renderer
// writes artwork either under the sanitized name or under the short name
// before the first comma, in any of the given extensions, in that order.
func ResolveArtwork(snap Snapshot, safeName, simpleName string, exts ...string) (Entry, bool) {
	stems := []string{safeName}
	if simpleName != "" && simpleName != safeName {
		stems = append(stems, simpleName)
	}
	for _, stem := range stems {
		for _, ext := range exts {
			if entry, ok := exactMatch(snap, stem, ext); ok {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// CompanionArt finds artwork the renderer wrote alongside a resolved card
// file, derived from the card file's stem.
func CompanionArt(snap Snapshot, cardStem string) (Entry, bool) {
	candidates := []string{
		cardStem + "_art",
		cardStem + "_artwork",
		cardStem + "-art",
		strings.ReplaceAll(cardStem, "_card", "_art"),
	}
	for _, stem := range candidates {
		if stem == cardStem {
			continue
		}
		if entry, ok := exactMatch(snap, stem, ".png"); ok {
			return entry, true
		}
	}
	return Entry{}, false
}

func exactMatch(snap Snapshot, stem, ext string) (Entry, bool) {
	want := stem + ext
	for _, entry := range snap.Entries {
		if entry.Name == want {
			return entry, true
		}
	}
	return Entry{}, false
}

func patternMatch(snap Snapshot, stem, ext string) (Entry, bool) {
	prefix := stem + "_"
	for _, entry := range snap.Entries {
		if strings.HasPrefix(entry.Name, prefix) && strings.HasSuffix(entry.Name, ext) {
			return entry, true
		}
	}
	return Entry{}, false
}

// recentMatch accepts the newest file written within the trailing window.
// Art companions are excluded so a freshly written artwork file is never
// mistaken for the card itself.
func (r Resolver) recentMatch(snap Snapshot, req Request) (Entry, bool) {
	window := r.Window
	if window <= 0 {
		window = DefaultWindow
	}
	for _, entry := range snap.Entries {
		if !strings.HasSuffix(entry.Name, req.Ext) {
			continue
		}
		if strings.Contains(entry.Name, "_art") || strings.Contains(entry.Name, "artwork") {
			continue
		}
		if req.Ref.Sub(entry.ModTime) < window {
			return entry, true
		}
	}
	return Entry{}, false
}
