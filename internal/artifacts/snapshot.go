package artifacts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one candidate file inside a snapshot.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Snapshot is a point-in-time listing of one output directory. Resolution
// runs against snapshots instead of the live filesystem so the candidate
// chain stays deterministic and testable.
type Snapshot struct {
	Dir     string
	Entries []Entry
}

// TakeSnapshot lists dir, keeping only regular files with one of the given
// extensions (case-insensitive, leading dot required). A missing directory
// yields an empty snapshot rather than an error.
func TakeSnapshot(dir string, exts ...string) (Snapshot, error) {
	snap := Snapshot{Dir: dir}
	listing, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, err
	}

	for _, dirEntry := range listing {
		if dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if !matchesExt(name, exts) {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			continue
		}
		snap.Entries = append(snap.Entries, Entry{
			Name:    name,
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime(),
		})
	}
	sortByModTime(snap.Entries)
	return snap, nil
}

func matchesExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// sortByModTime orders entries newest first, breaking ties by name so the
// resolution chain stays deterministic under equal timestamps.
func sortByModTime(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
}
