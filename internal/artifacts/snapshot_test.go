package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestTakeSnapshotFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, filepath.Join(dir, "old.png"), now.Add(-time.Hour))
	writeFile(t, filepath.Join(dir, "new.png"), now)
	writeFile(t, filepath.Join(dir, "notes.txt"), now)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	snap, err := TakeSnapshot(dir, ".png")
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].Name != "new.png" {
		t.Fatalf("expected newest first, got %q", snap.Entries[0].Name)
	}
}

func TestTakeSnapshotMissingDir(t *testing.T) {
	snap, err := TakeSnapshot(filepath.Join(t.TempDir(), "absent"), ".png")
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	if len(snap.Entries) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(snap.Entries))
	}
}

func TestRelocateRenamesAndCleansSidecar(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	source := filepath.Join(dir, "Serra_Angel_20240101_120000.png")
	writeFile(t, source, now)
	writeFile(t, filepath.Join(dir, "Serra_Angel_20240101_120000.json"), now)

	final := filepath.Join(dir, "Serra_Angel.png")
	got, err := Relocate(Entry{Name: filepath.Base(source), Path: source}, final)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if got != final {
		t.Fatalf("relocated to %q, want %q", got, final)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Serra_Angel_20240101_120000.json")); !os.IsNotExist(err) {
		t.Fatalf("sidecar still present: %v", err)
	}
}

func TestRelocateReplacesExistingTarget(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	source := filepath.Join(dir, "Serra_Angel_20240101_120000.png")
	final := filepath.Join(dir, "Serra_Angel.png")
	writeFile(t, source, now)
	writeFile(t, final, now.Add(-time.Hour))

	got, err := Relocate(Entry{Name: filepath.Base(source), Path: source}, final)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if got != final {
		t.Fatalf("relocated to %q", got)
	}
}

func TestRelocateSamePathIsNoop(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "Serra_Angel.png")
	writeFile(t, final, time.Now())

	got, err := Relocate(Entry{Name: "Serra_Angel.png", Path: final}, final)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if got != final {
		t.Fatalf("got %q", got)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("file missing after noop relocate: %v", err)
	}
}
