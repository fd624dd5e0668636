package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deckforge/internal/config"
	"deckforge/internal/deck"
	"deckforge/internal/testsupport"
)

const testDeckName = "test-deck"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := filepath.Dir(cfg.Paths.LibraryDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

// withStore opens the deck store, runs fn, and closes it again so the CLI can
// take its own connection afterwards.
func (env *cliTestEnv) withStore(t *testing.T, fn func(store *deck.Store)) {
	t.Helper()
	store, err := deck.Open(env.cfg.Paths.LibraryDir, testDeckName)
	if err != nil {
		t.Fatalf("deck.Open: %v", err)
	}
	defer store.Close()
	fn(store)
}

func (env *cliTestEnv) addCard(t *testing.T, card *deck.Card) *deck.Card {
	t.Helper()
	env.withStore(t, func(store *deck.Store) {
		if err := store.Add(context.Background(), card); err != nil {
			t.Fatalf("store.Add: %v", err)
		}
	})
	return card
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--deck", testDeckName}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlibrary_dir = %q\nlog_dir = %q\n\n[renderer]\nbinary = %q\ntimeout_seconds = %d\n\n[logging]\ndir = %q\nlevel = \"error\"\n",
		cfg.Paths.LibraryDir,
		cfg.Paths.LogDir,
		cfg.Renderer.Binary,
		cfg.Renderer.TimeoutSeconds,
		cfg.Logging.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
