package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"deckforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "decks")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Dir = cfgVal.Paths.LogDir
	cfgVal.Renderer.TimeoutSeconds = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRendererBinary overrides the renderer binary path on the test config.
func WithRendererBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.Binary = path
	}
}

// WithRendererTimeout sets the renderer timeout in seconds.
func WithRendererTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.TimeoutSeconds = seconds
	}
}

// WithStubbedRenderer writes a stub renderer script and points the config at
// it. The script body runs under sh.
func WithStubbedRenderer(body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "generate-card")
		script := "#!/bin/sh\n" + body + "\n"
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub renderer: %v", err)
		}
		b.cfg.Renderer.Binary = target
	}
}
