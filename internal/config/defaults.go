package config

const (
	defaultLibraryDir             = "~/.local/share/deckforge/decks"
	defaultLogDir                 = "~/.local/share/deckforge/logs"
	defaultRendererBinary         = "generate-card"
	defaultRendererModel          = "sdxl"
	defaultRendererStyle          = "mtg_modern"
	defaultRendererTimeoutSeconds = 300
	defaultArtifactWindowSeconds  = 10
	defaultMaxRulesTextLength     = 1000
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Renderer: Renderer{
			Binary:         defaultRendererBinary,
			Model:          defaultRendererModel,
			Style:          defaultRendererStyle,
			TimeoutSeconds: defaultRendererTimeoutSeconds,
		},
		Generation: Generation{
			ArtifactWindowSeconds: defaultArtifactWindowSeconds,
			MaxRulesTextLength:    defaultMaxRulesTextLength,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
