package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if strings.TrimSpace(c.Renderer.Binary) == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		return errors.New("renderer.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.ArtifactWindowSeconds <= 0 {
		return errors.New("generation.artifact_window_seconds must be positive")
	}
	if c.Generation.MaxRulesTextLength <= 0 {
		return errors.New("generation.max_rules_text_length must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
