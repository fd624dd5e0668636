// Package config loads and validates deckforge configuration from TOML.
//
// Load resolves the config path (explicit flag, then
// ~/.config/deckforge/config.toml, then ./deckforge.toml), applies defaults,
// expands ~ in path fields, and validates the result. A missing file is not
// an error; defaults apply.
package config
