// Package logging builds slog loggers from configuration and provides the
// attribute helpers pipeline code uses for structured fields.
//
// Pipeline components never reach for a global logger; they receive a
// *slog.Logger (usually via NewComponentLogger) so tests can inject NewNop.
package logging
