// Package generation drives the card rendering pipeline.
//
// The Worker owns a strictly sequential queue: per card it marks the status,
// builds the renderer command, runs the process, resolves and validates the
// produced artifact, and emits progress and completion events. At most one
// renderer process is in flight at any time because the renderer and the
// shared output directories are not proven safe for concurrent use.
//
// The Controller is the outward facade: request validation, the per-deck
// file lock, run identifiers, convenience modes and statistics.
package generation
