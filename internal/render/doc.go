// Package render builds and executes card renderer invocations.
//
// Builder is a pure mapping from a card to a command line; CLI runs the
// command with full output capture and a bounded deadline. Classify assigns
// log severities to renderer output lines; severities never decide success,
// only the exit code and the downstream artifact checks do.
package render
