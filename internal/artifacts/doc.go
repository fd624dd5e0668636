// Package artifacts locates the files a renderer invocation produced.
//
// The renderer does not guarantee its output filename: it may append a
// timestamp suffix, sanitize the card name differently than the caller, or
// write into the artwork directory instead of the card directory. Resolution
// therefore walks an ordered fallback chain over directory snapshots taken
// after the process exits, so the whole chain is a pure function of listing
// plus reference time.
package artifacts
