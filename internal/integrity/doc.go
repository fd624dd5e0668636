// Package integrity judges whether a rendered card image is usable.
//
// The heuristic samples mean brightness in four horizontal bands matching
// the card layout. It is deliberately coarse: it catches the renderer's
// known silent-black failure mode while tolerating legitimately dark art,
// trading missed bright corruption for a low false-positive rate.
package integrity
