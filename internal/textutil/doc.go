// Package textutil provides text conversions shared across the pipeline:
// filename sanitization for predicting renderer output names, and mana-cost
// notation conversion for the renderer command line.
package textutil
