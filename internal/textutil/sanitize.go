package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unsafeReplacer maps filesystem-unsafe characters and typographic
// punctuation to underscores. The set matches what the renderer's own
// filename logic replaces, so predicted names line up with written ones.
var unsafeReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_", // narrow no-break space
	" ", "_", // no-break space
	"—", "_", // em dash
	"–", "_", // en dash
	" ", "_",
	",", "",
	"'", "",
)

// diacriticStripper decomposes characters and drops combining marks, so
// accented card names fold to the ASCII the renderer writes.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// SafeFileName converts a card name into the filename stem used for its
// rendered artifacts. Unsafe characters and spaces become underscores,
// commas and apostrophes are removed, and diacritics are folded to ASCII.
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticStripper, name); err == nil {
		name = folded
	}
	return unsafeReplacer.Replace(name)
}

// SimpleName returns the leading segment of a card name before any comma,
// e.g. "Mountain, Basic" -> "Mountain". Artwork for legendary cards is often
// written under this shorter name.
func SimpleName(name string) string {
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
