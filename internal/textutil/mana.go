package textutil

import "strings"

// manaSymbols are the colored/special symbols recognised in compact notation.
const manaSymbols = "WUBRGCX"

// FormatManaCost converts compact mana notation ("2UR") into bracketed
// symbols ("{2}{U}{R}"). Already-bracketed input is returned unchanged,
// multi-digit generic costs stay whole ("{10}"), and unknown characters are
// silently dropped. Empty input and the "-" placeholder yield "".
func FormatManaCost(cost string) string {
	cost = strings.TrimSpace(cost)
	if cost == "" || cost == "-" {
		return ""
	}
	if strings.Contains(cost, "{") && strings.Contains(cost, "}") {
		return cost
	}

	var b strings.Builder
	for i := 0; i < len(cost); {
		c := cost[i]
		switch {
		case c >= '0' && c <= '9':
			j := i
			for j < len(cost) && cost[j] >= '0' && cost[j] <= '9' {
				j++
			}
			b.WriteByte('{')
			b.WriteString(cost[i:j])
			b.WriteByte('}')
			i = j
		case strings.ContainsRune(manaSymbols, rune(upper(c))):
			b.WriteByte('{')
			b.WriteByte(upper(c))
			b.WriteByte('}')
			i++
		default:
			i++
		}
	}
	return b.String()
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
