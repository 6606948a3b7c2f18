// internal/engine/text.go
package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var moneyPrinter = message.NewPrinter(language.English)

// foldText lower-cases s, strips accents and collapses punctuation to single spaces.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}

// genericProgramWords never count as evidence of a shared field on their own.
var genericProgramWords = map[string]bool{
	"of": true, "and": true, "the": true, "in": true, "for": true, "with": true,
	"science": true, "sciences": true, "studies": true, "engineering": true, "arts": true,
	"bachelor": true, "bachelors": true, "master": true, "masters": true,
	"ba": true, "bs": true, "bsc": true, "ma": true, "ms": true, "msc": true,
	"program": true, "programme": true, "degree": true, "honours": true, "honors": true,
}

func significantTokens(folded string) []string {
	var out []string
	for _, tok := range strings.Fields(folded) {
		if !genericProgramWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

func formatUSD(v float64) string {
	return moneyPrinter.Sprintf("$%d", int64(v+0.5))
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return moneyPrinter.Sprintf("%d%s", n, suffix)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
