package slip

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuationReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u202f", " ",
	"\u2019", "'",
	"\u2018", "'",
	"\u2013", "-",
	"\u2014", "-",
	"\r", "",
)

// CleanText unifies the whitespace and punctuation variants OCR engines emit.
func CleanText(text string) string {
	return punctuationReplacer.Replace(text)
}

// Fold lower-cases text and strips diacritics, so "Relevé" and "RELEVE"
// compare equal.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, CleanText(text))
	if err != nil {
		folded = CleanText(text)
	}
	return strings.ToLower(folded)
}

// Excerpt returns the first limit runes of text with runs of whitespace collapsed.
func Excerpt(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(CleanText(text)), " ")
	r := []rune(collapsed)
	if len(r) <= limit {
		return collapsed
	}
	return string(r[:limit])
}

var accentClasses = map[rune]string{
	'a': "[aàâäáAÀÂÄÁ]",
	'c': "[cçCÇ]",
	'e': "[eéèêëEÉÈÊË]",
	'i': "[iîïíIÎÏÍ]",
	'o': "[oôöóOÔÖÓ]",
	'u': "[uùûüúUÙÛÜÚ]",
}

// labelPattern turns a folded label into a regular expression that also
// matches the accented spelling and OCR spacing variants.
func labelPattern(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r == ' ':
			b.WriteString(`\s+`)
		case r == '\'':
			b.WriteString(`['’]?\s*`)
		case r == '-':
			b.WriteString(`[\s\-]?`)
		case accentClasses[r] != "":
			b.WriteString(accentClasses[r])
		default:
			b.WriteString(regexpQuoteRune(r))
		}
	}
	return b.String()
}

func regexpQuoteRune(r rune) string {
	if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
		return `\` + string(r)
	}
	return string(r)
}
