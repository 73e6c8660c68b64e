// Package slug derives stable, URL-safe category keys from display names.
//
// Cyrillic letters are transliterated to Latin so that "Маркетинг" and
// "marketing" land on the same identifier; Latin diacritics are folded
// ("Café" becomes "cafe") and compatibility forms decomposed ("ﬁ" becomes "fi"). Anything else outside [a-z0-9-] is dropped.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// cyrillic maps lower-case Cyrillic letters to their Latin transliteration.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	// Ukrainian and Belarusian letters
	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g", 'ў': "u",
}

// Make returns the slug for name. It is idempotent: Make(Make(s)) == Make(s).
// Empty input, or input made only of characters that have no slug
// representation, yields "".
func Make(name string) string {
	if name == "" {
		return ""
	}

	s := lower.String(name)
	s = transliterate(s)
	s = lower.String(fold(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := cyrillic[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fold strips combining marks after compatibility decomposition, so ligatures,
// full-width forms and numerals such as "Ⅻ" become plain letters.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
