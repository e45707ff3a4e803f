package importhelper

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// labelNormalizer strips diacritics so metadata labels coming from
// differently-encoded files compare equal.
var labelNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel trims and de-accents a metadata label or value
func NormalizeLabel(s string) string {
	out, _, err := transform.String(labelNormalizer, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}
