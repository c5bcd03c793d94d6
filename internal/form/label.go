package form

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCaser = cases.Title(language.English)

// DefaultLabel derives a human-readable label from a dotted path: the last
// segment is split on underscores, hyphens, and camelCase boundaries, then
// title-cased. "user.firstName" becomes "First Name".
func DefaultLabel(path string) string {
	segment := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		segment = path[idx+1:]
	}
	if segment == "" {
		return ""
	}

	segment = strings.NewReplacer("_", " ", "-", " ").Replace(segment)

	var b strings.Builder
	var prev rune
	for i, r := range segment {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	return labelCaser.String(strings.TrimSpace(b.String()))
}
