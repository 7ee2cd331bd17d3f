package scan

import (
	"strings"
	"unicode"
)

// Normalize cleans raw decoder output before it is parsed or matched:
// surrounding and internal whitespace is removed, then every byte outside
// printable ASCII (0x20-0x7E) is dropped. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(compact))
	for i := 0; i < len(compact); i++ {
		if c := compact[i]; c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		}
	}
	return b.String()
}
