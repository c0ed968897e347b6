package core

import (
	"strings"
	"unicode"
)

// TraderKey is the storage key for a trader name. Memory files and log
// records are keyed on it, so two roster names with the same key would share
// state. Letters are lowercased; anything other than a letter, digit, '-' or
// '_' becomes '_'.
func TraderKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
