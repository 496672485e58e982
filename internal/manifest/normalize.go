package manifest

import (
	"strings"
	"unicode"
)

// Normalize turns a free-text component label into a manifest key: the label
// is lowercased, every run of white space becomes a single hyphen, and every
// character other than ASCII letters, digits, '_' and '-' is dropped.
//
// Normalize is total and idempotent. Labels made only of punctuation or
// white space normalize to the empty string.
func Normalize(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	inSpace := false
	for _, r := range lowered {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		// A dropped character still ends the white space run.
		inSpace = false
		if isWordOrHyphen(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isSpace matches the white space class of the design tool's scripting
// runtime: Unicode white space plus the byte order mark, without NEL.
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isWordOrHyphen(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	}
	return false
}
