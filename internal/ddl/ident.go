package ddl

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxIdentLen is PostgreSQL's identifier limit; the other dialects accept at
// least as much.
const MaxIdentLen = 63

// NormalizeIdent converts an arbitrary field name into a lowercase ASCII
// identifier:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9]; space, dash, dot and underscore become one underscore
//  4. fall back to "col" if nothing is left
//  5. prefix "c_" when the result starts with a digit
//  6. truncate to MaxIdentLen keeping the head and the tail
func NormalizeIdent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "c_" + name
	}
	return truncateIdent(name, MaxIdentLen)
}

// truncateIdent keeps the first 10 and the last n-10 bytes of s.
// Input is ASCII.
func truncateIdent(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:10] + s[len(s)-(n-10):]
}

// identSet hands out unique identifiers, suffixing _2, _3... on collision.
type identSet map[string]struct{}

func (u identSet) claim(name string) string {
	if _, taken := u[name]; !taken {
		u[name] = struct{}{}
		return name
	}
	for i := 2; ; i++ {
		suffix := "_" + strconv.Itoa(i)
		cand := truncateIdent(name, MaxIdentLen-len(suffix)) + suffix
		if _, taken := u[cand]; !taken {
			u[cand] = struct{}{}
			return cand
		}
	}
}
