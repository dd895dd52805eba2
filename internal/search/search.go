// Package search implements fuzzy matching of a query against one contact field.
package search

import (
	"math"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/smileynet/phonebook/internal/contact"
)

// DefaultThreshold is the minimum Ratio a field value needs to match.
const DefaultThreshold = 70

// Match is a contact that scored at or above the threshold, with its
// position in the searched sequence.
type Match struct {
	Index   int
	Contact contact.Contact
	Score   int
}

// Search scores every contact's field value against query and returns those
// scoring at least threshold, in sequence order. The query is trimmed and both
// sides are compared case-insensitively.
func Search(contacts []contact.Contact, query string, field contact.Field, threshold int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []Match
	for i, c := range contacts {
		score := Ratio(q, strings.ToLower(c.Get(field)))
		if score >= threshold {
			matches = append(matches, Match{Index: i, Contact: c, Score: score})
		}
	}
	return matches
}

// Ratio returns the normalized edit-distance similarity of a and b in [0, 100].
// Insertions and deletions cost 1, substitutions 2. Empty input scores 0.
func Ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	ea, eb := encode(a, b)
	total := len(ea) + len(eb)
	dist := smetrics.WagnerFischer(ea, eb, 1, 1, 2)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// maxAlphabet keeps encoded bytes in the ASCII range, which is valid UTF-8.
const maxAlphabet = 128

// encode maps each distinct rune of a and b to a single byte so distances are
// measured in characters rather than UTF-8 bytes. When the pair uses more than
// maxAlphabet distinct runes a and b are returned unchanged.
func encode(a, b string) (string, string) {
	alphabet := make(map[rune]byte)
	ea, ok := encodeWith(alphabet, a)
	if !ok {
		return a, b
	}
	eb, ok := encodeWith(alphabet, b)
	if !ok {
		return a, b
	}
	return string(ea), string(eb)
}

func encodeWith(alphabet map[rune]byte, s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		code, ok := alphabet[r]
		if !ok {
			if len(alphabet) == maxAlphabet {
				return nil, false
			}
			code = byte(len(alphabet))
			alphabet[r] = code
		}
		out = append(out, code)
	}
	return out, true
}
