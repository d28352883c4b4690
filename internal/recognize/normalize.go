package recognize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName normalizes a display name for comparison (lowercase, no
// diacritics, dashes to spaces), so "jan-novak" matches "Jan Novák".
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// SearchByName returns indexed identities whose normalized display name
// contains the normalized query.
func (idx *Index) SearchByName(query string) []Candidate {
	q := NormalizeName(query)
	if q == "" {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matches []Candidate
	for _, identity := range idx.identities {
		if strings.Contains(NormalizeName(identity.DisplayName), q) {
			matches = append(matches, Candidate{
				IdentityKey: identity.IdentityKey,
				DisplayName: identity.DisplayName,
			})
		}
	}
	return matches
}
