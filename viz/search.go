package viz

import (
	"sort"
	"strings"
)

// Search returns the ids containing term, case-insensitively, in ascending order.
// A blank term matches nothing.
func Search(ids []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	var matches []string
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id), term) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)
	return matches
}
