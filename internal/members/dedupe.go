package members

import (
	"strings"

	"github.com/scoutline/board-member-search/internal/extract"
)

// FilterNew returns the candidates with no existing counterpart, preserving
// the extractor's ordering. A candidate matches an existing member only when
// both first and last name are equal case-insensitively; per-site member
// counts are tens at most, so the quadratic scan is fine.
func FilterNew(candidates, existing []extract.Member) []extract.Member {
	var out []extract.Member
	for _, c := range candidates {
		if !containsName(existing, c) {
			out = append(out, c)
		}
	}
	return out
}

func containsName(existing []extract.Member, c extract.Member) bool {
	for _, e := range existing {
		if strings.EqualFold(c.FirstName, e.FirstName) && strings.EqualFold(c.LastName, e.LastName) {
			return true
		}
	}
	return false
}
