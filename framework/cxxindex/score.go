package cxxindex

import "strings"

// ScoreTable ranks module paths by the preferred substrings they contain.
// Earlier entries are preferred over later ones.
type ScoreTable []string

// Score returns len(t)-i for the first entry i contained in path, or 0 when
// no entry matches.
func (t ScoreTable) Score(path string) int {
	for i, preferred := range t {
		if preferred == "" {
			continue
		}
		if strings.Contains(path, preferred) {
			return len(t) - i
		}
	}
	return 0
}

// Prefer reports whether candidate should replace existing. Only a strictly
// higher score replaces, so equal scores keep the first record seen.
func (t ScoreTable) Prefer(candidate, existing FileRecord) bool {
	return t.Score(candidate.ModulePath) > t.Score(existing.ModulePath)
}
