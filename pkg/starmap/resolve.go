package starmap

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/evefrontier/routecore/pkg/coreerr"
)

const (
	suggestThreshold = 0.82
	nSuggest         = 3
)

// normalizeName applies Unicode NFC, lowercasing and whitespace trimming —
// the single normalization used both to build by_name and to look names up
// (spec §3 invariant: "by_name is total over systems; name lookup is
// case-insensitive and whitespace-trimmed").
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// Resolve maps a user-supplied system name to its id. On a miss it returns
// up to nSuggest closest matches by Jaro-Winkler similarity, tie-broken by
// raw Levenshtein distance then lexicographically (spec §4.1).
func (s *Starmap) Resolve(name string) (SystemID, *coreerr.Error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, coreerr.InvalidRequest("name", "must not be empty or whitespace-only")
	}

	norm := normalizeName(trimmed)
	if id, ok := s.byName[norm]; ok {
		return id, nil
	}

	return 0, coreerr.UnknownSystem(trimmed, s.suggest(norm))
}

type candidate struct {
	name  string
	score float64
	lev   int
}

func (s *Starmap) suggest(normQuery string) []string {
	candidates := make([]candidate, 0, len(s.byName))
	for normName := range s.byName {
		score := jaroWinkler(normQuery, normName)
		if score < suggestThreshold {
			continue
		}
		candidates = append(candidates, candidate{
			name:  normName,
			score: score,
			lev:   levenshtein(normQuery, normName),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].lev != candidates[j].lev {
			return candidates[i].lev < candidates[j].lev
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > nSuggest {
		candidates = candidates[:nSuggest]
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		// surface the original-cased name, not the normalized key
		out = append(out, s.originalName(c.name))
	}
	return out
}

// originalName returns the display-cased name for a normalized key,
// falling back to the key itself if the reverse lookup somehow misses.
func (s *Starmap) originalName(normName string) string {
	if id, ok := s.byName[normName]; ok {
		if sys := s.systems[id]; sys != nil {
			return sys.Name
		}
	}
	return normName
}
