package search

import (
	"fmt"
	"sort"
	"strings"
)

// Candidate is a searchable item, typically a Home Assistant entity
// state. It is read-only for the duration of a search call.
type Candidate struct {
	EntityID     string
	FriendlyName string
	State        string
	Attributes   map[string]any
}

// Domain returns the category prefix of the entity ID (the part before
// the first dot), or "" when the ID has no dot.
func (c Candidate) Domain() string {
	if idx := strings.Index(c.EntityID, "."); idx > 0 {
		return c.EntityID[:idx]
	}
	return ""
}

// MatchType classifies how a candidate matched the query.
type MatchType string

const (
	// MatchExactSubstring means the query was found verbatim
	// (case-insensitive) in one of the candidate's text fields.
	MatchExactSubstring MatchType = "exact_substring"

	// MatchFuzzy means the candidate matched by similarity ratio only.
	MatchFuzzy MatchType = "fuzzy"

	// MatchDomainListing means no query was given and the candidate was
	// returned as part of a plain domain listing.
	MatchDomainListing MatchType = "domain_listing"
)

// Search type values reported in Result.SearchType.
const (
	SearchTypeDomainListing = "domain_listing"
	SearchTypeFuzzy         = "fuzzy_search"
)

// ScoredMatch is a candidate with its relevance score. Scores are
// monotonically non-increasing across a Result's Matches.
type ScoredMatch struct {
	Candidate
	Score     int
	MatchType MatchType
}

// Options control a single Search call.
type Options struct {
	// Query is the user-supplied search string. Empty or all-whitespace
	// means absent: every retained candidate is returned as a domain
	// listing without ranking.
	Query string

	// DomainFilter, when set, retains only candidates whose domain
	// equals it exactly (case-sensitive).
	DomainFilter string

	// Limit is the maximum number of matches returned. Must be > 0.
	Limit int

	// GroupByDomain additionally buckets the limited result set by
	// domain, preserving relative order.
	GroupByDomain bool

	// MinScore is the lowest score kept in fuzzy-search mode. Entity
	// search passes 1 so that low-relevance results still surface (and
	// rank last); integration/title search passes 70. Values below 1
	// are treated as 1: zero scores are never returned.
	MinScore int
}

// Result is the outcome of one Search call.
type Result struct {
	// Matches is the limited result set, sorted by descending score in
	// fuzzy-search mode, or in snapshot order for a domain listing.
	Matches []ScoredMatch

	// TotalMatches counts candidates that matched the filter before the
	// limit was applied.
	TotalMatches int

	// Truncated is true iff the limit cut results off.
	Truncated bool

	// SearchType is SearchTypeDomainListing or SearchTypeFuzzy.
	SearchType string

	// ByDomain is only populated when Options.GroupByDomain is set. It
	// buckets Matches (the limited set) by domain.
	ByDomain map[string][]ScoredMatch
}

// ValidationError reports invalid caller input. It is the only error
// kind Search returns.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Search ranks candidates against opts and returns a Result.
//
// With an absent (empty/whitespace) query every retained candidate is
// returned as a domain listing in snapshot order, score 100. With a
// query present, each candidate's best score across entity ID, friendly
// name and domain decides its rank; candidates below opts.MinScore are
// dropped and ties keep snapshot order (stable sort).
//
// An unknown DomainFilter is not an error: the result is simply empty.
func Search(candidates []Candidate, opts Options) (*Result, error) {
	if opts.Limit <= 0 {
		return nil, &ValidationError{Param: "limit", Reason: "must be a positive integer"}
	}
	for i, c := range candidates {
		if c.EntityID == "" {
			return nil, &ValidationError{
				Param:  "candidates",
				Reason: fmt.Sprintf("candidate %d has no entity_id", i),
			}
		}
	}

	retained := candidates
	if opts.DomainFilter != "" {
		retained = make([]Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.Domain() == opts.DomainFilter {
				retained = append(retained, c)
			}
		}
	}

	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return listDomain(retained, opts), nil
	}
	return rank(retained, query, opts), nil
}

// listDomain returns every retained candidate unranked, in snapshot
// order. Home Assistant returns /api/states in a stable order, so the
// listing is deterministic across calls against the same snapshot.
func listDomain(retained []Candidate, opts Options) *Result {
	matches := make([]ScoredMatch, 0, min(len(retained), opts.Limit))
	for _, c := range retained {
		if len(matches) == opts.Limit {
			break
		}
		matches = append(matches, ScoredMatch{
			Candidate: c,
			Score:     100,
			MatchType: MatchDomainListing,
		})
	}

	res := &Result{
		Matches:      matches,
		TotalMatches: len(retained),
		Truncated:    len(retained) > opts.Limit,
		SearchType:   SearchTypeDomainListing,
	}
	if opts.GroupByDomain {
		res.ByDomain = groupByDomain(matches)
	}
	return res
}

// rank scores every retained candidate and returns the sorted, limited
// result set.
func rank(retained []Candidate, query string, opts Options) *Result {
	minScore := opts.MinScore
	if minScore < 1 {
		minScore = 1
	}

	queryLower := strings.ToLower(query)
	scored := make([]ScoredMatch, 0, len(retained))
	for _, c := range retained {
		best, exact := scoreCandidate(c, queryLower)
		if best < minScore {
			continue
		}
		matchType := MatchFuzzy
		if exact {
			matchType = MatchExactSubstring
		}
		scored = append(scored, ScoredMatch{Candidate: c, Score: best, MatchType: matchType})
	}

	// Stable: ties keep snapshot order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	total := len(scored)
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	res := &Result{
		Matches:      scored,
		TotalMatches: total,
		Truncated:    total > opts.Limit,
		SearchType:   SearchTypeFuzzy,
	}
	if opts.GroupByDomain {
		res.ByDomain = groupByDomain(scored)
	}
	return res
}

// scoreCandidate returns the best score across the candidate's
// searchable fields, and whether that score came from substring
// containment.
func scoreCandidate(c Candidate, queryLower string) (best int, exact bool) {
	for _, field := range []string{c.EntityID, c.FriendlyName, c.Domain()} {
		if field == "" {
			continue
		}
		fieldLower := strings.ToLower(field)
		if strings.Contains(fieldLower, queryLower) {
			return 100, true
		}
		if s := Ratio(queryLower, fieldLower); s > best {
			best = s
		}
	}
	return best, false
}

func groupByDomain(matches []ScoredMatch) map[string][]ScoredMatch {
	grouped := make(map[string][]ScoredMatch)
	for _, m := range matches {
		d := m.Domain()
		grouped[d] = append(grouped[d], m)
	}
	return grouped
}
