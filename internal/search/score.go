// Package search implements the relevance scorer and search dispatcher
// used to rank Home Assistant entities, integrations and configuration
// blobs against a user query. It is pure computation over an in-memory
// snapshot: no I/O, no shared state, safe for concurrent use.
package search

import (
	"math"
	"strings"
)

// Ratio computes a similarity score between two strings in [0, 100],
// following the classic sequence-matcher definition: 2*M/T scaled to
// 100 and rounded to the nearest integer, where M is the total size of
// the matching blocks found by longest-common-substring alignment and
// T is the combined length of both strings.
//
// Comparison is case-sensitive and by code point; callers wanting
// case-insensitive scoring should lowercase first (Score does).
// Two empty strings are vacuously equal and score 100.
func Ratio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}

	m := matchingSize(ra, rb)
	return int(math.Round(200 * float64(m) / float64(total)))
}

// matchingSize returns the total length of the matching blocks between
// a and b. It repeatedly finds the longest common substring and recurses
// into the unmatched regions on either side, the same divide-and-conquer
// the Python difflib SequenceMatcher uses.
func matchingSize(a, b []rune) int {
	type region struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []region{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b, r.alo, r.ahi, r.blo, r.bhi)
		if size == 0 {
			continue
		}
		total += size
		queue = append(queue,
			region{r.alo, i, r.blo, j},
			region{i + size, r.ahi, j + size, r.bhi},
		)
	}
	return total
}

// longestMatch finds the longest matching block within
// a[alo:ahi] x b[blo:bhi]. On ties the earliest match in a wins,
// then the earliest in b, matching difflib's behavior.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] = length of the match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// Score rates how well query matches text, returning an integer in
// [0, 100]. Both inputs are lowercased before comparison. A query that
// is a substring of text is an exact/contains match and always scores
// 100, ranking above any fuzzy match; otherwise the sequence-matcher
// ratio applies.
//
// Score never fails: any input, including empty or non-ASCII strings,
// yields a defined value. An empty query is contained in every text and
// scores 100; ranking callers are expected to special-case absent
// queries before scoring (see Search).
func Score(query, text string) int {
	q := strings.ToLower(query)
	t := strings.ToLower(text)

	if strings.Contains(t, q) {
		return 100
	}
	return Ratio(q, t)
}

// PartialRatio rates how well the shorter string matches the best
// aligned window of the longer one, in [0, 100]. Inputs are lowercased.
// An empty query is contained in any text and scores 100; a non-empty
// query scores 0 against empty text. This is the measure used when
// scanning long configuration values for a short query: "light.turn_on"
// buried in an automation action should still score high.
func PartialRatio(query, text string) int {
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(text))

	// Emptiness is decided on the original arguments, before the
	// needle/haystack swap. Config blobs are full of empty strings and
	// none of them contain the query.
	if len(q) == 0 {
		return 100
	}
	if len(t) == 0 {
		return 0
	}
	if len(q) > len(t) {
		q, t = t, q
	}
	if strings.Contains(string(t), string(q)) {
		return 100
	}

	best := 0
	for i := 0; i+len(q) <= len(t); i++ {
		window := t[i : i+len(q)]
		m := matchingSize(q, window)
		score := int(math.Round(200 * float64(m) / float64(len(q)*2)))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}
