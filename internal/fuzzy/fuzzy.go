// Package fuzzy matches normalized descriptions against the merchant corpus
// with a substring-tolerant approximate similarity, for descriptions that
// slip past exact rule matching.
package fuzzy

import (
	"math"

	"github.com/agnivade/levenshtein"

	"github.com/spendsage/spendsage/internal/rules"
)

// Score thresholds on the 0-100 partial-ratio scale. A result is only
// returned at Threshold or above; ConfidentScore is the point at which the
// orchestrator resolves without consulting the trained classifier.
const (
	Threshold      = 85
	ConfidentScore = 92
)

// Result is a successful fuzzy match.
type Result struct {
	Merchant string
	Category string // empty when the token has no category mapping
	Score    int
}

// Matcher matches against a fixed merchant corpus.
type Matcher struct {
	table  *rules.Table
	corpus []string
}

// NewMatcher builds a matcher over the table's merchant corpus.
func NewMatcher(table *rules.Table) *Matcher {
	return &Matcher{
		table:  table,
		corpus: table.Corpus(),
	}
}

// Match returns the best-scoring merchant token at or above Threshold, or
// nil. The corpus is ordered longest-first and only a strictly better score
// displaces the leader, so multi-word merchants win ties.
func (m *Matcher) Match(normalized string) *Result {
	if normalized == "" {
		return nil
	}

	bestScore := -1
	bestToken := ""
	for _, token := range m.corpus {
		if score := PartialRatio(normalized, token); score > bestScore {
			bestScore = score
			bestToken = token
		}
	}

	if bestScore < Threshold {
		return nil
	}

	category, _ := m.table.CategoryForToken(bestToken)
	return &Result{
		Merchant: bestToken,
		Category: category,
		Score:    bestScore,
	}
}

// PartialRatio computes an edit-distance based similarity in [0,100] between
// the shorter string and the best-aligned window of the longer one, so a
// merchant token embedded in a noisy description still scores highly.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	n := len(shorter)
	best := 0
	for i := 0; i+n <= len(longer); i++ {
		dist := levenshtein.ComputeDistance(shorter, longer[i:i+n])
		score := int(math.Round(float64(n-dist) / float64(n) * 100))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}

	if best < 0 {
		best = 0
	}
	return best
}
