// Package rules implements the merchant rule engine: a static mapping of
// category to prioritized merchant tokens, scored against normalized
// descriptions.
package rules

import (
	"sort"
	"strings"
)

// Scoring weights. A single high-priority hit already yields full confidence.
const (
	highPriorityWeight   = 3
	mediumPriorityWeight = 1
)

// CategoryRule maps one category to its merchant tokens.
type CategoryRule struct {
	Name           string   `yaml:"name" json:"name"`
	HighPriority   []string `yaml:"high_priority" json:"high_priority"`
	MediumPriority []string `yaml:"medium_priority" json:"medium_priority"`
}

// Subcategory is the (category, subcategory) pair for one merchant token,
// used only for explanation enrichment.
type Subcategory struct {
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory" json:"subcategory"`
}

// Match is a successful rule evaluation.
type Match struct {
	Category     string
	MatchedTerms []string
	Confidence   float64
	Score        int
}

// Table is a shared, read-only rule table. Categories are held sorted
// alphabetically so scoring ties resolve deterministically to the
// alphabetically-first category.
type Table struct {
	subcategories map[string]Subcategory
	categories    []CategoryRule
}

// NewTable builds a table from category rules and a merchant-to-subcategory
// map. The rules are copied and sorted by category name.
func NewTable(categories []CategoryRule, subcategories map[string]Subcategory) *Table {
	cats := make([]CategoryRule, len(categories))
	copy(cats, categories)
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })

	subs := make(map[string]Subcategory, len(subcategories))
	for k, v := range subcategories {
		subs[k] = v
	}

	return &Table{categories: cats, subcategories: subs}
}

// Match scores the normalized description against every category and returns
// the strictly best-scoring one, or nil when nothing matched. Equal scores
// keep the earlier (alphabetically-first) category.
func (t *Table) Match(normalized string) *Match {
	var best *Match

	for _, cat := range t.categories {
		score := 0
		var terms []string
		for _, m := range cat.HighPriority {
			if strings.Contains(normalized, m) {
				score += highPriorityWeight
				terms = append(terms, m)
			}
		}
		for _, m := range cat.MediumPriority {
			if strings.Contains(normalized, m) {
				score += mediumPriorityWeight
				terms = append(terms, m)
			}
		}

		if score > 0 && (best == nil || score > best.Score) {
			confidence := float64(score) / float64(highPriorityWeight)
			if confidence > 1.0 {
				confidence = 1.0
			}
			best = &Match{
				Category:     cat.Name,
				MatchedTerms: terms,
				Confidence:   confidence,
				Score:        score,
			}
		}
	}

	return best
}

// Categories returns the ordered category rules. Callers must not mutate.
func (t *Table) Categories() []CategoryRule {
	return t.categories
}

// Subcategories returns the merchant-to-subcategory map. Callers must not mutate.
func (t *Table) Subcategories() map[string]Subcategory {
	return t.subcategories
}

// Corpus returns every merchant token once, sorted longest-first so
// multi-word merchants win fuzzy-score ties over short ambiguous substrings.
func (t *Table) Corpus() []string {
	seen := make(map[string]struct{})
	var corpus []string
	for _, cat := range t.categories {
		for _, m := range cat.HighPriority {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				corpus = append(corpus, m)
			}
		}
		for _, m := range cat.MediumPriority {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				corpus = append(corpus, m)
			}
		}
	}

	sort.Slice(corpus, func(i, j int) bool {
		if len(corpus[i]) != len(corpus[j]) {
			return len(corpus[i]) > len(corpus[j])
		}
		return corpus[i] < corpus[j]
	})

	return corpus
}

// CategoryForToken looks up which category owns a merchant token.
func (t *Table) CategoryForToken(token string) (string, bool) {
	for _, cat := range t.categories {
		for _, m := range cat.HighPriority {
			if m == token {
				return cat.Name, true
			}
		}
		for _, m := range cat.MediumPriority {
			if m == token {
				return cat.Name, true
			}
		}
	}
	return "", false
}

// SubcategoryForTerms returns the subcategory of the first matched term that
// has one.
func (t *Table) SubcategoryForTerms(terms []string) (string, bool) {
	for _, term := range terms {
		if sub, ok := t.subcategories[term]; ok {
			return sub.Subcategory, true
		}
	}
	return "", false
}

// SubcategoryIn scans the normalized description for any merchant token with
// a subcategory mapping. Tokens are checked in sorted order so the result is
// deterministic.
func (t *Table) SubcategoryIn(normalized string) (string, bool) {
	tokens := make([]string, 0, len(t.subcategories))
	for token := range t.subcategories {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		if strings.Contains(normalized, token) {
			return t.subcategories[token].Subcategory, true
		}
	}
	return "", false
}
