package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsage/spendsage/internal/rules"
)

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "exact substring", a: "zomato order food", b: "zomato", want: 100},
		{name: "identical", a: "netflix", b: "netflix", want: 100},
		{name: "empty side", a: "", b: "zomato", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartialRatio(tt.a, tt.b))
		})
	}
}

func TestPartialRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"zomatoo", "zomato"},
		{"swigy order", "swiggy"},
		{"abc", "xyz"},
		{"a", "completely different words"},
		{"netflx subscription", "netflix"},
	}

	for _, p := range pairs {
		score := PartialRatio(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestMatcherFindsMisspelledMerchant(t *testing.T) {
	m := NewMatcher(rules.Default())

	// One edit inside an eight-letter token stays above the threshold.
	res := m.Match("flipkar order")
	require.NotNil(t, res)
	assert.Equal(t, "flipkart", res.Merchant)
	assert.Equal(t, "Shopping", res.Category)
	assert.GreaterOrEqual(t, res.Score, Threshold)
	assert.LessOrEqual(t, res.Score, 100)
}

func TestMatcherRejectsBelowThreshold(t *testing.T) {
	m := NewMatcher(rules.Default())

	assert.Nil(t, m.Match("qqqq wwww eeee"))
	assert.Nil(t, m.Match(""))
}

func TestMatcherAnyResultMeetsThreshold(t *testing.T) {
	m := NewMatcher(rules.Default())

	inputs := []string{"zomato", "swiggy lunch", "netflx", "ubr ride", "random text"}
	for _, in := range inputs {
		if res := m.Match(in); res != nil {
			assert.GreaterOrEqual(t, res.Score, Threshold, "input %q", in)
			assert.LessOrEqual(t, res.Score, 100, "input %q", in)
		}
	}
}
