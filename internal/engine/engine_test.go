package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/model"
	"github.com/spendsage/spendsage/internal/rules"
)

// memorySink collects review entries for assertions.
type memorySink struct {
	mu      sync.Mutex
	entries []model.ReviewEntry
}

func (s *memorySink) Log(_ context.Context, entry model.ReviewEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) all() []model.ReviewEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ReviewEntry(nil), s.entries...)
}

func trainingSet() []model.Transaction {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(desc, cat string) model.Transaction {
		return model.Transaction{Date: day, Description: desc, Category: cat, Amount: 100}
	}
	return []model.Transaction{
		mk("zomato food delivery order", "Food"),
		mk("swiggy dinner delivery", "Food"),
		mk("dominos pizza order", "Food"),
		mk("corner bakery breakfast", "Food"),
		mk("uber trip downtown", "Travel"),
		mk("ola cab airport", "Travel"),
		mk("irctc train ticket", "Travel"),
		mk("redbus intercity ticket", "Travel"),
	}
}

func TestClassifyRuleBased(t *testing.T) {
	sink := &memorySink{}
	e := New(rules.Default(), sink)

	res := e.Classify(context.Background(), "UPI/zomato/ref1234567/payment", 450)

	assert.Equal(t, "Food", res.Category)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.Equal(t, model.MethodRule, res.Method)
	assert.Equal(t, "Delivery", res.Subcategory)
	require.NotEmpty(t, res.Reasons)
	assert.Contains(t, res.Reasons[0], "rule_merchant_match")
	assert.Empty(t, sink.all(), "confident rule matches are not reviewed")
}

func TestClassifyDefaultFallbackLogsReview(t *testing.T) {
	sink := &memorySink{}
	e := New(rules.Default(), sink)

	res := e.Classify(context.Background(), "completely unknown merchant xyz", 75)

	assert.Equal(t, "Others", res.Category)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
	assert.Equal(t, model.MethodDefault, res.Method)
	assert.Contains(t, res.Reasons, "fallback_default")

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "Others", entries[0].PredictedCategory)
	assert.Equal(t, model.MethodDefault, entries[0].Method)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].LoggedAt.IsZero())
}

func TestClassifyFuzzyConfidentMatch(t *testing.T) {
	sink := &memorySink{}
	e := New(rules.Default(), sink)

	// "premlum" is one edit from "premium": no rule token is a substring, and
	// the 15-char merchant aligns at partial ratio 93, above the confident
	// threshold, so the fuzzy stage must resolve.
	res := e.Classify(context.Background(), "youtube premlum renewal", 129)

	assert.Equal(t, model.MethodFuzzy, res.Method)
	assert.Equal(t, "Subscriptions", res.Category)
	assert.InDelta(t, 0.93, res.Confidence, 1e-9)
	require.NotEmpty(t, res.Reasons)
	assert.Contains(t, res.Reasons[0], "fuzzy_merchant_match: youtube premium")
	assert.Empty(t, sink.all(), "confident fuzzy matches are not reviewed")
}

func TestClassifyFuzzyBelowConfidentFallsThrough(t *testing.T) {
	sink := &memorySink{}
	e := New(rules.Default(), sink)

	// "flipcart" scores 88 against "flipkart": at or above the match
	// threshold but below the confident one. The fuzzy reason must be
	// recorded while classification continues; with no trained model that
	// ends at the default fallback.
	res := e.Classify(context.Background(), "flipcart order", 899)

	assert.Equal(t, model.MethodDefault, res.Method)
	assert.Equal(t, "Others", res.Category)
	require.Len(t, res.Reasons, 2)
	assert.Contains(t, res.Reasons[0], "fuzzy_merchant_match: flipkart (score=88)")
	assert.Equal(t, "fallback_default", res.Reasons[1])

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "Others", entries[0].PredictedCategory)
}

func TestClassifyRuleBeatsFuzzyOrdering(t *testing.T) {
	// A description carrying a verbatim high-priority token must resolve at
	// the rule stage even if it is also fuzzy-similar to another category's
	// token.
	e := New(rules.Default(), nil)

	res := e.Classify(context.Background(), "zomato netflx combo", 300)

	assert.Equal(t, model.MethodRule, res.Method)
	assert.Equal(t, "Food", res.Category)
}

func TestClassifyConfidenceBounds(t *testing.T) {
	e := New(rules.Default(), nil)
	_, err := e.Train(context.Background(), trainingSet(), 0.2)
	require.NoError(t, err)

	inputs := []string{
		"zomato payment",
		"flipkar order",
		"uber ride city",
		"totally unknown gibberish",
		"",
	}
	for _, in := range inputs {
		res := e.Classify(context.Background(), in, 10)
		assert.GreaterOrEqual(t, res.Confidence, 0.0, "input %q", in)
		assert.LessOrEqual(t, res.Confidence, 1.0, "input %q", in)
	}
}

func TestClassifyMLStageAfterTraining(t *testing.T) {
	sink := &memorySink{}
	e := New(rules.Default(), sink)

	_, err := e.Train(context.Background(), trainingSet(), 0.2)
	require.NoError(t, err)
	assert.True(t, e.IsTrained())

	// No rule or fuzzy token comes close to this, so the ML stage answers.
	res := e.Classify(context.Background(), "intercity ticket downtown", 220)
	assert.Equal(t, model.MethodML, res.Method)
	assert.NotEmpty(t, res.Reasons)
}

func TestClassifyBatchOrderAndCorrectness(t *testing.T) {
	e := New(rules.Default(), nil)

	txns := []model.Transaction{
		{Date: time.Now(), Description: "zomato order", Amount: 250, Category: "Food"},
		{Date: time.Now(), Description: "uber trip", Amount: 180, Category: "Shopping"},
		{Date: time.Now(), Description: "mystery merchant", Amount: 90},
	}

	results := e.ClassifyBatch(context.Background(), txns)
	require.Len(t, results, len(txns))

	for i := range txns {
		assert.Equal(t, txns[i].Description, results[i].Transaction.Description, "row order preserved")
	}

	require.NotNil(t, results[0].Correct)
	assert.True(t, *results[0].Correct)
	require.NotNil(t, results[1].Correct)
	assert.False(t, *results[1].Correct)
	assert.Nil(t, results[2].Correct, "no ground truth, no correctness")
}

func TestSaveModelUntrained(t *testing.T) {
	e := New(rules.Default(), nil)
	assert.ErrorIs(t, e.SaveModel(t.TempDir()+"/model.json"), common.ErrNotTrained)
}

func TestSaveAndLoadModelRoundTrip(t *testing.T) {
	e := New(rules.Default(), nil)
	_, err := e.Train(context.Background(), trainingSet(), 0.2)
	require.NoError(t, err)

	path := t.TempDir() + "/model.json"
	require.NoError(t, e.SaveModel(path))

	fresh := New(rules.Default(), nil)
	require.NoError(t, fresh.LoadModel(path))
	assert.True(t, fresh.IsTrained())

	want := e.Classify(context.Background(), "intercity ticket downtown", 10)
	got := fresh.Classify(context.Background(), "intercity ticket downtown", 10)
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Method, got.Method)
}

func TestSpendingSummary(t *testing.T) {
	e := New(rules.Default(), nil)

	txns := []model.Transaction{
		{Date: time.Now(), Description: "zomato order", Amount: 300},
		{Date: time.Now(), Description: "swiggy dinner", Amount: 100},
		{Date: time.Now(), Description: "uber trip", Amount: 600},
	}

	summary := SpendingSummary(e.ClassifyBatch(context.Background(), txns))

	food := summary["Food"]
	assert.Equal(t, 2, food.TransactionCount)
	assert.InDelta(t, 400.0, food.TotalSpent, 1e-9)
	assert.InDelta(t, 200.0, food.AvgAmount, 1e-9)
	assert.InDelta(t, 40.0, food.Percentage, 1e-9)

	travel := summary["Travel"]
	assert.InDelta(t, 60.0, travel.Percentage, 1e-9)
}
