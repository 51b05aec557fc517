package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsage/spendsage/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testReviewEntry(id string) model.ReviewEntry {
	return model.ReviewEntry{
		LoggedAt:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ID:                id,
		Description:       "UPI/unknownshop/payment",
		PredictedCategory: "Others",
		Method:            model.MethodDefault,
		Reasons:           []string{"fallback_default"},
		Confidence:        0.5,
		Amount:            230,
	}
}

func TestMigrateIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestReviewQueueRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Log(ctx, testReviewEntry("rev-1")))
	require.NoError(t, store.Log(ctx, testReviewEntry("rev-2")))

	pending, err := store.PendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "rev-1", pending[0].ID)
	assert.Equal(t, model.MethodDefault, pending[0].Method)
	assert.Equal(t, []string{"fallback_default"}, pending[0].Reasons)
	assert.InDelta(t, 0.5, pending[0].Confidence, 0.001)
}

func TestResolveReview(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Log(ctx, testReviewEntry("rev-1")))
	require.NoError(t, store.ResolveReview(ctx, "rev-1", "Shopping"))

	pending, err := store.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	corrections, err := store.ResolvedCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, "Shopping", corrections[0].Category)
	assert.Equal(t, "UPI/unknownshop/payment", corrections[0].Description)
}

func TestResolveReviewMissing(t *testing.T) {
	store := createTestStorage(t)

	err := store.ResolveReview(context.Background(), "nope", "Food")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no unresolved review entry")
}

func TestResolveReviewTwice(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Log(ctx, testReviewEntry("rev-1")))
	require.NoError(t, store.ResolveReview(ctx, "rev-1", "Shopping"))
	require.Error(t, store.ResolveReview(ctx, "rev-1", "Food"))
}

func TestSaveResultsAndListClassified(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	results := []model.BatchResult{
		{
			Transaction: model.Transaction{
				ID:          "txn-1",
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Description: "zomato order",
				Amount:      450,
			},
			Result: model.ClassificationResult{
				Category:    "Food",
				Subcategory: "Delivery",
				Method:      model.MethodRule,
				Reasons:     []string{"matched: zomato"},
				Confidence:  1.0,
			},
		},
		{
			Transaction: model.Transaction{
				ID:          "txn-2",
				Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
				Description: "irctc booking",
				Amount:      1200,
			},
			Result: model.ClassificationResult{
				Category:   "Travel",
				Method:     model.MethodRule,
				Confidence: 1.0,
			},
		},
	}

	require.NoError(t, store.SaveResults(ctx, results))

	txns, err := store.ClassifiedTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Food", txns[0].Category)
	assert.Equal(t, "Travel", txns[1].Category)
}

func TestSaveResultsUpsertByHash(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	result := model.BatchResult{
		Transaction: model.Transaction{
			ID:          "txn-1",
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Description: "zomato order",
			Amount:      450,
		},
		Result: model.ClassificationResult{Category: "Food", Method: model.MethodRule, Confidence: 1.0},
	}

	require.NoError(t, store.SaveResults(ctx, []model.BatchResult{result}))

	// Same transaction reclassified under a different category.
	result.Result.Category = "Shopping"
	require.NoError(t, store.SaveResults(ctx, []model.BatchResult{result}))

	txns, err := store.ClassifiedTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Shopping", txns[0].Category)
}

func TestCSVReviewSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review_queue.csv")
	sink := NewCSVReviewSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Log(ctx, testReviewEntry("rev-1")))
	require.NoError(t, sink.Log(ctx, testReviewEntry("rev-2")))

	entries, err := sink.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "rev-1", entries[0].ID)
	assert.Equal(t, "rev-2", entries[1].ID)
	assert.Equal(t, "Others", entries[0].PredictedCategory)
	assert.Equal(t, []string{"fallback_default"}, entries[0].Reasons)
	assert.Equal(t, testReviewEntry("rev-1").LoggedAt, entries[0].LoggedAt)
}

func TestCSVReviewSinkEmpty(t *testing.T) {
	sink := NewCSVReviewSink(filepath.Join(t.TempDir(), "missing.csv"))

	entries, err := sink.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
