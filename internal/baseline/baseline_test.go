package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/model"
)

// weeklyFood returns one Food transaction per week with the given amounts,
// starting on a Monday.
func weeklyFood(amounts []float64) []model.Transaction {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) // Monday
	txns := make([]model.Transaction, len(amounts))
	for i, amt := range amounts {
		txns[i] = model.Transaction{
			Date:        start.AddDate(0, 0, 7*i),
			Description: "grocery run",
			Category:    "Food",
			Amount:      amt,
		}
	}
	return txns
}

func TestEstablishComputesWeeklyStats(t *testing.T) {
	store := NewStore()

	b, err := store.Establish(weeklyFood([]float64{1000, 1100, 1050}), "u1")
	require.NoError(t, err)

	food, ok := b.CategoryStats["Food"]
	require.True(t, ok)
	assert.InDelta(t, 1050.0, food.MeanWeekly, 1e-9)
	assert.InDelta(t, 1050.0, food.MedianWeekly, 1e-9)
	assert.InDelta(t, 1000.0, food.MinWeekly, 1e-9)
	assert.InDelta(t, 1100.0, food.MaxWeekly, 1e-9)
	assert.Equal(t, 3, food.Count)
	assert.InDelta(t, 3150.0, food.TotalSpent, 1e-9)

	// Computed sample std is 50, which sits under the documented floor.
	assert.InDelta(t, CategoryStdFloor, food.StdWeekly, 1e-9)
	assert.InDelta(t, OverallStdFloor, b.StdWeeklyTotal, 1e-9)
}

func TestStdFloorsWithSingleWeek(t *testing.T) {
	store := NewStore()

	b, err := store.Establish(weeklyFood([]float64{500}), "u1")
	require.NoError(t, err)

	assert.InDelta(t, CategoryStdFloor, b.CategoryStats["Food"].StdWeekly, 1e-9)
	assert.InDelta(t, OverallStdFloor, b.StdWeeklyTotal, 1e-9)
	assert.False(t, b.StdWeeklyTotal < OverallStdFloor)
}

func TestEstablishRequiresCategories(t *testing.T) {
	store := NewStore()

	txns := weeklyFood([]float64{100, 200})
	txns[1].Category = ""

	_, err := store.Establish(txns, "u1")
	assert.ErrorIs(t, err, common.ErrMissingCategory)

	_, err = store.Establish(nil, "u1")
	assert.ErrorIs(t, err, common.ErrNoTransactions)
}

func TestEstablishOverwrites(t *testing.T) {
	store := NewStore()

	_, err := store.Establish(weeklyFood([]float64{100, 100}), "u1")
	require.NoError(t, err)

	b2, err := store.Establish(weeklyFood([]float64{9000, 9000}), "u1")
	require.NoError(t, err)

	got, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, b2, got)
	assert.InDelta(t, 9000.0, got.CategoryStats["Food"].MeanWeekly, 1e-9)

	_, ok = store.Get("unknown")
	assert.False(t, ok)
}

func TestDayOfWeekAveragesAndWeekendRatio(t *testing.T) {
	store := NewStore()

	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		{Date: monday, Description: "lunch", Category: "Food", Amount: 100},                  // Monday
		{Date: monday.AddDate(0, 0, 1), Description: "lunch", Category: "Food", Amount: 100}, // Tuesday
		{Date: monday.AddDate(0, 0, 5), Description: "bar", Category: "Food", Amount: 400},   // Saturday
	}

	b, err := store.Establish(txns, "u1")
	require.NoError(t, err)

	assert.InDelta(t, 100.0, b.DailyAvgSpending[0], 1e-9)
	assert.InDelta(t, 100.0, b.DailyAvgSpending[1], 1e-9)
	assert.InDelta(t, 400.0, b.DailyAvgSpending[5], 1e-9)
	assert.InDelta(t, 0.0, b.DailyAvgSpending[6], 1e-9)

	// Weekend avg 400 over weekday avg 100.
	assert.InDelta(t, 4.0, b.WeekendRatio, 1e-9)
}

func TestWeekendRatioNeutralWithoutWeekendHistory(t *testing.T) {
	store := NewStore()

	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		{Date: monday, Description: "lunch", Category: "Food", Amount: 100},
		{Date: monday.AddDate(0, 0, 1), Description: "lunch", Category: "Food", Amount: 150},
		{Date: monday.AddDate(0, 0, 2), Description: "lunch", Category: "Food", Amount: 120},
	}

	b, err := store.Establish(txns, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.WeekendRatio, 1e-9)
}

func TestPercentiles(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	assert.InDelta(t, 30.0, median(values), 1e-9)
	assert.InDelta(t, 40.0, percentile(values, 0.75), 1e-9)
	assert.InDelta(t, 46.0, percentile(values, 0.90), 1e-9)
	assert.InDelta(t, 0.0, percentile(nil, 0.5), 1e-9)
}
