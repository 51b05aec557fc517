// Package baseline computes per-user historical spending statistics used as
// the expected-value reference for anomaly scoring.
package baseline

import (
	"fmt"
	"sync"
	"time"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/model"
)

// Standard-deviation floors, in currency units. They keep downstream
// z-scores finite when a baseline was built from near-constant or
// single-week history.
const (
	CategoryStdFloor = 100.0
	OverallStdFloor  = 500.0
)

// Store keeps baselines keyed by user id. Establishing a baseline for an
// existing user replaces the prior one wholesale; there is no merging.
type Store struct {
	baselines map[string]*model.Baseline
	mu        sync.RWMutex
}

// NewStore creates an empty baseline store.
func NewStore() *Store {
	return &Store{baselines: make(map[string]*model.Baseline)}
}

// Get returns the baseline for a user, if one has been established.
func (s *Store) Get(userID string) (*model.Baseline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.baselines[userID]
	return b, ok
}

// Establish computes a baseline from historical transactions and stores it
// under userID. Every transaction must carry a category (run classification
// first); a missing category is a precondition failure, not something to
// paper over.
func (s *Store) Establish(txns []model.Transaction, userID string) (*model.Baseline, error) {
	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	for i, txn := range txns {
		if txn.Category == "" {
			return nil, fmt.Errorf("%w: row %d (%q)", common.ErrMissingCategory, i, txn.Description)
		}
	}

	b := compute(txns, userID)

	s.mu.Lock()
	s.baselines[userID] = b
	s.mu.Unlock()

	return b, nil
}

func compute(txns []model.Transaction, userID string) *model.Baseline {
	b := &model.Baseline{
		UserID:        userID,
		Transactions:  len(txns),
		CategoryStats: make(map[string]model.CategoryStats),
		Start:         txns[0].Date,
		End:           txns[0].Date,
	}

	// Weekly sums partitioned by ISO week, per category and overall.
	catWeekly := make(map[string]map[int]float64)
	overallWeekly := make(map[int]float64)
	catAmounts := make(map[string][]float64)
	var daySums [7]float64
	var dayCounts [7]int

	for _, txn := range txns {
		if txn.Date.Before(b.Start) {
			b.Start = txn.Date
		}
		if txn.Date.After(b.End) {
			b.End = txn.Date
		}

		week := isoWeekKey(txn.Date)
		if catWeekly[txn.Category] == nil {
			catWeekly[txn.Category] = make(map[int]float64)
		}
		catWeekly[txn.Category][week] += txn.Amount
		overallWeekly[week] += txn.Amount
		catAmounts[txn.Category] = append(catAmounts[txn.Category], txn.Amount)

		day := mondayIndexed(txn.Date)
		daySums[day] += txn.Amount
		dayCounts[day]++
	}

	for category, weeks := range catWeekly {
		sums := make([]float64, 0, len(weeks))
		for _, v := range weeks {
			sums = append(sums, v)
		}
		minW, maxW := minMax(sums)

		std := sampleStd(sums)
		if std < CategoryStdFloor {
			std = CategoryStdFloor
		}

		amounts := catAmounts[category]
		var total float64
		for _, a := range amounts {
			total += a
		}

		b.CategoryStats[category] = model.CategoryStats{
			MeanWeekly:     mean(sums),
			StdWeekly:      std,
			MedianWeekly:   median(sums),
			MinWeekly:      minW,
			MaxWeekly:      maxW,
			Count:          len(amounts),
			AvgTransaction: mean(amounts),
			TotalSpent:     total,
		}
	}

	overallSums := make([]float64, 0, len(overallWeekly))
	for _, v := range overallWeekly {
		overallSums = append(overallSums, v)
	}
	b.MeanWeeklyTotal = mean(overallSums)
	b.StdWeeklyTotal = sampleStd(overallSums)
	if b.StdWeeklyTotal < OverallStdFloor {
		b.StdWeeklyTotal = OverallStdFloor
	}
	b.MedianWeeklyTotal = median(overallSums)
	b.Percentile75 = percentile(overallSums, 0.75)
	b.Percentile90 = percentile(overallSums, 0.90)

	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int
	for day := range daySums {
		if dayCounts[day] == 0 {
			continue
		}
		avg := daySums[day] / float64(dayCounts[day])
		b.DailyAvgSpending[day] = avg
		if day >= 5 {
			weekendSum += avg
			weekendN++
		} else {
			weekdaySum += avg
			weekdayN++
		}
	}

	// Neutral ratio when either side of the week has no spending history.
	b.WeekendRatio = 1.0
	if weekendN > 0 && weekdayN > 0 && weekdaySum > 0 {
		b.WeekendRatio = (weekendSum / float64(weekendN)) / (weekdaySum / float64(weekdayN))
	}

	return b
}

// isoWeekKey collapses a date to its ISO year and week.
func isoWeekKey(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}

// mondayIndexed maps time.Weekday (Sunday=0) to the 0=Monday..6=Sunday
// scheme used throughout the baseline.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
