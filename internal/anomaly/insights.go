package anomaly

import "github.com/spendsage/spendsage/internal/model"

// SpendingInsights derives descriptive category and temporal statistics
// from a transaction set. It is reporting glue, not a detector: nothing
// here is thresholded.
func SpendingInsights(txns []model.Transaction) model.SpendingInsights {
	insights := model.SpendingInsights{
		CategoryAnalysis: make(map[string]model.CategoryInsight),
	}
	if len(txns) == 0 {
		return insights
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	maxes := make(map[string]float64)

	var daySums [7]float64
	var dayCounts [7]int

	for _, txn := range txns {
		totals[txn.Category] += txn.Amount
		counts[txn.Category]++
		if txn.Amount > maxes[txn.Category] {
			maxes[txn.Category] = txn.Amount
		}

		day := (int(txn.Date.Weekday()) + 6) % 7
		daySums[day] += txn.Amount
		dayCounts[day]++

		insights.Temporal.MonthlyTotals[int(txn.Date.Month())] += txn.Amount
	}

	for cat, total := range totals {
		insights.CategoryAnalysis[cat] = model.CategoryInsight{
			TotalSpent:        total,
			TransactionCount:  counts[cat],
			AvgTransaction:    total / float64(counts[cat]),
			MaxTransaction:    maxes[cat],
			SpendingFrequency: float64(counts[cat]) / float64(len(txns)) * 100,
		}
	}

	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int
	for day := range daySums {
		if dayCounts[day] == 0 {
			continue
		}
		avg := daySums[day] / float64(dayCounts[day])
		insights.Temporal.DailyAverage[day] = avg
		if day >= 5 {
			weekendSum += avg
			weekendN++
		} else {
			weekdaySum += avg
			weekdayN++
		}
	}
	if weekendN > 0 {
		insights.Temporal.WeekendAvg = weekendSum / float64(weekendN)
	}
	if weekdayN > 0 {
		insights.Temporal.WeekdayAvg = weekdaySum / float64(weekdayN)
	}

	return insights
}
