package engine

import "github.com/spendsage/spendsage/internal/model"

// SpendingSummary aggregates a classified batch by predicted category:
// total spent, transaction count, average amount and share of total.
func SpendingSummary(results []model.BatchResult) map[string]model.CategorySummary {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	var grand float64

	for _, r := range results {
		totals[r.Result.Category] += r.Transaction.Amount
		counts[r.Result.Category]++
		grand += r.Transaction.Amount
	}

	summary := make(map[string]model.CategorySummary, len(totals))
	for cat, total := range totals {
		s := model.CategorySummary{
			TotalSpent:       total,
			TransactionCount: counts[cat],
		}
		if counts[cat] > 0 {
			s.AvgAmount = total / float64(counts[cat])
		}
		if grand > 0 {
			s.Percentage = total / grand * 100
		}
		summary[cat] = s
	}
	return summary
}
