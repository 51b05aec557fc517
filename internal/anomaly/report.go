package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spendsage/spendsage/internal/model"
)

// Recommendation templating limits.
const (
	maxBudgetAlerts     = 3
	manyAnomalies       = 5
	demoCurrentFraction = 0.2
)

// GenerateReport runs both detectors for one user and composes insights,
// recommendations and a combined summary. A baseline is established from the
// historical window if none exists yet. When no explicit current period is
// given, the trailing fifth of the historical window stands in for it.
func (d *Detector) GenerateReport(historical, current []model.Transaction, userID string) (*model.CombinedReport, error) {
	if _, ok := d.baselines.Get(userID); !ok {
		if _, err := d.baselines.Establish(historical, userID); err != nil {
			return nil, fmt.Errorf("failed to establish baseline: %w", err)
		}
	}

	if len(current) == 0 {
		idx := int(float64(len(historical)) * (1 - demoCurrentFraction))
		current = historical[idx:]
	}

	report := &model.CombinedReport{
		ID:          uuid.NewString(),
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	if len(current) > 0 {
		stat, err := d.DetectStatistical(current, userID)
		if err != nil {
			return nil, err
		}
		report.Statistical = stat
	}

	report.Multivariate = d.DetectMultivariate(historical)
	report.Insights = SpendingInsights(historical)

	all := make([]model.Anomaly, 0,
		len(report.Statistical.Anomalies)+len(report.Multivariate.Anomalies))
	all = append(all, report.Statistical.Anomalies...)
	all = append(all, report.Multivariate.Anomalies...)

	report.Recommendations = Recommendations(all)
	report.Combined = combinedInsights(all)

	return report, nil
}

// Recommendations turns detected anomalies into templated advice: budget
// alerts for the top spending spikes, a pattern alert when ML flagged
// transactions, and a general or positive note depending on volume.
func Recommendations(anomalies []model.Anomaly) []model.Recommendation {
	var recs []model.Recommendation

	spikes := 0
	for _, a := range anomalies {
		if a.AnomalyType != model.TypeSpike {
			continue
		}
		if spikes >= maxBudgetAlerts {
			break
		}
		spikes++
		overspend := a.CurrentAmount - a.ExpectedAmount
		recs = append(recs, model.Recommendation{
			Type:     "budget_alert",
			Priority: "high",
			Category: a.Category,
			Message: fmt.Sprintf("Consider reducing %s spending. You're %.0f over your usual budget.",
				a.Category, overspend),
			Action: fmt.Sprintf("Try to limit %s to %.0f next period.", a.Category, a.ExpectedAmount),
		})
	}

	mlCount := 0
	for _, a := range anomalies {
		if a.Kind == model.KindML {
			mlCount++
		}
	}
	if mlCount > 0 {
		recs = append(recs, model.Recommendation{
			Type:     "pattern_alert",
			Priority: "medium",
			Message: fmt.Sprintf("We detected %d unusual transactions. Review these to ensure they're legitimate.",
				mlCount),
			Action: "Check your recent transactions for any unauthorized or mistaken payments.",
		})
	}

	switch {
	case len(anomalies) > manyAnomalies:
		recs = append(recs, model.Recommendation{
			Type:     "general_advice",
			Priority: "medium",
			Message:  "Your spending pattern shows several unusual activities. Consider setting up budget alerts.",
			Action:   "Set monthly budgets for each category to get notified when you approach limits.",
		})
	case len(anomalies) == 0:
		recs = append(recs, model.Recommendation{
			Type:     "positive_feedback",
			Priority: "low",
			Message:  "Great job! Your spending patterns look consistent and healthy.",
			Action:   "Keep up the good financial habits and continue monitoring your expenses.",
		})
	}

	return recs
}

func combinedInsights(anomalies []model.Anomaly) model.CombinedInsights {
	insights := model.CombinedInsights{TotalAnomalies: len(anomalies)}

	catCounts := make(map[string]int)
	methods := make(map[string]struct{})
	for _, a := range anomalies {
		if a.Severity == model.SeverityHigh {
			insights.HighPriority++
		}
		catCounts[a.Category]++
		methods[string(a.DetectionMethod)] = struct{}{}
	}

	for cat := range catCounts {
		insights.CategoriesWithAnomalies = append(insights.CategoriesWithAnomalies, cat)
	}
	sort.Strings(insights.CategoriesWithAnomalies)

	for m := range methods {
		insights.DetectionMethods = append(insights.DetectionMethods, m)
	}
	sort.Strings(insights.DetectionMethods)

	best, bestCount := "", 0
	for _, cat := range insights.CategoriesWithAnomalies {
		if catCounts[cat] > bestCount {
			best, bestCount = cat, catCounts[cat]
		}
	}
	insights.MostAnomalousCategory = best

	return insights
}
