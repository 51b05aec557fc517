// Package anomaly flags unusual spending: statistically, by comparing a
// current period against a user's baseline, and per-transaction, with an
// unsupervised isolation-forest model over a numeric feature matrix.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/spendsage/spendsage/internal/baseline"
	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/model"
)

// Z-score thresholds: beyond zScoreThreshold an anomaly is emitted, beyond
// highSeverityZ it is graded high.
const (
	zScoreThreshold = 2.0
	highSeverityZ   = 3.0
)

// OverallCategory labels the whole-period total check.
const OverallCategory = "Overall"

// Detector scores spending against established baselines.
type Detector struct {
	baselines *baseline.Store
}

// NewDetector creates a detector reading from the given baseline store.
func NewDetector(store *baseline.Store) *Detector {
	return &Detector{baselines: store}
}

// Baselines exposes the underlying store.
func (d *Detector) Baselines() *baseline.Store {
	return d.baselines
}

// DetectStatistical compares the current period's per-category and overall
// spending against the user's baseline using z-scores. Categories with
// baseline history but no current spending are deliberately not flagged;
// only observed spending is tested.
func (d *Detector) DetectStatistical(current []model.Transaction, userID string) (model.AnomalyReport, error) {
	b, ok := d.baselines.Get(userID)
	if !ok {
		return model.AnomalyReport{}, fmt.Errorf("%w: %s", common.ErrNoBaseline, userID)
	}

	sums := make(map[string]float64)
	var total float64
	for _, txn := range current {
		sums[txn.Category] += txn.Amount
		total += txn.Amount
	}

	categories := make([]string, 0, len(sums))
	for cat := range sums {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var anomalies []model.Anomaly
	for _, cat := range categories {
		stats, known := b.CategoryStats[cat]
		if !known {
			continue
		}

		spent := sums[cat]
		z := (spent - stats.MeanWeekly) / stats.StdWeekly
		if math.Abs(z) <= zScoreThreshold {
			continue
		}

		var pct float64
		if stats.MeanWeekly != 0 {
			pct = (spent - stats.MeanWeekly) / stats.MeanWeekly * 100
		}

		direction, anomalyType := "below", model.TypeDrop
		if z > 0 {
			direction, anomalyType = "above", model.TypeSpike
		}

		anomalies = append(anomalies, model.Anomaly{
			Kind:            model.KindStatistical,
			Category:        cat,
			AnomalyType:     anomalyType,
			Severity:        severityForZ(z),
			CurrentAmount:   spent,
			ExpectedAmount:  stats.MeanWeekly,
			ZScore:          z,
			PercentChange:   pct,
			DetectionMethod: model.DetectZScore,
			Explanation: fmt.Sprintf(
				"You spent %.0f on %s this period, which is %.0f%% %s your usual %.0f",
				spent, cat, math.Abs(pct), direction, stats.MeanWeekly),
		})
	}

	if z := (total - b.MeanWeeklyTotal) / b.StdWeeklyTotal; math.Abs(z) > zScoreThreshold {
		var pct float64
		if b.MeanWeeklyTotal != 0 {
			pct = (total - b.MeanWeeklyTotal) / b.MeanWeeklyTotal * 100
		}

		direction, anomalyType := "lower", model.TypeTotalDrop
		if z > 0 {
			direction, anomalyType = "higher", model.TypeTotalSpike
		}

		anomalies = append(anomalies, model.Anomaly{
			Kind:            model.KindStatistical,
			Category:        OverallCategory,
			AnomalyType:     anomalyType,
			Severity:        severityForZ(z),
			CurrentAmount:   total,
			ExpectedAmount:  b.MeanWeeklyTotal,
			ZScore:          z,
			PercentChange:   pct,
			DetectionMethod: model.DetectTotalZScore,
			Explanation: fmt.Sprintf(
				"Your total spending of %.0f is %.0f%% %s than your usual %.0f",
				total, math.Abs(pct), direction, b.MeanWeeklyTotal),
		})
	}

	return model.AnomalyReport{
		Anomalies: anomalies,
		Summary:   summarize(anomalies, ""),
	}, nil
}

func severityForZ(z float64) model.Severity {
	if math.Abs(z) > highSeverityZ {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

// summarize aggregates an anomaly list into a report summary.
func summarize(anomalies []model.Anomaly, note string) model.ReportSummary {
	summary := model.ReportSummary{
		TotalAnomalies: len(anomalies),
		Note:           note,
	}

	seen := make(map[string]struct{})
	for _, a := range anomalies {
		switch a.Severity {
		case model.SeverityHigh:
			summary.HighSeverity++
		case model.SeverityMedium:
			summary.MediumSeverity++
		}
		if _, dup := seen[a.Category]; !dup {
			seen[a.Category] = struct{}{}
			summary.CategoriesAffected = append(summary.CategoriesAffected, a.Category)
		}
	}
	sort.Strings(summary.CategoriesAffected)

	return summary
}
