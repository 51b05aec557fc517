package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/spendsage/spendsage/internal/model"
)

// Multivariate detection parameters. The contamination fraction bounds how
// much of the data can be flagged; the model is refit on every call with a
// fixed seed, so results are reproducible for the same input.
const (
	// MinTransactions is the minimum input size; below it detection is
	// skipped (not an error).
	MinTransactions = 10

	contamination      = 0.1
	contaminationCap   = 0.3
	highSeverityScore  = -0.5
	forestSeed         = 42
	explanationSnippet = 50
)

// DetectMultivariate builds a numeric feature matrix over the transactions
// (amount, day-of-week, month, one-hot category), standardizes it, fits an
// isolation forest and flags the predicted outliers. Fewer than
// MinTransactions yields an empty report with an explanatory note.
func (d *Detector) DetectMultivariate(txns []model.Transaction) model.AnomalyReport {
	if len(txns) < MinTransactions {
		return model.AnomalyReport{
			Summary: summarize(nil, fmt.Sprintf(
				"not enough data for multivariate detection: need at least %d transactions, got %d",
				MinTransactions, len(txns))),
		}
	}

	matrix := buildFeatureMatrix(txns)
	standardize(matrix)

	rng := rand.New(rand.NewSource(forestSeed))
	forest := fitForest(matrix, rng)

	// Mirror the usual decision-function convention: raw scores map to
	// [-1,0], the offset is the contamination quantile, and anything with a
	// negative shifted score is an outlier.
	frac := contamination
	if frac > contaminationCap {
		frac = contaminationCap
	}

	raw := make([]float64, len(matrix))
	for i, row := range matrix {
		raw[i] = -forest.score(row)
	}
	offset := quantile(raw, frac)

	var anomalies []model.Anomaly
	for i, txn := range txns {
		decision := raw[i] - offset
		if decision >= 0 {
			continue
		}

		severity := model.SeverityMedium
		if decision < highSeverityScore {
			severity = model.SeverityHigh
		}

		anomalies = append(anomalies, model.Anomaly{
			Kind:            model.KindML,
			Category:        txn.Category,
			AnomalyType:     model.TypeNone,
			Severity:        severity,
			Date:            txn.Date,
			Description:     txn.Description,
			CurrentAmount:   txn.Amount,
			AnomalyScore:    decision,
			DetectionMethod: model.DetectIsoForest,
			Explanation: fmt.Sprintf(
				"Unusual transaction pattern detected: %.0f spent on %s - %s",
				txn.Amount, txn.Category, snippet(txn.Description)),
		})
	}

	return model.AnomalyReport{
		Anomalies: anomalies,
		Summary:   summarize(anomalies, ""),
	}
}

// buildFeatureMatrix produces one row per transaction: amount, day-of-week
// (0=Monday), month, then a one-hot category block over the categories
// present. Transactions without a category get an all-zero block.
func buildFeatureMatrix(txns []model.Transaction) [][]float64 {
	catSet := make(map[string]struct{})
	for _, txn := range txns {
		if txn.Category != "" {
			catSet[txn.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(catSet))
	for cat := range catSet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	catIndex := make(map[string]int, len(categories))
	for i, cat := range categories {
		catIndex[cat] = i
	}

	width := 3 + len(categories)
	matrix := make([][]float64, len(txns))
	for i, txn := range txns {
		row := make([]float64, width)
		row[0] = txn.Amount
		row[1] = float64((int(txn.Date.Weekday()) + 6) % 7)
		row[2] = float64(txn.Date.Month())
		if idx, ok := catIndex[txn.Category]; ok {
			row[3+idx] = 1
		}
		matrix[i] = row
	}
	return matrix
}

// standardize scales each column to zero mean and unit variance in place.
// Constant columns are left centered at zero.
func standardize(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	n := float64(len(matrix))
	width := len(matrix[0])

	for col := 0; col < width; col++ {
		var sum float64
		for _, row := range matrix {
			sum += row[col]
		}
		m := sum / n

		var sq float64
		for _, row := range matrix {
			d := row[col] - m
			sq += d * d
		}
		std := math.Sqrt(sq / n)

		for _, row := range matrix {
			row[col] -= m
			if std > 0 {
				row[col] /= std
			}
		}
	}
}

// quantile returns the q-th quantile (0..1) with linear interpolation.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func snippet(s string) string {
	if len(s) <= explanationSnippet {
		return s
	}
	return s[:explanationSnippet] + "..."
}
