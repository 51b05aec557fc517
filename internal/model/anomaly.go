package model

import "time"

// Severity grades an anomaly.
type Severity string

// Severity constants.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// AnomalyKind distinguishes the detector family that produced an anomaly.
type AnomalyKind string

// Anomaly kind constants.
const (
	KindStatistical AnomalyKind = "statistical"
	KindML          AnomalyKind = "ml"
)

// AnomalyType names the spending pattern behind a statistical anomaly.
// ML-detected single-transaction anomalies carry no anomaly type.
type AnomalyType string

// Anomaly type constants.
const (
	TypeSpike      AnomalyType = "spike"
	TypeDrop       AnomalyType = "drop"
	TypeTotalSpike AnomalyType = "total_spending_spike"
	TypeTotalDrop  AnomalyType = "total_spending_drop"
	TypeNone       AnomalyType = ""
)

// DetectionMethod records the concrete test that fired.
type DetectionMethod string

// Detection method constants.
const (
	DetectZScore      DetectionMethod = "z_score"
	DetectTotalZScore DetectionMethod = "total_spending_z_score"
	DetectIsoForest   DetectionMethod = "isolation_forest"
)

// Anomaly is one flagged spending deviation. Statistical anomalies carry
// expected amount, z-score and percentage change; ML anomalies carry the
// per-transaction amount, date, description and anomaly score.
type Anomaly struct {
	Date            time.Time
	Kind            AnomalyKind
	Category        string
	AnomalyType     AnomalyType
	Severity        Severity
	Explanation     string
	Description     string
	DetectionMethod DetectionMethod
	CurrentAmount   float64
	ExpectedAmount  float64
	ZScore          float64
	AnomalyScore    float64
	PercentChange   float64
}

// ReportSummary aggregates an anomaly list.
type ReportSummary struct {
	Note               string
	CategoriesAffected []string
	TotalAnomalies     int
	HighSeverity       int
	MediumSeverity     int
}

// AnomalyReport is the output of one detector run.
type AnomalyReport struct {
	Anomalies []Anomaly
	Summary   ReportSummary
}

// Recommendation is a templated piece of advice derived from anomalies.
type Recommendation struct {
	Type     string
	Priority string
	Category string
	Message  string
	Action   string
}

// CategoryInsight describes spending behavior within one category.
type CategoryInsight struct {
	TotalSpent        float64
	AvgTransaction    float64
	MaxTransaction    float64
	SpendingFrequency float64 // share of all transactions, in percent
	TransactionCount  int
}

// TemporalPatterns captures day-of-week and monthly spending shape.
// Days are indexed 0=Monday through 6=Sunday; months 1 through 12.
type TemporalPatterns struct {
	DailyAverage  [7]float64
	MonthlyTotals [13]float64
	WeekendAvg    float64
	WeekdayAvg    float64
}

// SpendingInsights bundles descriptive statistics for a transaction set.
type SpendingInsights struct {
	CategoryAnalysis map[string]CategoryInsight
	Temporal         TemporalPatterns
}

// CombinedInsights summarizes all anomalies in a combined report.
type CombinedInsights struct {
	MostAnomalousCategory   string
	CategoriesWithAnomalies []string
	DetectionMethods        []string
	TotalAnomalies          int
	HighPriority            int
}

// CombinedReport composes statistical and ML detection with insights and
// recommendations for one user.
type CombinedReport struct {
	GeneratedAt     time.Time
	ID              string
	UserID          string
	Statistical     AnomalyReport
	Multivariate    AnomalyReport
	Insights        SpendingInsights
	Recommendations []Recommendation
	Combined        CombinedInsights
}
