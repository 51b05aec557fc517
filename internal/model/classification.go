// Package model defines the core domain models used throughout the application.
package model

import "time"

// Method indicates which pipeline stage produced a classification.
type Method string

// Classification method constants.
const (
	MethodRule    Method = "rule-based"
	MethodFuzzy   Method = "fuzzy"
	MethodML      Method = "ml"
	MethodDefault Method = "default"
)

// ClassificationResult is the outcome of classifying one description.
// Confidence reflects the certainty model of the stage that resolved it:
// rule score ratio, fuzzy similarity/100, classifier posterior, or a fixed
// 0.5 for the default fallback.
type ClassificationResult struct {
	Category    string
	Subcategory string
	Method      Method
	Reasons     []string
	Confidence  float64
}

// BatchResult pairs a transaction with its classification. Correct is set
// only when the transaction carried a ground-truth category.
type BatchResult struct {
	Transaction Transaction
	Result      ClassificationResult
	Correct     *bool
}

// TrainingMetrics summarizes a training run.
type TrainingMetrics struct {
	Accuracy     float64
	TrainSamples int
	TestSamples  int
}

// ReviewEntry is an append-only record of a low-confidence or fallback
// prediction, written for human review and later retraining. The core never
// reads these back.
type ReviewEntry struct {
	LoggedAt          time.Time
	ID                string
	Description       string
	PredictedCategory string
	Method            Method
	Reasons           []string
	Amount            float64
	Confidence        float64
}

// CategorySummary aggregates classified spending for one category.
type CategorySummary struct {
	TotalSpent       float64
	AvgAmount        float64
	Percentage       float64
	TransactionCount int
}
