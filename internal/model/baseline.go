package model

import "time"

// CategoryStats holds weekly spending statistics for one category within a
// user's baseline. StdWeekly is floored at 100 currency units so downstream
// z-scores never divide by zero.
type CategoryStats struct {
	MeanWeekly     float64
	StdWeekly      float64
	MedianWeekly   float64
	MaxWeekly      float64
	MinWeekly      float64
	AvgTransaction float64
	TotalSpent     float64
	Count          int
}

// Baseline is a user's historical spending reference, computed over a
// historical transaction window and keyed by user id. Recomputing replaces
// the prior baseline wholesale.
type Baseline struct {
	Start             time.Time
	End               time.Time
	UserID            string
	CategoryStats     map[string]CategoryStats
	DailyAvgSpending  [7]float64 // 0=Monday .. 6=Sunday
	MeanWeeklyTotal   float64
	StdWeeklyTotal    float64
	MedianWeeklyTotal float64
	Percentile75      float64
	Percentile90      float64
	WeekendRatio      float64 // weekend vs weekday average, 1.0 when either side has no history
	Transactions      int
}
