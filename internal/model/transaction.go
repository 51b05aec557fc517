package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single financial transaction from any source.
// It is created at the ingestion boundary and consumed read-only by the
// classification and anomaly pipelines.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string  // Raw transaction description
	Category    string  // Ground-truth or previously assigned category, may be empty
	Amount      float64 // Positive for spend
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate checks that the transaction carries the fields the pipelines need.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	return nil
}
