package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/spendsage/spendsage/internal/model"
)

// CSVReviewSink appends review entries to a flat CSV file. It suits the
// single-machine workflow where the review queue is opened in a spreadsheet.
type CSVReviewSink struct {
	path string
	mu   sync.Mutex
}

// NewCSVReviewSink creates a sink writing to path. The file is created on
// first log.
func NewCSVReviewSink(path string) *CSVReviewSink {
	return &CSVReviewSink{path: path}
}

type reviewRow struct {
	LoggedAt          string  `csv:"logged_at"`
	ID                string  `csv:"id"`
	Description       string  `csv:"description"`
	PredictedCategory string  `csv:"predicted_category"`
	Method            string  `csv:"method"`
	Confidence        float64 `csv:"confidence"`
	Amount            float64 `csv:"amount"`
	Reasons           string  `csv:"reasons"`
}

// Log appends one review entry, rewriting the file with the new row added.
func (s *CSVReviewSink) Log(_ context.Context, entry model.ReviewEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return err
	}

	rows = append(rows, &reviewRow{
		LoggedAt:          entry.LoggedAt.UTC().Format(time.RFC3339),
		ID:                entry.ID,
		Description:       entry.Description,
		PredictedCategory: entry.PredictedCategory,
		Method:            string(entry.Method),
		Confidence:        entry.Confidence,
		Amount:            entry.Amount,
		Reasons:           strings.Join(entry.Reasons, reasonSeparator),
	})

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create review file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write review file: %w", err)
	}
	return nil
}

// Entries returns all logged review entries.
func (s *CSVReviewSink) Entries() ([]model.ReviewEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}

	entries := make([]model.ReviewEntry, 0, len(rows))
	for _, row := range rows {
		loggedAt, err := time.Parse(time.RFC3339, row.LoggedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse review timestamp %q: %w", row.LoggedAt, err)
		}

		entry := model.ReviewEntry{
			LoggedAt:          loggedAt,
			ID:                row.ID,
			Description:       row.Description,
			PredictedCategory: row.PredictedCategory,
			Method:            model.Method(row.Method),
			Confidence:        row.Confidence,
			Amount:            row.Amount,
		}
		if row.Reasons != "" {
			entry.Reasons = strings.Split(row.Reasons, reasonSeparator)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *CSVReviewSink) readAll() ([]*reviewRow, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open review file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rows []*reviewRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read review file: %w", err)
	}
	return rows, nil
}
