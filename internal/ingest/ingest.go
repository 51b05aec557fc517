// Package ingest loads transactions from CSV files. Rows that cannot be
// parsed are skipped and counted rather than failing the whole file.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/spendsage/spendsage/internal/model"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
	time.RFC3339,
}

type csvTransaction struct {
	ID          string `csv:"id"`
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
}

// LoadCSV reads transactions from the CSV file at path. It returns the
// parsed transactions and the number of rows that were rejected. Only
// file-level problems produce an error.
func LoadCSV(path string) ([]model.Transaction, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open transactions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rows []*csvTransaction
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to parse transactions file: %w", err)
	}

	txns := make([]model.Transaction, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		txn, err := convertRow(row)
		if err != nil {
			skipped++
			slog.Warn("Skipping unparseable transaction row",
				"row", i+2, // header is row 1
				"error", err)
			continue
		}
		txns = append(txns, txn)
	}

	return txns, skipped, nil
}

func convertRow(row *csvTransaction) (model.Transaction, error) {
	desc := strings.TrimSpace(row.Description)
	if desc == "" {
		return model.Transaction{}, fmt.Errorf("empty description")
	}

	date, err := parseDate(strings.TrimSpace(row.Date))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseAmount(row.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		Date:        date,
		ID:          strings.TrimSpace(row.ID),
		Description: desc,
		Category:    strings.TrimSpace(row.Category),
		Amount:      amount,
	}
	if txn.ID == "" {
		txn.ID = txn.GenerateHash()[:16]
	}
	return txn, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "₹")
	cleaned = strings.TrimPrefix(cleaned, "$")

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
