package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spendsage/spendsage/internal/model"
)

const reasonSeparator = "; "

// Log appends one review entry. It satisfies the classification engine's
// review sink.
func (s *SQLiteStorage) Log(ctx context.Context, entry model.ReviewEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_queue (id, logged_at, description, predicted_category, method, confidence, amount, reasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.LoggedAt,
		entry.Description,
		entry.PredictedCategory,
		string(entry.Method),
		entry.Confidence,
		entry.Amount,
		strings.Join(entry.Reasons, reasonSeparator),
	)
	if err != nil {
		return fmt.Errorf("failed to save review entry: %w", err)
	}
	return nil
}

// PendingReviews returns unresolved review entries, oldest first.
func (s *SQLiteStorage) PendingReviews(ctx context.Context) ([]model.ReviewEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, logged_at, description, predicted_category, method, confidence, amount, reasons
		FROM review_queue
		WHERE resolved_at IS NULL
		ORDER BY logged_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query review queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.ReviewEntry
	for rows.Next() {
		var entry model.ReviewEntry
		var method, reasons string
		if err := rows.Scan(&entry.ID, &entry.LoggedAt, &entry.Description,
			&entry.PredictedCategory, &method, &entry.Confidence, &entry.Amount, &reasons); err != nil {
			return nil, fmt.Errorf("failed to scan review entry: %w", err)
		}
		entry.Method = model.Method(method)
		if reasons != "" {
			entry.Reasons = strings.Split(reasons, reasonSeparator)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ResolveReview records a human correction for one review entry.
func (s *SQLiteStorage) ResolveReview(ctx context.Context, id, category string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE review_queue
		SET corrected_category = ?, resolved_at = ?
		WHERE id = ? AND resolved_at IS NULL`,
		category, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve review entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no unresolved review entry with id %s", id)
	}
	return nil
}

// ResolvedCorrections returns reviewed descriptions with their corrected
// categories, as extra labeled samples for retraining.
func (s *SQLiteStorage) ResolvedCorrections(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, logged_at, description, corrected_category, amount
		FROM review_queue
		WHERE resolved_at IS NOT NULL AND corrected_category IS NOT NULL
		ORDER BY resolved_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var category sql.NullString
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Description, &category, &txn.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		txn.Category = category.String
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
