package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spendsage/spendsage/internal/model"
)

// SaveResults persists a batch of classified transactions atomically. The
// transaction rows are upserted by hash, so re-running a classification over
// the same input does not duplicate them.
func (s *SQLiteStorage) SaveResults(ctx context.Context, results []model.BatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txnStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, hash, date, description, amount, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET category = excluded.category`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer func() { _ = txnStmt.Close() }()

	clsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO classifications (transaction_id, category, subcategory, method, confidence, reasons)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory,
			method = excluded.method,
			confidence = excluded.confidence,
			reasons = excluded.reasons,
			classified_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare classification insert: %w", err)
	}
	defer func() { _ = clsStmt.Close() }()

	for i := range results {
		txn := &results[i].Transaction
		res := &results[i].Result

		if _, err := txnStmt.ExecContext(ctx, txn.ID, txn.GenerateHash(),
			txn.Date, txn.Description, txn.Amount, res.Category); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}

		if _, err := clsStmt.ExecContext(ctx, txn.ID, res.Category, res.Subcategory,
			string(res.Method), res.Confidence, strings.Join(res.Reasons, reasonSeparator)); err != nil {
			return fmt.Errorf("failed to save classification for %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// ClassifiedTransactions returns all stored transactions that carry a
// category, usable as labeled training data.
func (s *SQLiteStorage) ClassifiedTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, category, amount
		FROM transactions
		WHERE category IS NOT NULL AND category != ''
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var category sql.NullString
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Description, &category, &txn.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Category = category.String
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
