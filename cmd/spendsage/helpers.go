// Package main contains the spendsage CLI commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/config"
	"github.com/spendsage/spendsage/internal/engine"
	"github.com/spendsage/spendsage/internal/rules"
	"github.com/spendsage/spendsage/internal/storage"
)

// openDatabase opens and migrates the configured SQLite database. Callers
// own closing it.
func openDatabase(ctx context.Context) (*storage.SQLiteStorage, error) {
	db, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func closeDatabase(db *storage.SQLiteStorage) {
	if err := db.Close(); err != nil {
		common.LogError(err, "Failed to close database", nil)
	}
}

// loadRuleTable returns the configured rule table, falling back to the
// built-in defaults when no rules file is configured.
func loadRuleTable() (*rules.Table, error) {
	path := config.RulesPath()
	if path == "" {
		return rules.Default(), nil
	}

	table, err := rules.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return table, nil
}

// newEngine wires the classification engine with the configured review sink.
// A SQLite database sink is used unless a CSV review path is configured.
func newEngine(db *storage.SQLiteStorage) (*engine.Engine, error) {
	table, err := loadRuleTable()
	if err != nil {
		return nil, err
	}

	var sink engine.ReviewSink = db
	if csvPath := config.ReviewCSVPath(); csvPath != "" {
		sink = storage.NewCSVReviewSink(csvPath)
	}

	eng := engine.New(table, sink)

	if modelPath := config.ModelPath(); modelPath != "" {
		if _, err := os.Stat(modelPath); err == nil {
			if err := eng.LoadModel(modelPath); err != nil {
				return nil, fmt.Errorf("failed to load model: %w", err)
			}
		}
	}

	return eng, nil
}
