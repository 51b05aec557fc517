package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTestCSV(t, `id,date,description,amount,category
txn-1,2024-03-01,UPI/zomato/order,450.50,Food
txn-2,2024-03-02,amazon purchase,"1,200",
`)

	txns, skipped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, txns, 2)

	assert.Equal(t, "txn-1", txns[0].ID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, "UPI/zomato/order", txns[0].Description)
	assert.InDelta(t, 450.50, txns[0].Amount, 0.001)
	assert.Equal(t, "Food", txns[0].Category)

	// Thousands separator is stripped, category may be empty.
	assert.InDelta(t, 1200, txns[1].Amount, 0.001)
	assert.Empty(t, txns[1].Category)
}

func TestLoadCSVSkipsBadRows(t *testing.T) {
	path := writeTestCSV(t, `id,date,description,amount,category
txn-1,2024-03-01,good row,100,Food
txn-2,not-a-date,bad date,100,Food
txn-3,2024-03-03,,100,Food
txn-4,2024-03-04,bad amount,abc,Food
txn-5,2024-03-05,another good row,200,Travel
`)

	txns, skipped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, txns, 2)
	assert.Equal(t, "txn-1", txns[0].ID)
	assert.Equal(t, "txn-5", txns[1].ID)
}

func TestLoadCSVGeneratesMissingIDs(t *testing.T) {
	path := writeTestCSV(t, `id,date,description,amount,category
,2024-03-01,no id here,100,
`)

	txns, skipped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, txns, 1)
	assert.Len(t, txns[0].ID, 16)
}

func TestLoadCSVAlternateDateLayouts(t *testing.T) {
	path := writeTestCSV(t, `id,date,description,amount,category
txn-1,15/03/2024,slash layout,100,
`)

	txns, skipped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := writeTestCSV(t, "")

	txns, skipped, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, txns)
}
