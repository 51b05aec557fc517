package config

import "github.com/spf13/viper"

// Default file locations under the user's home directory.
const (
	defaultDatabasePath = "$HOME/.local/share/spendsage/spendsage.db"
	defaultModelPath    = "$HOME/.local/share/spendsage/model.json"
)

// DatabasePath returns the expanded SQLite database path from configuration,
// falling back to the default location.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = defaultDatabasePath
	}
	return ExpandPath(path)
}

// ModelPath returns the expanded model artifact path from configuration,
// falling back to the default location.
func ModelPath() string {
	path := viper.GetString("model.path")
	if path == "" {
		path = defaultModelPath
	}
	return ExpandPath(path)
}

// RulesPath returns the expanded rules file path. Empty means the built-in
// rule table is used.
func RulesPath() string {
	return ExpandPath(viper.GetString("rules.path"))
}

// ReviewCSVPath returns the expanded CSV review-queue path. Empty means the
// review queue lives in SQLite.
func ReviewCSVPath() string {
	return ExpandPath(viper.GetString("review.csv_path"))
}
