package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SPENDSAGE_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path", in: "/tmp/db.sqlite", want: "/tmp/db.sqlite"},
		{name: "tilde prefix", in: "~/spendsage/db", want: filepath.Join(home, "spendsage/db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$SPENDSAGE_TEST_DIR/db", want: "/var/data/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestConfiguredPaths(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	// Unconfigured: database and model fall back to defaults under home,
	// rules and the CSV review queue stay empty.
	assert.Equal(t, filepath.Join(home, ".local/share/spendsage/spendsage.db"), DatabasePath())
	assert.Equal(t, filepath.Join(home, ".local/share/spendsage/model.json"), ModelPath())
	assert.Empty(t, RulesPath())
	assert.Empty(t, ReviewCSVPath())

	viper.Set("database.path", "/var/lib/spendsage/db.sqlite")
	viper.Set("model.path", "~/models/current.json")
	viper.Set("rules.path", "/etc/spendsage/rules.yaml")
	viper.Set("review.csv_path", "~/review_queue.csv")

	assert.Equal(t, "/var/lib/spendsage/db.sqlite", DatabasePath())
	assert.Equal(t, filepath.Join(home, "models/current.json"), ModelPath())
	assert.Equal(t, "/etc/spendsage/rules.yaml", RulesPath())
	assert.Equal(t, filepath.Join(home, "review_queue.csv"), ReviewCSVPath())
}
