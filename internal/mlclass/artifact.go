package mlclass

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jbrukh/bayesian"

	"github.com/spendsage/spendsage/internal/common"
	"github.com/spendsage/spendsage/internal/rules"
)

const artifactVersion = 1

// artifact is the on-disk shape of a trained model. The fitted classifier,
// the rule table and the subcategory map travel together so a loaded model
// is self-consistent with the rules active when it was saved.
type artifact struct {
	ClassTokens   map[string]map[string]int     `json:"class_tokens"`
	Subcategories map[string]rules.Subcategory  `json:"subcategories"`
	Labels        []string                      `json:"labels"`
	Vocab         []string                      `json:"vocab"`
	Categories    []rules.CategoryRule          `json:"categories"`
	Classifier    []byte                        `json:"classifier"`
	Version       int                           `json:"version"`
}

// SaveArtifact persists the model and its rule table to path as one unit.
// The write goes to a temp file in the target directory and is renamed into
// place, so a failed save never leaves a truncated artifact behind.
func SaveArtifact(path string, m *Model, table *rules.Table) error {
	if m == nil {
		return common.ErrNotTrained
	}

	var buf bytes.Buffer
	if err := m.classifier.WriteGob(&buf); err != nil {
		return fmt.Errorf("failed to serialize classifier: %w", err)
	}

	vocab := make([]string, 0, len(m.vocab))
	for tok := range m.vocab {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	art := artifact{
		Version:       artifactVersion,
		Labels:        m.labels,
		Vocab:         vocab,
		ClassTokens:   m.classTokens,
		Categories:    table.Categories(),
		Subcategories: table.Subcategories(),
		Classifier:    buf.Bytes(),
	}

	data, err := json.Marshal(&art)
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to flush model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close model artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to install model artifact: %w", err)
	}
	return nil
}

// LoadArtifact restores a model and its rule table from path. Failures are
// surfaced loudly rather than degrading to an untrained state.
func LoadArtifact(path string) (*Model, *rules.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrModelCorrupted, err)
	}
	if art.Version != artifactVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", common.ErrModelCorrupted, art.Version)
	}
	if len(art.Labels) < 2 || len(art.Classifier) == 0 || len(art.Categories) == 0 {
		return nil, nil, fmt.Errorf("%w: missing fields", common.ErrModelCorrupted)
	}

	classifier, err := bayesian.NewClassifierFromReader(bytes.NewReader(art.Classifier))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrModelCorrupted, err)
	}

	vocab := make(map[string]struct{}, len(art.Vocab))
	for _, tok := range art.Vocab {
		vocab[tok] = struct{}{}
	}

	m := &Model{
		classifier:  classifier,
		labels:      art.Labels,
		vocab:       vocab,
		classTokens: art.ClassTokens,
	}
	table := rules.NewTable(art.Categories, art.Subcategories)

	return m, table, nil
}
