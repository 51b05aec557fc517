package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk YAML shape of a rule table.
type tableFile struct {
	Subcategories map[string]Subcategory `yaml:"subcategories"`
	Categories    []CategoryRule         `yaml:"categories"`
}

// LoadYAML reads a rule table from a YAML file.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("rules file %s contains no categories", path)
	}

	return NewTable(file.Categories, file.Subcategories), nil
}

// SaveYAML writes the rule table to a YAML file.
func (t *Table) SaveYAML(path string) error {
	file := tableFile{
		Categories:    t.categories,
		Subcategories: t.subcategories,
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}
	return nil
}
