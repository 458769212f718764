package quiz

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quizduel/internal/domain"
)

//go:embed categories.yaml
var defaultCategories []byte

// LoadCategories reads the category catalog from path, or the built-in catalog when path is empty.
func LoadCategories(path string) ([]domain.Category, error) {
	data := defaultCategories
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read categories file: %w", err)
		}
		data = content
	}
	return parseCategories(data)
}

func parseCategories(data []byte) ([]domain.Category, error) {
	var categories []domain.Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	for i, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}
