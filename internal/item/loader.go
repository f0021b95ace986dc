package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/greybarrow/internal/logger"
)

// ItemsConfig represents the items.yaml structure.
type ItemsConfig struct {
	Items map[string]Item `yaml:"items"`
}

// LoadFromYAML loads the item catalog from a YAML file.
func LoadFromYAML(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}

	var config ItemsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse items YAML: %w", err)
	}

	catalog := NewCatalog()
	for id, it := range config.Items {
		i := it
		i.ID = id
		catalog.Add(&i)
	}

	logger.Info("Loaded items", "path", filename, "items", catalog.Count())
	return catalog, nil
}
