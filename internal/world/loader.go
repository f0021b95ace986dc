package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/greybarrow/internal/logger"
)

// WorldConfig represents the world.yaml structure.
type WorldConfig struct {
	Locations map[string]Location `yaml:"locations"`
}

// LoadFromYAML loads the location catalog from a YAML file.
func LoadFromYAML(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	var config WorldConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse world YAML: %w", err)
	}

	catalog := NewCatalog()
	for id, loc := range config.Locations {
		l := loc
		l.ID = id
		catalog.AddLocation(&l)
	}

	// The graph must be closed: every exit leads somewhere that exists
	for id, loc := range catalog.locations {
		for _, e := range loc.Exits {
			if !catalog.Has(e.To) {
				return nil, fmt.Errorf("location %s has exit to unknown location %s", id, e.To)
			}
		}
	}

	logger.Info("Loaded world", "path", filename, "locations", catalog.Count())
	return catalog, nil
}
