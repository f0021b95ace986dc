package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/greybarrow/internal/logger"
)

// SpawnConfig represents the entities.yaml structure: location ID to the
// entities that start there.
type SpawnConfig struct {
	Locations map[string][]Entity `yaml:"locations"`
}

// LoadSpawnsFromYAML reads the spawn table from a YAML file.
func LoadSpawnsFromYAML(filename string) (*SpawnConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities file: %w", err)
	}

	var config SpawnConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse entities YAML: %w", err)
	}

	return &config, nil
}

// Populate spawns every configured entity into the registry.
func (c *SpawnConfig) Populate(r *Registry) {
	total := 0
	for locationID, defs := range c.Locations {
		batch := make([]*Entity, len(defs))
		for i := range defs {
			e := defs[i]
			batch[i] = &e
		}
		r.SpawnAll(locationID, batch)
		total += len(batch)
	}
	logger.Info("Populated entity registry", "entities", total, "locations", len(c.Locations))
}
