package faction

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/greybarrow/internal/logger"
)

// FactionsConfig represents the factions.yaml structure.
type FactionsConfig struct {
	Factions map[string]Faction `yaml:"factions"`
}

// LoadFromYAML loads the faction catalog from a YAML file.
func LoadFromYAML(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read factions file: %w", err)
	}

	var config FactionsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse factions YAML: %w", err)
	}

	// Stable order regardless of map iteration
	ids := make([]string, 0, len(config.Factions))
	for id := range config.Factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	catalog := NewCatalog()
	for _, id := range ids {
		f := config.Factions[id]
		f.ID = id
		catalog.Add(&f)
	}

	logger.Info("Loaded factions", "path", filename, "factions", catalog.Count())
	return catalog, nil
}
