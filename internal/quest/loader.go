package quest

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hollowpine/greybarrow/internal/logger"
)

// QuestDefinition is the YAML shape of a single quest template.
type QuestDefinition struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	GiverNPC        string         `yaml:"giver_npc"`
	Objectives      []Objective    `yaml:"objectives"`
	Rewards         map[string]int `yaml:"rewards"`
	Repeatable      bool           `yaml:"repeatable"`
	Availability    []Condition    `yaml:"availability"`
	UnavailableText string         `yaml:"unavailable_text"`
}

// QuestsConfig represents the quests.yaml structure.
type QuestsConfig struct {
	Quests map[string]QuestDefinition `yaml:"quests"`
}

func (config *QuestsConfig) orderedIDs() []string {
	ids := make([]string, 0, len(config.Quests))
	for id := range config.Quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadQuestsFromYAML loads quest definitions from a YAML file.
func LoadQuestsFromYAML(filename string) (*QuestsConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read quests file: %w", err)
	}

	var config QuestsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse quests YAML: %w", err)
	}

	return &config, nil
}

// LoadFromYAML loads quests into the registry from a YAML file.
func (r *Registry) LoadFromYAML(filename string) error {
	config, err := LoadQuestsFromYAML(filename)
	if err != nil {
		return err
	}
	r.LoadFromConfig(config)
	logger.Info("Loaded quests", "path", filename, "quests", r.Count())
	return nil
}

// templateFromDefinition converts a YAML definition to a Template.
func templateFromDefinition(id string, def *QuestDefinition) *Template {
	rewards := def.Rewards
	if rewards == nil {
		rewards = map[string]int{}
	}

	return &Template{
		ID:              id,
		Name:            def.Name,
		Description:     def.Description,
		Objectives:      def.Objectives,
		Rewards:         rewards,
		GiverNPC:        def.GiverNPC,
		Repeatable:      def.Repeatable,
		Availability:    def.Availability,
		UnavailableText: def.UnavailableText,
	}
}
