// Package config loads server-wide configuration from YAML.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	Listen    ListenConfig    `yaml:"listen"`
	Database  DatabaseConfig  `yaml:"database"`
	Combat    CombatConfig    `yaml:"combat"`
	World     WorldConfig     `yaml:"world"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// ListenConfig holds the HTTP listen settings.
type ListenConfig struct {
	// Addr is the host:port the HTTP server binds to.
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file (sqlite driver only).
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string (postgres driver only).
	DSN string `yaml:"dsn"`
}

// CombatConfig holds the fixed combat tuning values.
type CombatConfig struct {
	// PlayerDamage is dealt by a player per attack, PvE and PvP alike.
	PlayerDamage int `yaml:"player_damage"`

	// MonsterRetaliation is dealt back by a surviving monster.
	MonsterRetaliation int `yaml:"monster_retaliation"`

	// RespawnProtectionSeconds is how long a defeated player cannot be
	// attacked after respawning.
	RespawnProtectionSeconds int `yaml:"respawn_protection_seconds"`

	// AttackCooldownSeconds is the per-target delay between PvP attacks
	// by the same attacker.
	AttackCooldownSeconds int `yaml:"attack_cooldown_seconds"`

	// RespawnLocation is where defeated players wake up.
	RespawnLocation string `yaml:"respawn_location"`
}

// WorldConfig holds world-evolution settings.
type WorldConfig struct {
	// RuleInterval is the number of turns between world rule evaluations.
	RuleInterval int64 `yaml:"rule_interval"`

	// StartingLocation is where new players are created.
	StartingLocation string `yaml:"starting_location"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns a ServerConfig with the standard game tuning.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Listen: ListenConfig{
			Addr: ":4010",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/greybarrow.db",
		},
		Combat: CombatConfig{
			PlayerDamage:             3,
			MonsterRetaliation:       2,
			RespawnProtectionSeconds: 300,
			AttackCooldownSeconds:    30,
			RespawnLocation:          "town_square",
		},
		World: WorldConfig{
			RuleInterval:     5,
			StartingLocation: "town_square",
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
		},
	}
}

// LoadConfig loads server configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// An empty AllowedOrigins list enforces same-origin policy.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		if allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
