package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollowpine/greybarrow/internal/config"
	"github.com/hollowpine/greybarrow/internal/database"
	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/game"
	"github.com/hollowpine/greybarrow/internal/item"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/quest"
	"github.com/hollowpine/greybarrow/internal/rules"
	"github.com/hollowpine/greybarrow/internal/server"
	"github.com/hollowpine/greybarrow/internal/world"
)

func main() {
	configFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	worldFile := flag.String("world", "data/world.yaml", "Path to world YAML file")
	entitiesFile := flag.String("entities", "data/entities.yaml", "Path to entity spawns YAML file")
	itemsFile := flag.String("items", "data/items.yaml", "Path to items YAML file")
	questsFile := flag.String("quests", "data/quests.yaml", "Path to quests YAML file")
	factionsFile := flag.String("factions", "data/factions.yaml", "Path to factions YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting Greybarrow server")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}
	if *addr != "" {
		cfg.Listen.Addr = *addr
	}

	worldCatalog, err := world.LoadFromYAML(*worldFile)
	if err != nil {
		log.Fatalf("Failed to load world: %v", err)
	}
	logger.Info("World loaded", "locations", worldCatalog.Count())

	if !worldCatalog.Has(cfg.World.StartingLocation) {
		log.Fatalf("Starting location %q not in world", cfg.World.StartingLocation)
	}

	items, err := item.LoadFromYAML(*itemsFile)
	if err != nil {
		log.Fatalf("Failed to load items: %v", err)
	}
	logger.Info("Items loaded", "count", items.Count())

	factions, err := faction.LoadFromYAML(*factionsFile)
	if err != nil {
		log.Fatalf("Failed to load factions: %v", err)
	}
	logger.Info("Factions loaded", "count", factions.Count())

	quests := quest.NewRegistry()
	if err := quests.LoadFromYAML(*questsFile); err != nil {
		log.Fatalf("Failed to load quests: %v", err)
	}
	logger.Info("Quests loaded", "count", quests.Count())

	spawns, err := entity.LoadSpawnsFromYAML(*entitiesFile)
	if err != nil {
		log.Fatalf("Failed to load entity spawns: %v", err)
	}
	entities := entity.NewRegistry()
	spawns.Populate(entities)

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ruleEngine := rules.NewEngine(db, entities, spawns.Locations["forest"])
	engine := game.NewEngine(cfg, db, worldCatalog, items, factions, quests, entities, ruleEngine)

	srv := server.New(cfg, engine)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	select {
	case err := <-errs:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}

	logger.Info("Server stopped")
}

// openDatabase picks the storage backend from config.
func openDatabase(cfg *config.ServerConfig) (*database.Database, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		return database.Open(cfg.Database.Path)
	case "postgres":
		return database.OpenPostgres(cfg.Database.DSN)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
