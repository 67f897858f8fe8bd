package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"ocrtool/cmd"
	"ocrtool/internal/config"
	"ocrtool/internal/logger"
)

func main() {
	// Load environment variables; a missing .env file is normal
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration; an invalid engine name is reported again as a
	// failure record when the engine is opened
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Printf("Warning: Invalid logging configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Str("engine", cfg.Engine).Msg("Starting ocrtool")

	cmd.SetConfig(cfg)
	cmd.Execute()

	os.Exit(0)
}
