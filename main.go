package main

import (
	"log"

	"github.com/ngenohkevin/reeldeck/config"
	"github.com/ngenohkevin/reeldeck/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Check if in setup mode
	if cfg.SetupMode {
		log.Printf("⚠️  No API key configured - starting in SETUP MODE")
		log.Printf("📋 POST http://%s/setup/generate, then /setup/save, to configure the player", cfg.Addr())
		log.Printf("🔒 After setup, restart the player to enable authentication")
	}

	// Create and run server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
