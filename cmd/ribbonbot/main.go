package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/ribbonbot/core/cmd"
	"github.com/m3rciful/ribbonbot/internal/app"
)

func main() {
	// Missing .env is fine; real deployments pass env directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("ribbonbot: %v", err)
	}
}
