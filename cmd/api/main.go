package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/careers-proxy/internal/config"
	"github.com/justsurfingit/careers-proxy/internal/handlers"
	"github.com/justsurfingit/careers-proxy/internal/services"
)

func main() {
	// 1. Load Environment Variables (.env is optional outside local dev)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// 2. Configuration. A missing upstream token is fatal here, never ignored.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// 3. Initialize Core Services (Dependencies)
	careersService := services.NewCareersService(cfg)
	feedService := services.NewFeedService(cfg.Feed)

	// 4. Initialize Handlers & Router
	jobHandler := handlers.NewJobHandler(careersService, feedService)
	r := handlers.NewRouter(jobHandler)

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
