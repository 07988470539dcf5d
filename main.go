package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	env := os.Getenv("GIN_MODE")
	if env == "" {
		os.Setenv("GIN_MODE", "debug")
	}

	if err := middleware.InitLogger(env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()

	if err := config.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDatabase()

	serverConfig := config.GetServerConfig()
	if serverConfig.RedisEnabled {
		if err := config.InitializeRedis(); err != nil {
			log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
			log.Println("Continuing with in-process carts and no caching...")
		}
		defer config.CloseRedis()
	} else {
		log.Println("ℹ️  Redis is disabled in configuration")
	}

	r := config.SetupRouter()
	routes.SetupRoutes(r)

	log.Printf("🚀 Server starting on port %s in %s mode", serverConfig.Port, serverConfig.Mode)
	if err := r.Run(":" + serverConfig.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
