package main

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/franckalain/nutritrack/internal/config"
	"github.com/franckalain/nutritrack/internal/database"
	"github.com/franckalain/nutritrack/internal/ml"
	"github.com/franckalain/nutritrack/internal/server"
)

func main() {
	config.LoadEnv()

	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	live := config.NewLive(cfg)

	watcher, err := config.NewWatcher(*configPath, live)
	if err != nil {
		log.Printf("Config reload disabled: %v", err)
	} else {
		defer watcher.Close()
		go watcher.Watch()
	}

	// Initialize database
	db, err := database.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize ML service
	model, err := ml.NewModel(cfg.ML.Type, cfg.ML.ConfigPath)
	if err != nil {
		log.Fatal("Failed to create ML model:", err)
	}

	if err := model.Load(context.Background()); err != nil {
		log.Fatal("Failed to load ML model:", err)
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}
	log.Printf("Using %s model %s", cfg.ML.Type, model.Name())

	// Initialize and start server
	srv := server.New(db, model, live)
	if err := srv.Start(cfg.Server.Port, cfg.Server.StaticDir); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
