// Command api runs the shelfmark REST backend.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/shelfmark/internal/api"
	"github.com/skillsenselab/shelfmark/internal/auth"
	"github.com/skillsenselab/shelfmark/internal/book"
	"github.com/skillsenselab/shelfmark/internal/catalog"
	"github.com/skillsenselab/shelfmark/internal/config"
	"github.com/skillsenselab/shelfmark/internal/database"
	"github.com/skillsenselab/shelfmark/internal/logger"
	"github.com/skillsenselab/shelfmark/internal/model"
	"github.com/skillsenselab/shelfmark/internal/user"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.NewDefault("shelfmark").Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.New(&cfg.Logging, "shelfmark")
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			log.Fatal("Migration failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize token service", map[string]interface{}{
			"error": err.Error(),
		})
	}

	server := api.New(cfg.Server, log)
	api.RegisterRoutes(server.Engine(), api.Dependencies{
		DB:      db,
		Users:   user.NewRepository(db),
		Books:   book.NewRepository(db),
		Hasher:  auth.NewHasher(cfg.Auth),
		Tokens:  tokens,
		Catalog: catalog.NewClient(cfg.Catalog),
		Auth:    cfg.Auth,
		Log:     log,
	})

	if err := server.Start(ctx); err != nil {
		log.Fatal("Failed to start server", map[string]interface{}{
			"error": err.Error(),
		})
	}

	<-ctx.Done()

	if err := server.Stop(context.Background()); err != nil {
		log.Error("Shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
