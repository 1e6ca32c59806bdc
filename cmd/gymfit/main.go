package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/FairHead/GymFit/internal/config"
	"github.com/FairHead/GymFit/internal/mcp"
	"github.com/FairHead/GymFit/internal/storage"
	gymsync "github.com/FairHead/GymFit/internal/sync"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "gymfit.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seedPath := flag.String("seed", "", "seed the exercise library from a YAML file")
	syncNow := flag.Bool("sync", false, "reconcile with the sync server and exit")
	serveMCP := flag.Bool("mcp", false, "serve MCP tools over stdio")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("gymfit starting", "version", Version)

	cfg, err := config.LoadDevice(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	// Schema failures are the only startup-fatal class; migrations resume
	// from the last recorded version, so rerunning the binary retries.
	if err := db.Migrate(ctx, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	if *seedPath != "" {
		exercises, err := storage.LoadSeedFile(*seedPath)
		if err != nil {
			log.Error("failed to load seed file", "error", err)
			os.Exit(1)
		}
		if err := db.SeedExercises(ctx, exercises); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("exercise library seeded", "count", len(exercises))
	}

	if *syncNow {
		if cfg.Sync.ServerURL == "" {
			log.Error("sync.server_url is not configured")
			os.Exit(1)
		}
		client := gymsync.NewClient(cfg.Sync.ServerURL, cfg.Sync.APIKey, cfg.Sync.UserID)
		engine := gymsync.New(db, client, client, cfg.Sync.AggregateTimeout, log)

		result, err := engine.SyncNow(ctx)
		if err != nil {
			log.Error("sync failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("synced: %d pushed, %d pulled, %d conflicts, %d errors\n",
			result.Pushed, result.Pulled, len(result.Conflicts), len(result.Errors))
		for _, c := range result.Conflicts {
			fmt.Printf("  conflict %s: %s (local %d, remote %d)\n",
				c.RoutineID, c.Resolution, c.LocalUpdatedAt, c.RemoteUpdatedAt)
		}
		for _, e := range result.Errors {
			fmt.Printf("  error %s: %v\n", e.RoutineID, e.Err)
		}
	}

	if *serveMCP {
		s := mcp.New(db, Version, log)
		if err := mcpserver.ServeStdio(s); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
	}
}
