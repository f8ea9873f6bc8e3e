package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"medstore/internal/config"
	"medstore/internal/database"
	dbmigration "medstore/internal/database/migration"
	"medstore/internal/migration"
	"medstore/internal/objstore"
	"medstore/internal/otel"
	"medstore/internal/registry/postgres"
	"medstore/internal/storage"
)

// migrate re-homes the locally stored medical documents of the clinics given
// as arguments into the object store and re-points their registry records.
//
// Usage: migrate <clinic-id> [<clinic-id>...]
func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <clinic-id> [<clinic-id>...]\n", os.Args[0])
		return 2
	}
	clinicIDs := os.Args[1:]

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Printf("failed to initialize tracing: %v", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Printf("failed to connect to database: %v", err)
		return 1
	}
	defer db.Close()

	if err := dbmigration.EnsureMigrated(ctx, db); err != nil {
		log.Printf("failed to prepare schema: %v", err)
		return 1
	}

	client, err := objstore.New(cfg.ObjectStore)
	if err != nil {
		log.Printf("failed to initialize object storage: %v", err)
		return 1
	}

	docRegistry := postgres.NewDocumentPostgres(db)
	local := storage.NewLocalProvider(cfg.Storage.UploadDir)
	remote := storage.NewObjectStoreProvider(client, time.Duration(cfg.Storage.PresignTTLSec)*time.Second)
	migrator := migration.NewMigrator(docRegistry, local, remote)

	enc := json.NewEncoder(os.Stdout)
	exitCode := 0
	for _, clinicID := range clinicIDs {
		res, err := migrator.MigrateClinic(ctx, clinicID)
		if err != nil {
			log.Printf("migration aborted for clinic %s: %v", clinicID, err)
			exitCode = 1
			continue
		}
		if err := enc.Encode(res); err != nil {
			log.Printf("failed to encode result for clinic %s: %v", clinicID, err)
		}
		if res.Failed > 0 {
			exitCode = 1
		}
	}
	return exitCode
}
