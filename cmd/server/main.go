package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/config"
	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/service"
	"github.com/raxhvl/genesix/pkgs/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The API logs JSON for ingestion; the CLI keeps the text formatter.
	log.SetFormatter(&log.JSONFormatter{})

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load challenge catalog: %v", err)
	}

	settings := config.SettingsObj

	presigner, err := storage.NewPresigner(
		settings.MinioEndpoint,
		settings.MinioAccessKey,
		settings.MinioSecretKey,
		settings.MinioBucket,
		settings.MinioUseSSL,
		settings.SignedURLLifetime,
	)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	server := service.NewServer(presigner, cat, settings)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", settings.APIHost, settings.APIPort),
		Handler: server.Router(),
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("🚀 Genesix API starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}

	log.Info("Server stopped")
}
