package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sezerdalgic/podcastmafya/internal/blob"
	"github.com/sezerdalgic/podcastmafya/internal/config"
	"github.com/sezerdalgic/podcastmafya/internal/export"
	"github.com/sezerdalgic/podcastmafya/internal/gemini"
	"github.com/sezerdalgic/podcastmafya/internal/player"
	"github.com/sezerdalgic/podcastmafya/internal/resolver"
	"github.com/sezerdalgic/podcastmafya/internal/server"
	"github.com/sezerdalgic/podcastmafya/internal/showrunner"
	"github.com/sezerdalgic/podcastmafya/internal/store"
	"github.com/sezerdalgic/podcastmafya/internal/stream"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("podcastmafya starting up...")

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := store.Connect(connectCtx, cfg.MongoURL, cfg.MongoDB)
	connectCancel()
	if err != nil {
		log.Fatalf("mongodb not available: %v", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			log.Printf("mongodb close: %v", err)
		}
	}()

	if err := db.SeedIfEmpty(ctx); err != nil {
		log.Printf("seed: %v", err)
	}

	blobStore, err := blob.New(ctx, blob.Config{
		Endpoint:      cfg.MinioEndpoint,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		Bucket:        cfg.MinioBucket,
		UseSSL:        cfg.MinioUseSSL,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("object store not available: %v", err)
	}

	geminiClient := gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiVoiceModel)

	// Line audio pipeline: generate or fetch, then cache and promote
	res := resolver.New(geminiClient, blobStore, blobStore, db)

	engine := player.New(res, cfg.FallbackDelay)
	defer engine.Close()

	// Broadcaster: fan-out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, engine.Frames())

	webrtcHandler := stream.NewWebRTCHandler(broadcaster)
	httpStream := stream.NewHTTPHandler(broadcaster)

	runner := showrunner.New(geminiClient, db)
	exporter := export.New(res)

	api := server.New(db, runner, exporter, engine, blobStore, httpStream, webrtcHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on :%d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	log.Println("podcastmafya stopped")
}
