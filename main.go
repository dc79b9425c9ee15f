package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/lumina-gallery/lumina/auth"
	"github.com/lumina-gallery/lumina/config"
	"github.com/lumina-gallery/lumina/database"
	"github.com/lumina-gallery/lumina/gallery"
	handler "github.com/lumina-gallery/lumina/handlers"
	"github.com/lumina-gallery/lumina/logger"
	"github.com/lumina-gallery/lumina/models"
	"github.com/lumina-gallery/lumina/repository"
	"github.com/lumina-gallery/lumina/router"
	"github.com/lumina-gallery/lumina/storage"
	"github.com/lumina-gallery/lumina/vision"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	zlog, err := logger.New("lumina", os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cfg.GCSCredFile)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.MigrateModels(db, &models.Image{}, &models.ImageMetadata{}); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}

	ctx := context.Background()

	blobs, err := storage.NewGCS(ctx, cfg.GCSBucketName)
	if err != nil {
		zlog.Fatal("storage client failed", zap.Error(err))
	}
	defer blobs.Close()

	// No API key means enrichment runs in fallback-only mode: local colors,
	// generic tags. Uploads keep working either way.
	var provider gallery.VisionProvider
	if cfg.GeminiAPIKey != "" {
		gemini, err := vision.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			zlog.Warn("vision provider unavailable, enrichment degrades to local analysis", zap.Error(err))
		} else {
			provider = gemini
		}
	} else {
		zlog.Warn("GEMINI_API_KEY not set, enrichment degrades to local analysis")
	}

	store := repository.NewImageRepository(db)

	enricher := gallery.NewEnricher(store, provider, zlog)
	enricher.Start()
	defer enricher.Stop()

	svc := gallery.NewService(store, blobs, enricher, gallery.DetectContentType, zlog)

	verifier := auth.NewVerifier(cfg.JWTSecret, "lumina", "http://localhost:"+cfg.Port)

	app := fiber.New(fiber.Config{
		BodyLimit: 12 * gallery.MaxUploadSize, // bulk uploads carry several files
	})
	router.SetupRoutes(app, handler.New(svc, zlog), verifier)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		_ = app.Shutdown()
	}()

	zlog.Info("server listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
