package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platelens/backend/config"
	httpDelivery "github.com/platelens/backend/internal/delivery/http"
	"github.com/platelens/backend/internal/domain"
	"github.com/platelens/backend/internal/infrastructure/cache"
	"github.com/platelens/backend/internal/infrastructure/openfoodfacts"
	"github.com/platelens/backend/internal/infrastructure/persistence"
	"github.com/platelens/backend/internal/infrastructure/storage"
	"github.com/platelens/backend/internal/infrastructure/vision"
	"github.com/platelens/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Server.Environment == "development"

	log.Printf("Starting PlateLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	db, err := persistence.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	mealRepo := persistence.NewMealEntryRepository(db)
	progress := persistence.NewProgressWriter(db)

	productCache := cache.NewProductCache(cfg.Cache.TTL, cfg.Cache.NegativeTTL)
	defer productCache.Close()
	log.Printf("Cache TTL: %s (misses: %s)", cfg.Cache.TTL, cfg.Cache.NegativeTTL)

	offClient := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		Locale:            cfg.OpenFoodFacts.Locale,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	})
	if debug {
		offClient.SetDebug(true)
		log.Printf("Open Food Facts client debug mode enabled")
	}
	log.Printf("Open Food Facts: %s (locale: %s)", cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.Locale)

	visionModel := vision.NewOpenAIModel(vision.Config{
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		Model:     cfg.Vision.Model,
		Timeout:   cfg.Vision.Timeout,
		MaxTokens: cfg.Vision.MaxTokens,
	})
	log.Printf("Vision model: %s", cfg.Vision.Model)

	var imageStorage domain.ImageStorage
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Store(context.Background(), storage.Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Endpoint:        cfg.Storage.Endpoint,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			SignedURLTTL:    cfg.Storage.SignedURLTTL,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("Failed to configure image storage: %v", err)
		}
		imageStorage = store
		log.Printf("Image storage: s3://%s (%s)", cfg.Storage.Bucket, cfg.Storage.Region)
	} else {
		log.Printf("Image storage disabled, image_url will be null")
	}

	mealService := usecase.NewMealEntryService(mealRepo)
	enricher := usecase.NewEnricher(usecase.NewCompositionLookup(offClient, productCache))
	analysisService := usecase.NewAnalysisService(
		usecase.AnalysisDeps{
			Classifier: usecase.NewVisionClassifier(visionModel, debug),
			Fallback:   vision.NoopFallback{},
			Enricher:   enricher,
			Meals:      mealService,
			Storage:    imageStorage,
			Progress:   progress,
		},
		usecase.AnalysisServiceConfig{
			MaxImageBytes: cfg.Server.MaxImageBytes,
		},
	)

	handler := httpDelivery.NewHandler(analysisService, mealService)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Printf("Server exited")
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
