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

	"github.com/Dias221467/Wishlist_Manager/internal/blob"
	"github.com/Dias221467/Wishlist_Manager/internal/config"
	"github.com/Dias221467/Wishlist_Manager/internal/database"
	"github.com/Dias221467/Wishlist_Manager/internal/handlers"
	"github.com/Dias221467/Wishlist_Manager/internal/jobs"
	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/repository"
	"github.com/Dias221467/Wishlist_Manager/internal/scheduler"
	"github.com/Dias221467/Wishlist_Manager/internal/services"
	"github.com/Dias221467/Wishlist_Manager/pkg/email"
	"github.com/Dias221467/Wishlist_Manager/pkg/logger"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration from .env file and environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	clock := lifecycle.SystemClock{Location: loc}

	// Connect to MongoDB; it holds the wishes or only their history
	var db *mongo.Database
	if cfg.MongoURI != "" {
		db, err = database.ConnectDB(cfg)
		if err != nil {
			log.Fatalf("Database connection error: %v", err)
		}
	}

	// --- Record store ---
	var store repository.RecordStore
	switch cfg.RecordStore {
	case config.StoreMongo:
		store = repository.NewWishRepository(db)
	default:
		store = repository.NewAirtableStore(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableTableName)
	}
	logger.Log.WithField("store", cfg.RecordStore).Info("Record store selected")

	// --- Notifications ---
	sender := &email.Sender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPSender,
	}
	var mailer services.Mailer
	if sender.Enabled() {
		mailer = sender
	} else {
		logger.Log.Info("SMTP not configured, notifications disabled")
	}
	notifier := services.NewNotificationService(mailer, cfg.MailAddresses(), cfg.AppURL)

	// --- Services ---
	wishService := services.NewWishService(store, clock, notifier)
	if db != nil {
		wishService.WithActivity(services.NewActivityService(repository.NewActivityRepository(db)))
	}

	// --- Image staging ---
	var (
		uploadHandler *handlers.UploadHandler
		cleanup       handlers.StagedCleanup
	)
	if cfg.BlobStorageEnabled() {
		minioClient, err := database.ConnectMinio(cfg)
		if err != nil {
			log.Fatalf("MinIO connection error: %v", err)
		}
		stager := blob.NewStager(minioClient, cfg.MinioBucket, cfg.MinioBaseURL())
		uploadHandler = handlers.NewUploadHandler(stager)
		// Only Airtable copies attachments; a Mongo record keeps pointing at the staged object.
		if cfg.RecordStore == config.StoreAirtable {
			cleanup = stager
		}
	} else {
		logger.Log.Info("MINIO_ENDPOINT not set, image uploads disabled")
	}

	// --- Handlers ---
	wishHandler := handlers.NewWishHandler(wishService, clock, cleanup, cfg.BlobCleanupDelay)
	router := handlers.NewRouter(wishHandler, uploadHandler)

	// --- Background sweep ---
	if cfg.SweepEnabled() {
		redisClient, err := database.ConnectRedis(cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, sweeping without a lock")
		}
		sweeper := jobs.NewSweeper(wishService, redisClient)
		c, err := scheduler.StartSweepCron(cfg.SweepSchedule, sweeper)
		if err != nil {
			log.Fatalf("Invalid SWEEP_SCHEDULE: %v", err)
		}
		defer c.Stop()
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}
