package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/cache"
	"github.com/staynest/service-booking/internal/common/auth"
	"github.com/staynest/service-booking/internal/common/database"
	"github.com/staynest/service-booking/internal/common/health"
	"github.com/staynest/service-booking/internal/common/kafka"
	"github.com/staynest/service-booking/internal/common/logger"
	"github.com/staynest/service-booking/internal/common/middleware"
	"github.com/staynest/service-booking/internal/config"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
	bookingEvents "github.com/staynest/service-booking/internal/events"
	"github.com/staynest/service-booking/internal/handler"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/internal/repository/memory"
	"github.com/staynest/service-booking/internal/scheduler"
)

const serviceName = "service-booking"

// storage bundles the repositories for the configured driver.
type storage struct {
	db       *gorm.DB
	tx       bookingDomain.TxManager
	bookings bookingDomain.BookingRepository
	history  bookingDomain.HistoryRepository
	listings listingDomain.Repository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Listing lookups go through Redis when configured
	var lookup listingDomain.Lookup = listingDomain.NewRepositoryLookup(store.listings)
	var invalidator application.ListingCacheInvalidator
	if cfg.RedisConfig.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		listingCache := cache.NewListingCache(redisClient, lookup, cfg.RedisConfig.TTL, log)
		lookup = listingCache
		invalidator = listingCache
		log.Info("listing cache enabled", zap.Duration("ttl", cfg.RedisConfig.TTL))
	}

	// Initialize Kafka producer
	var publisher application.EventPublisher
	kafkaEnabled := len(cfg.KafkaConfig.Brokers) > 0
	if kafkaEnabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		store.tx,
		store.bookings,
		store.history,
		lookup,
		bookingDomain.NewNightlyPricingStrategy(),
		publisher,
		log,
	)
	listingService := application.NewListingService(store.listings, invalidator, log)

	var workers sync.WaitGroup

	// Stay events complete bookings as guests check out
	if kafkaEnabled {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		stayConsumer := bookingEvents.NewStayEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = stayConsumer.Close() }()

		workers.Add(1)
		go func() {
			defer workers.Done()
			log.Info("starting stay event consumer")
			if err := stayConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("stay event consumer error", zap.Error(err))
			}
		}()
	}

	// Scheduler completes stays the consumer missed
	completion := scheduler.New(bookingService, cfg.SchedulerInterval, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		completion.Start(ctx)
	}()

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(store.db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewListingHandler(listingService, bookingService.Availability()).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Stop the consumer and scheduler
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	workers.Wait()

	log.Info("service-booking stopped")
}

func openStorage(cfg *config.ServiceConfig, log *zap.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			tx:       mem,
			bookings: mem.Bookings(),
			history:  mem.History(),
			listings: mem.Listings(),
		}, nil
	}

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			return nil, err
		}
	}

	return &storage{
		db:       db,
		tx:       repository.NewGormTxManager(db),
		bookings: repository.NewGormBookingRepository(db),
		history:  repository.NewGormHistoryRepository(db),
		listings: repository.NewGormListingRepository(db),
	}, nil
}
