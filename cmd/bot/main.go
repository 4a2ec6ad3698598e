package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-campaign/internal/bot"
	"promo-campaign/internal/handlers"
	"promo-campaign/internal/repository"
	"promo-campaign/internal/service"
	"promo-campaign/internal/session"
	"promo-campaign/internal/transport"
	"promo-campaign/pkg/config"
	"promo-campaign/pkg/database"
	"promo-campaign/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New("promo-campaign")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Storage backend
	var (
		participants repository.ParticipantRepository
		codes        repository.CodeRepository
	)
	switch cfg.StorageBackend {
	case "memory":
		logger.Warn("using in-memory storage, state will not survive restarts")
		participants = repository.NewMemoryParticipantRepository()
		codes = repository.NewMemoryCodeRepository()
	default:
		mongoDB, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := mongoDB.Disconnect(context.Background()); err != nil {
				logger.Error("error disconnecting from MongoDB", zap.Error(err))
			}
		}()
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

		participants = repository.NewParticipantRepository(mongoDB.Database)
		codes = repository.NewCodeRepository(mongoDB.Database)
	}

	// Session store
	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURI,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
		logger.Info("using Redis session store")
	default:
		sessions = session.NewMemoryStore()
	}

	if cfg.TransportURL == "" {
		logger.Fatal("TRANSPORT_URL environment variable is required")
	}
	if cfg.AdminToken == "" {
		logger.Fatal("ADMIN_TOKEN environment variable is required")
	}
	sender := transport.NewHTTPSender(cfg.TransportURL)

	// Services and the state machine
	redemption := service.NewRedemption(participants, codes, logger)
	broadcast := service.NewBroadcast(participants, sender, cfg.BroadcastPace, logger)
	dispatcher := bot.NewDispatcher(sessions, participants, redemption, broadcast, sender, cfg.OperatorID, logger)

	updates := make(chan transport.Update, 256)
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go dispatcher.Run(runCtx, updates)

	// HTTP surface: webhook, health, metrics, admin
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(redemption, codes, updates, cfg.AdminToken)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
