package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"saga-server/internal/auth"
	"saga-server/internal/catalog"
	"saga-server/internal/config"
	"saga-server/internal/handler"
	"saga-server/internal/logger"
	"saga-server/internal/messaging"
	"saga-server/internal/metrics"
	"saga-server/internal/narrative"
	"saga-server/internal/provider/image"
	"saga-server/internal/provider/text"
	"saga-server/internal/quota"
	"saga-server/internal/repository"
	"saga-server/internal/scene"
	"saga-server/internal/service"
	"saga-server/migrations"
	"saga-server/pkg/blobstore"
	"saga-server/pkg/migration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Configuration loaded", zap.String("env", cfg.AppEnv))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- External connections ---
	pgPool, err := setupPostgres(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, pgPool)
	if err := migrator.Up(); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zap.L().Info("Connected to Redis")

	mqConn, err := connectRabbitMQ(cfg.RabbitMQ.URL, log)
	if err != nil {
		zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mqConn.Close()
	zap.L().Info("Connected to RabbitMQ")

	events, err := messaging.NewRabbitMQPublisher(mqConn, cfg.RabbitMQ.EpisodeEventQueue, log)
	if err != nil {
		zap.L().Fatal("Failed to create episode event publisher", zap.Error(err))
	}

	store, err := blobstore.New(cfg.Blobstore.SavePath, cfg.Blobstore.PublicBaseURL)
	if err != nil {
		zap.L().Fatal("Failed to initialize blob store", zap.Error(err))
	}

	// --- Domain components ---
	cat, err := catalog.New()
	if err != nil {
		zap.L().Fatal("Failed to load template catalog", zap.Error(err))
	}
	zap.L().Info("Template catalog loaded", zap.Int("version", cat.Version()))

	composer, err := scene.NewComposer(log)
	if err != nil {
		zap.L().Fatal("Failed to load scene inventory", zap.Error(err))
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	textChain, err := text.NewChain(cfg.TextAI, recorder, log)
	if err != nil {
		zap.L().Fatal("Failed to build text provider chain", zap.Error(err))
	}
	imageChain, err := image.NewChain(cfg.ImageAI, store, recorder, log)
	if err != nil {
		zap.L().Fatal("Failed to build image provider chain", zap.Error(err))
	}

	// --- Dependency injection ---
	arcRepo := repository.NewPgArcRepository(pgPool, log)
	episodeRepo := repository.NewPgEpisodeRepository(pgPool, log)
	photoRepo := repository.NewPgPhotoRepository(pgPool, log)
	quotaTracker := quota.NewRedisTracker(redisClient, log)

	episodeSvc := service.NewEpisodeService(service.Deps{
		Arcs:     arcRepo,
		Episodes: episodeRepo,
		Photos:   photoRepo,
		Catalog:  cat,
		Builder:  narrative.NewBuilder(),
		Composer: composer,
		Texts:    textChain,
		Images:   imageChain,
		Fetcher:  store,
		Quota:    quotaTracker,
		Events:   events,
		Logger:   log,
	})
	templateSvc := service.NewTemplateService(cat, log)

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, log)
	if err != nil {
		zap.L().Fatal("Failed to create JWT verifier", zap.Error(err))
	}

	h := handler.NewHandler(episodeSvc, templateSvc, verifier, log)

	// --- HTTP server (gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.AppEnv == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(handler.GinZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	h.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // episode generation is slow
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("addr", cfg.ListenAddr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres initializes the connection pool with retry logic.
func setupPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxConns)

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		zap.L().Warn("PostgreSQL not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, fmt.Errorf("postgres unavailable after retries: %w", err)
}

// connectRabbitMQ dials the broker with retry logic.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Warn("RabbitMQ not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, fmt.Errorf("rabbitmq unavailable after retries: %w", err)
}
