package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/aksbond/Emergency-SOS/internal/audit"
	"github.com/aksbond/Emergency-SOS/internal/config"
	"github.com/aksbond/Emergency-SOS/internal/crypto"
	v1 "github.com/aksbond/Emergency-SOS/internal/handler/http/v1"
	"github.com/aksbond/Emergency-SOS/internal/ratelimit"
	"github.com/aksbond/Emergency-SOS/internal/repository"
	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/aksbond/Emergency-SOS/internal/session"
	"github.com/aksbond/Emergency-SOS/pkg/logger"
	"github.com/aksbond/Emergency-SOS/pkg/postgres"
	redisclient "github.com/aksbond/Emergency-SOS/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/aksbond/Emergency-SOS/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Emergency SOS API
// @version 1.0
// @description Emergency request intake and review console API.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.basic BasicAuth
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Кодек шифрования имен. Ключи задаются связкой, шифрует новейший
	codec, err := crypto.NewCodec(cfg.EncryptionKeys)
	if err != nil {
		log.Fatalf("Failed to initialize encryption codec: %v", err)
	}

	// Хранилище сессий с подписанными токенами
	sessionStore := session.NewRedisStore(redisClient, cfg.SessionSecret, cfg.SessionTTL)

	// Инициализация издателя событий аудита
	auditPublisher := audit.NewRedisPublisher(redisClient)

	// Инициализация и запуск воркера доставки аудита
	auditWorker := audit.NewWorker(redisClient, log, cfg)
	auditWorker.Start(ctx)

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(dbpool)
	taxonomyRepo := repository.NewTaxonomyRepository(dbpool, redisClient)
	requestRepo := repository.NewRequestRepository(dbpool)

	// Инициализация сервисов
	identityService := service.NewIdentityService(userRepo, log)
	taxonomyService := service.NewTaxonomyService(taxonomyRepo, log)
	requestService := service.NewRequestService(requestRepo, userRepo, taxonomyService, codec, auditPublisher, log, cfg)

	// Лимитер консоли оператора, скользящее окно по IP
	adminLimiter := ratelimit.NewSlidingWindowLimiter(cfg.AdminRateLimit, cfg.AdminRatePeriod)

	// Инициализация хэндлеров
	handler := v1.NewHandler(identityService, requestService, taxonomyService, sessionStore, adminLimiter, auditPublisher, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	handler.RegisterRoutes(router)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
