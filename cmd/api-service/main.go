package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-nexus/internal/config"
	delivery "news-nexus/internal/delivery/http"
	"news-nexus/internal/index"
	"news-nexus/internal/repository"
	"news-nexus/internal/service"
	"news-nexus/pkg/logger"
	"news-nexus/pkg/postgres"
	pkgredis "news-nexus/pkg/redis"
	"news-nexus/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the question answering API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize NLP capabilities
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini client", logger.ErrorField(err))
	}
	nlpRepo, err := repository.NewGeminiNLPRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize NLP repository", logger.ErrorField(err))
	}

	// Initialize the optional answer cache
	var answerCache *pkgredis.Client
	if cfg.Redis.Enabled {
		redisCfg := pkgredis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		answerCache, err = pkgredis.NewClient(redisCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer answerCache.Close()
	}

	// Build the retrieval index once from the enriched corpus. The
	// index is read-only for the process lifetime; articles enriched
	// after startup become retrievable on the next restart.
	articleRepo := repository.NewArticleRepository(db.DB)
	corpus, err := articleRepo.FindAllWithAnalysis(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load corpus", logger.ErrorField(err))
	}
	retrievalIndex := index.Build(corpus)
	appLogger.Info("Retrieval index ready",
		logger.IntField("articles", len(corpus)),
		logger.IntField("retrievable", retrievalIndex.Size()),
	)

	ragSvc := service.NewRAGService(cfg, retrievalIndex, nlpRepo, answerCache, appLogger)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	askHandler := delivery.NewAskHandler(ragSvc, appLogger)
	askHandler.RegisterRoutes(e.Group(""))

	utils.GoSafe(func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start HTTP server", logger.ErrorField(err))
		}
	})

	appLogger.Info("API service started. Waiting for requests...")
	<-ctx.Done()

	appLogger.Info("Shutting down API service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down HTTP server", logger.ErrorField(err))
	}
	appLogger.Info("API service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
