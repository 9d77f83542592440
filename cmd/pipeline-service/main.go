package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"news-nexus/internal/config"
	"news-nexus/internal/repository"
	"news-nexus/internal/service"
	"news-nexus/pkg/logger"
	"news-nexus/pkg/postgres"
	"news-nexus/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

type pipeline struct {
	cfg        *config.Config
	logger     *logger.Logger
	ingestSvc  service.IngestionService
	enrichSvc  service.EnrichmentService
	notifier   telegram.Notifier
	closeFuncs []func()
}

func (p *pipeline) close() {
	for _, fn := range p.closeFuncs {
		fn()
	}
}

func buildPipeline() (*pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	p := &pipeline{cfg: cfg, logger: appLogger}
	p.closeFuncs = append(p.closeFuncs, func() { _ = appLogger.Sync() })

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
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		p.closeFuncs = append(p.closeFuncs, func() { _ = sqlDB.Close() })
	}

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	nlpRepo, err := repository.NewGeminiNLPRepository(cfg, appLogger, genAiClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NLP repository: %w", err)
	}

	articleRepo := repository.NewArticleRepository(db.DB)

	sources := []repository.NewsSourceRepository{
		repository.NewNewsAPIRepository(cfg, appLogger),
	}
	if len(cfg.RSS.Feeds) > 0 {
		sources = append(sources, repository.NewRSSRepository(cfg, appLogger))
	}

	p.ingestSvc = service.NewIngestionService(articleRepo, sources, appLogger)
	p.enrichSvc = service.NewEnrichmentService(cfg, articleRepo, nlpRepo, appLogger)

	if cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
		p.notifier = notifier
	}

	return p, nil
}

func (p *pipeline) runIngest(ctx context.Context) error {
	report, err := p.ingestSvc.Run(ctx, p.cfg.NewsAPI.Query)
	if err != nil {
		return err
	}
	p.logger.Info("Ingest finished",
		logger.IntField("added", report.Added),
		logger.IntField("skipped", report.Skipped),
	)
	return nil
}

func (p *pipeline) runEnrich(ctx context.Context) error {
	report, err := p.enrichSvc.Enrich(ctx)
	if err != nil {
		return err
	}
	if p.notifier != nil {
		msg := fmt.Sprintf("*News pipeline run complete*\nAnalyzed: %d\nSummaries: %d generated, %d skipped, %d failed",
			report.ArticlesAnalyzed, report.SummariesGenerated, report.SummariesSkipped, report.SummariesFailed)
		if err := p.notifier.SendMessage(msg); err != nil {
			p.logger.Error("Failed to send Telegram notification", logger.ErrorField(err))
		}
	}
	return nil
}

func (p *pipeline) runAll(ctx context.Context) error {
	if err := p.runIngest(ctx); err != nil {
		// An unreachable news source aborts ingestion but not
		// enrichment of what is already stored.
		p.logger.Error("Ingest failed", logger.ErrorField(err))
	}
	return p.runEnrich(ctx)
}

func runOnce(fn func(*pipeline, context.Context) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline()
		if err != nil {
			log.Fatalf("Failed to initialize pipeline: %v", err)
		}
		defer p.close()

		if err := fn(p, ctx); err != nil {
			p.logger.Fatal("Pipeline run failed", logger.ErrorField(err))
		}
	}
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch news articles into the corpus store",
	Run:   runOnce(func(p *pipeline, ctx context.Context) error { return p.runIngest(ctx) }),
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich stored articles with entities, sentiment and summaries",
	Run:   runOnce(func(p *pipeline, ctx context.Context) error { return p.runEnrich(ctx) }),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingest followed by enrich once",
	Run:   runOnce(func(p *pipeline, ctx context.Context) error { return p.runAll(ctx) }),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on a cron schedule",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline()
		if err != nil {
			log.Fatalf("Failed to initialize pipeline: %v", err)
		}
		defer p.close()

		schedule := p.cfg.Pipeline.CronSchedule
		if schedule == "" {
			schedule = "@hourly"
		}

		// SkipIfStillRunning: the pipeline must not run concurrently
		// with itself.
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		_, err = c.AddFunc(schedule, func() {
			if err := p.runAll(ctx); err != nil {
				p.logger.Error("Scheduled pipeline run failed", logger.ErrorField(err))
			}
		})
		if err != nil {
			p.logger.Fatal("Invalid cron schedule", logger.ErrorField(err))
		}

		c.Start()
		p.logger.Info("Pipeline scheduler started", logger.StringField("schedule", schedule))
		<-ctx.Done()

		p.logger.Info("Shutting down pipeline scheduler...")
		<-c.Stop().Done()
		p.logger.Info("Pipeline scheduler stopped.")
	},
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(ingestCmd, enrichCmd, runCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
