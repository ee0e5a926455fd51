package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type repos struct {
	users    repositories.UserRepository
	analyses repositories.ResumeAnalysisRepository
	reports  repositories.ReportRepository
	ping     func(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Server.LogLevel)

	if cfg.Auth.SecretKey == config.DefaultSecretKey {
		log.Warn("SECRET_KEY is not set, tokens are signed with the insecure default key")
	}

	r, err := openRepositories(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize persistence")
	}

	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.ReportPath, cfg.Storage.MaxFileSize)
	if err := storage.EnsureDirs(); err != nil {
		log.WithError(err).Fatal("failed to create storage directories")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Gemini")
	}

	var (
		worker services.Worker
		search services.SearchService
		queue  services.IndexQueue
	)
	if cfg.SearchEnabled() {
		index, err := services.NewQdrantService(cfg.Qdrant, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize Qdrant")
		}
		if err := index.InitCollection(ctx); err != nil {
			log.WithError(err).Fatal("failed to initialize Qdrant collection")
		}

		indexer := services.NewIndexer(r.analyses, gemini, index, log)
		worker = services.NewWorker(indexer, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
		worker.Start(ctx)
		queue = worker
		search = services.NewSearchService(r.analyses, gemini, index, cfg.Server.PublicBaseURL, log)
	} else {
		log.Info("QDRANT_URL is not set, resume search is disabled")
	}

	auth := services.NewAuthService(
		r.users,
		services.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL),
		cfg.Billing.DefaultFreeAttempts,
		log,
	)
	subscriptions := services.NewSubscriptionService(r.users, log)
	resumes := services.NewResumeService(
		r.analyses,
		storage,
		services.NewPDFParserService(),
		services.NewResumeAnalyzer(gemini, log),
		queue,
		cfg.Server.PublicBaseURL,
		log,
	)
	reports := services.NewReportService(r.users, r.reports, subscriptions, storage, log)

	// multipart framing needs room on top of the file itself
	bodyLimit := int(cfg.Storage.MaxFileSize) + 1<<20
	app := handlers.NewApp(handlers.Services{
		Auth:          auth,
		Resumes:       resumes,
		Search:        search,
		Subscriptions: subscriptions,
		Reports:       reports,
		Ping:          r.ping,
	}, bodyLimit, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if worker != nil {
			worker.Stop()
		}
		cancel()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithFields(logrus.Fields{"addr": addr, "db_driver": cfg.Database.Driver}).Info("server starting")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

func openRepositories(cfg *config.Config, log logrus.FieldLogger) (*repos, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("DB_DRIVER=memory, data is lost on restart")
		store := repositories.NewMemoryStore()
		return &repos{users: store.Users(), analyses: store.Analyses(), reports: store.Reports()}, nil
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	return &repos{
		users:    repositories.NewUserRepository(db),
		analyses: repositories.NewResumeAnalysisRepository(db),
		reports:  repositories.NewReportRepository(db),
		ping:     sqlDB.PingContext,
	}, nil
}
