package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Indexes every stored analysis that is not yet in the search index.
// Rows saved without extracted text are re-extracted from the stored upload.
func main() {
	batch := flag.Int("batch", 20, "analyses per batch")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Server.LogLevel)

	if !cfg.SearchEnabled() {
		log.Fatal("QDRANT_URL is not set, nothing to index into")
	}
	if cfg.Database.Driver == "memory" {
		log.Fatal("reindexing needs a persistent database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	analyses := repositories.NewResumeAnalysisRepository(db)

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Gemini")
	}
	index, err := services.NewQdrantService(cfg.Qdrant, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Qdrant")
	}
	if err := index.InitCollection(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize Qdrant collection")
	}

	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.ReportPath, cfg.Storage.MaxFileSize)
	parser := services.NewPDFParserService()
	indexer := services.NewIndexer(analyses, gemini, index, log)

	indexed, failed := 0, 0
	failedIDs := make(map[uint]bool)
	for ctx.Err() == nil {
		rows, err := analyses.FindUnindexed(ctx, time.Time{}, *batch+len(failedIDs))
		if err != nil {
			log.WithError(err).Fatal("failed to list unindexed analyses")
		}

		progressed := false
		for _, row := range rows {
			if failedIDs[row.ID] {
				continue
			}
			entry := log.WithField("analysis_id", row.ID)

			if err := backfillText(ctx, analyses, storage, parser, row.ID, row.ResumeText, row.StoredFilename); err != nil {
				entry.WithError(err).Warn("skipping analysis without text")
				failedIDs[row.ID] = true
				failed++
				continue
			}
			if err := indexer.IndexAnalysis(ctx, row.ID); err != nil {
				entry.WithError(err).Error("indexing failed")
				failedIDs[row.ID] = true
				failed++
				continue
			}
			indexed++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	log.WithFields(logrus.Fields{"indexed": indexed, "failed": failed}).Info("reindex finished")
	if failed > 0 {
		os.Exit(1)
	}
}

func backfillText(
	ctx context.Context,
	analyses repositories.ResumeAnalysisRepository,
	storage services.StorageService,
	parser services.PDFParserService,
	id uint,
	text, storedName string,
) error {
	if text != "" {
		return nil
	}
	if storedName == "" {
		return errors.New("no stored upload")
	}

	path, err := storage.ResumePath(storedName)
	if err != nil {
		return err
	}
	text, err = parser.ExtractText(path)
	if err != nil {
		return err
	}
	return analyses.UpdateResumeText(ctx, id, text)
}
