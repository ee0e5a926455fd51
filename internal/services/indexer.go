package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const (
	indexChunkSize    = 1000
	indexChunkOverlap = 150

	indexRetryBase = time.Minute
	indexRetryMax  = 6 * time.Hour
)

// Indexer embeds stored resume text into the vector index.
type Indexer interface {
	IndexAnalysis(ctx context.Context, analysisID uint) error
	PendingIDs(ctx context.Context, limit int) ([]uint, error)
}

type indexer struct {
	analyses repositories.ResumeAnalysisRepository
	embedder Embedder
	index    VectorIndex
	chunker  TextChunker
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewIndexer(
	analyses repositories.ResumeAnalysisRepository,
	embedder Embedder,
	index VectorIndex,
	log logrus.FieldLogger,
) Indexer {
	return &indexer{
		analyses: analyses,
		embedder: embedder,
		index:    index,
		chunker:  NewTextChunker(),
		now:      time.Now,
		log:      log.WithField("component", "indexer"),
	}
}

func (ix *indexer) IndexAnalysis(ctx context.Context, analysisID uint) error {
	analysis, err := ix.analyses.FindByID(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("failed to load analysis %d: %w", analysisID, err)
	}
	if analysis.IndexedAt != nil {
		return nil
	}

	chunks, err := ix.embedAndUpsert(ctx, analysis.ID, analysis.ResumeText)
	if err != nil {
		ix.recordFailure(ctx, analysis)
		return err
	}
	if err := ix.analyses.MarkIndexed(ctx, analysisID, ix.now()); err != nil {
		return fmt.Errorf("failed to mark analysis %d indexed: %w", analysisID, err)
	}

	ix.log.WithFields(logrus.Fields{"analysis_id": analysisID, "chunks": chunks}).Info("analysis indexed")
	return nil
}

func (ix *indexer) embedAndUpsert(ctx context.Context, analysisID uint, text string) (int, error) {
	chunks := ix.chunker.ChunkText(text, indexChunkSize, indexChunkOverlap)
	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := ix.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d of analysis %d: %w", i, analysisID, err)
		}
		embeddings = append(embeddings, vec)
	}
	if err := ix.index.UpsertChunks(ctx, analysisID, chunks, embeddings); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// recordFailure counts the attempt and schedules the next retry with
// exponential backoff, capped at indexRetryMax.
func (ix *indexer) recordFailure(ctx context.Context, analysis *models.ResumeAnalysis) {
	retryAt := ix.now().Add(indexRetryDelay(analysis.IndexAttempts + 1))
	if err := ix.analyses.RecordIndexFailure(ctx, analysis.ID, retryAt); err != nil {
		ix.log.WithError(err).WithField("analysis_id", analysis.ID).Warn("failed to record index failure")
	}
}

func indexRetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := indexRetryBase
	for i := 1; i < attempts && delay < indexRetryMax; i++ {
		delay *= 2
	}
	if delay > indexRetryMax {
		delay = indexRetryMax
	}
	return delay
}

// PendingIDs lists unindexed analyses that are due for a (re)try.
func (ix *indexer) PendingIDs(ctx context.Context, limit int) ([]uint, error) {
	rows, err := ix.analyses.FindUnindexed(ctx, ix.now(), limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}
