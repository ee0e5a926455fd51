package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const defaultSearchLimit = 5

type SearchService interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.SearchHit, error)
}

type searchService struct {
	analyses      repositories.ResumeAnalysisRepository
	embedder      Embedder
	index         VectorIndex
	promptBuilder *PromptBuilder
	resumeURL     func(storedName string) string
	log           logrus.FieldLogger
}

func NewSearchService(
	analyses repositories.ResumeAnalysisRepository,
	embedder Embedder,
	index VectorIndex,
	publicBaseURL string,
	log logrus.FieldLogger,
) SearchService {
	return &searchService{
		analyses:      analyses,
		embedder:      embedder,
		index:         index,
		promptBuilder: NewPromptBuilder(),
		resumeURL:     resumeURLBuilder(publicBaseURL),
		log:           log.WithField("component", "search"),
	}
}

// Search ranks analyses by their best matching chunk.
func (s *searchService) Search(ctx context.Context, req models.SearchRequest) ([]models.SearchHit, error) {
	const op = "SearchService.Search"

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, s.promptBuilder.BuildSearchQuery(req.Query))
	if err != nil {
		return nil, apperror.E(apperror.CodeUnavailable, op, "failed to embed query", err)
	}

	// several chunks of one resume can match, so over-fetch before grouping
	results, err := s.index.SearchSimilar(ctx, vec, limit*4)
	if err != nil {
		return nil, apperror.E(apperror.CodeUnavailable, op, "search index unavailable", err)
	}

	best := make(map[uint]float32)
	for _, r := range results {
		if score, ok := best[r.AnalysisID]; !ok || r.Score > score {
			best[r.AnalysisID] = r.Score
		}
	}
	ids := make([]uint, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if best[ids[i]] == best[ids[j]] {
			return ids[i] < ids[j]
		}
		return best[ids[i]] > best[ids[j]]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return []models.SearchHit{}, nil
	}

	rows, err := s.analyses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load analyses", err)
	}
	byID := make(map[uint]*models.ResumeAnalysis, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	hits := make([]models.SearchHit, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			// indexed but no longer stored
			continue
		}
		hits = append(hits, models.SearchHit{
			Score:    best[id],
			Analysis: toAnalysisData(row, s.resumeURL),
		})
	}
	return hits, nil
}
