package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/config"
)

const (
	payloadAnalysisID = "resume_analysis_id"
	payloadChunk      = "chunk"
	payloadText       = "text"

	// text-embedding-004 output size
	embeddingSize = 768
)

// VectorIndex stores resume chunks and answers similarity queries.
type VectorIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, analysisID uint, chunks []string, embeddings [][]float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
}

type SearchResult struct {
	AnalysisID uint
	Score      float32
	Text       string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            logrus.FieldLogger
}

func NewQdrantService(cfg config.QdrantConfig, log logrus.FieldLogger) (VectorIndex, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port unless the URL says otherwise
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     embeddingSize,
		log:            log.WithField("component", "qdrant"),
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.WithField("collection", q.collectionName).Info("qdrant collection created")
	return nil
}

// UpsertChunks writes one point per chunk. Point ids derive from the analysis
// id and chunk position, so indexing the same analysis twice overwrites.
func (q *qdrantService) UpsertChunks(ctx context.Context, analysisID uint, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, text := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunkPointID(analysisID, i)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadAnalysisID: int64(analysisID),
				payloadChunk:      int64(i),
				payloadText:       text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		id, ok := point.Payload[payloadAnalysisID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			AnalysisID: uint(id.GetIntegerValue()),
			Score:      point.Score,
			Text:       point.Payload[payloadText].GetStringValue(),
		})
	}
	return results, nil
}

func chunkPointID(analysisID uint, chunk int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("resume-analysis/%d/%d", analysisID, chunk))).String()
}
