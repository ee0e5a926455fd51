package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const msgResumeAnalyzed = "Resume analyzed successfully"

// IndexQueue receives analyses that should be embedded for search.
type IndexQueue interface {
	EnqueueJob(analysisID uint)
}

type ResumeService interface {
	Analyze(ctx context.Context, file *multipart.FileHeader) (*models.AnalyzeResponse, error)
	Get(ctx context.Context, id uint) (*models.AnalysisData, error)
	ResumeFile(storedName string) (string, error)
}

type resumeService struct {
	analyses  repositories.ResumeAnalysisRepository
	storage   StorageService
	parser    PDFParserService
	analyzer  ResumeAnalyzer
	queue     IndexQueue
	resumeURL func(storedName string) string
	log       logrus.FieldLogger
}

// NewResumeService wires the analysis flow. queue may be nil when search is disabled.
func NewResumeService(
	analyses repositories.ResumeAnalysisRepository,
	storage StorageService,
	parser PDFParserService,
	analyzer ResumeAnalyzer,
	queue IndexQueue,
	publicBaseURL string,
	log logrus.FieldLogger,
) ResumeService {
	return &resumeService{
		analyses:  analyses,
		storage:   storage,
		parser:    parser,
		analyzer:  analyzer,
		queue:     queue,
		resumeURL: resumeURLBuilder(publicBaseURL),
		log:       log.WithField("component", "resume"),
	}
}

// Analyze runs save, extract, score and persist. The model is called before
// anything is written to the database, and the stored upload is removed
// whenever a later step fails.
func (s *resumeService) Analyze(ctx context.Context, file *multipart.FileHeader) (*models.AnalyzeResponse, error) {
	const op = "ResumeService.Analyze"

	storedName, err := s.storage.SaveUpload(file)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("stored_filename", storedName)

	keep := false
	defer func() {
		if keep {
			return
		}
		if err := s.storage.DeleteUpload(storedName); err != nil {
			log.WithError(err).Warn("failed to remove upload after error")
		}
	}()

	data, err := s.storage.ReadUpload(storedName)
	if err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to read upload", err)
	}

	text, err := s.parser.ExtractTextFromBytes(data)
	if err != nil {
		return nil, err
	}

	eval, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	row := eval.ToAnalysis(clientFilename(file.Filename), storedName, text)
	if err := s.analyses.Create(ctx, row); err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to save analysis", err)
	}
	keep = true

	if s.queue != nil {
		s.queue.EnqueueJob(row.ID)
	}

	log.WithFields(logrus.Fields{"analysis_id": row.ID, "overall_score": row.OverallScore}).Info("resume analyzed")
	return &models.AnalyzeResponse{
		Message: msgResumeAnalyzed,
		Data: models.AnalysisData{
			ID:               row.ID,
			ResumeEvaluation: *eval,
			ResumeURL:        s.resumeURL(storedName),
		},
	}, nil
}

func (s *resumeService) Get(ctx context.Context, id uint) (*models.AnalysisData, error) {
	const op = "ResumeService.Get"

	row, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeNotFound, op, "Analysis not found", nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load analysis", err)
	}
	data := toAnalysisData(row, s.resumeURL)
	return &data, nil
}

func (s *resumeService) ResumeFile(storedName string) (string, error) {
	return s.storage.ResumePath(storedName)
}

func toAnalysisData(row *models.ResumeAnalysis, resumeURL func(string) string) models.AnalysisData {
	return models.AnalysisData{
		ID:               row.ID,
		ResumeEvaluation: models.EvaluationFromAnalysis(row),
		ResumeURL:        resumeURL(row.StoredFilename),
	}
}

func resumeURLBuilder(publicBaseURL string) func(string) string {
	base := strings.TrimRight(publicBaseURL, "/")
	return func(storedName string) string {
		return base + "/resumes/" + url.PathEscape(storedName)
	}
}

// clientFilename keeps only the base name the client sent, for display.
func clientFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
