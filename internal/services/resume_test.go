package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type resumeFixture struct {
	store   *repositories.MemoryStore
	gen     *fakeGenerator
	queue   *recordingQueue
	svc     ResumeService
	uploads string
}

func newResumeFixture(t *testing.T, gen *fakeGenerator) *resumeFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	storage, uploads, _ := newTestStorage(t, 0)
	queue := &recordingQueue{}
	svc := NewResumeService(
		store.Analyses(),
		storage,
		NewPDFParserService(),
		NewResumeAnalyzer(gen, logger.Discard()),
		queue,
		"http://localhost:8000/",
		logger.Discard(),
	)
	return &resumeFixture{store: store, gen: gen, queue: queue, svc: svc, uploads: uploads}
}

func (f *resumeFixture) assertNothingStored(t *testing.T) {
	t.Helper()
	rows, err := f.store.Analyses().FindUnindexed(context.Background(), time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.queue.ids)
}

func TestAnalyzeResume(t *testing.T) {
	ctx := context.Background()
	f := newResumeFixture(t, &fakeGenerator{response: "```json\n" + validModelJSON + "\n```"})

	resp, err := f.svc.Analyze(ctx, fileHeader(t, "jane.pdf", textPDF(t, "Jane Doe", "Backend engineer")))
	require.NoError(t, err)

	assert.Equal(t, "Resume analyzed successfully", resp.Message)
	assert.Equal(t, 82.0, resp.Data.OverallScore)
	assert.Equal(t, []string{"APIs", "Testing"}, resp.Data.Strengths)
	assert.Equal(t, "jane@example.com", resp.Data.CandidateInfo.Email)
	assert.True(t, strings.HasPrefix(resp.Data.ResumeURL, "http://localhost:8000/resumes/resume_"), resp.Data.ResumeURL)

	row, err := f.store.Analyses().FindByID(ctx, resp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane.pdf", row.Filename)
	assert.Equal(t, resp.Data.ResumeEvaluation, models.EvaluationFromAnalysis(row))
	assert.Contains(t, row.ResumeText, "Backend engineer")
	assert.FileExists(t, filepath.Join(f.uploads, row.StoredFilename))
	assert.Equal(t, []uint{row.ID}, f.queue.ids)

	require.Len(t, f.gen.prompts, 1)
	assert.Contains(t, f.gen.prompts[0], "Jane Doe")

	got, err := f.svc.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Data, *got)

	path, err := f.svc.ResumeFile(row.StoredFilename)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestAnalyzeResumeFailuresLeaveNothingBehind(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		filename string
		pdf      func(t *testing.T) []byte
		code     apperror.Code
	}{
		{
			name:     "not a pdf name",
			gen:      &fakeGenerator{response: validModelJSON},
			filename: "resume.txt",
			pdf:      func(t *testing.T) []byte { return textPDF(t, "Jane") },
			code:     apperror.CodeInvalidArgument,
		},
		{
			name:     "no extractable text",
			gen:      &fakeGenerator{response: validModelJSON},
			filename: "blank.pdf",
			pdf:      blankPDF,
			code:     apperror.CodeInvalidArgument,
		},
		{
			name:     "unparsable model answer",
			gen:      &fakeGenerator{response: "Sorry, I can only answer in prose."},
			filename: "jane.pdf",
			pdf:      func(t *testing.T) []byte { return textPDF(t, "Jane") },
			code:     apperror.CodeInternal,
		},
		{
			name:     "model unavailable",
			gen:      &fakeGenerator{err: errors.New("503 from upstream")},
			filename: "jane.pdf",
			pdf:      func(t *testing.T) []byte { return textPDF(t, "Jane") },
			code:     apperror.CodeUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResumeFixture(t, tt.gen)

			_, err := f.svc.Analyze(context.Background(), fileHeader(t, tt.filename, tt.pdf(t)))
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
			f.assertNothingStored(t)
		})
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	f := newResumeFixture(t, &fakeGenerator{})

	_, err := f.svc.Get(context.Background(), 12)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	_, err = f.svc.ResumeFile("../go.mod")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}
