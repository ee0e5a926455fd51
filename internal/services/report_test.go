package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type reportFixture struct {
	store     *repositories.MemoryStore
	auth      AuthService
	subs      SubscriptionService
	reports   ReportService
	reportDir string
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	dir := t.TempDir()
	storage := NewStorageService(filepath.Join(dir, "resumes"), filepath.Join(dir, "reports"), 0)
	require.NoError(t, storage.EnsureDirs())

	subs := NewSubscriptionService(store.Users(), logger.Discard())
	return &reportFixture{
		store:     store,
		auth:      newTestAuth(t, store),
		subs:      subs,
		reports:   NewReportService(store.Users(), store.Reports(), subs, storage, logger.Discard()),
		reportDir: filepath.Join(dir, "reports"),
	}
}

func reportRequest(score int) models.ReportRequest {
	return models.ReportRequest{
		Score:      &score,
		Strengths:  []string{"Go", "SQL"},
		Weaknesses: []string{"Frontend"},
	}
}

func TestGenerateReportConsumesFreeAttempts(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	user := registerUser(t, f.auth, "jane", "jane@example.com")

	first, err := f.reports.Generate(ctx, user.ID, reportRequest(7))
	require.NoError(t, err)
	assert.Equal(t, "Report generated successfully.", first.Message)
	assert.FileExists(t, first.ReportURL)

	second, err := f.reports.Generate(ctx, user.ID, reportRequest(8))
	require.NoError(t, err)
	assert.NotEqual(t, first.ReportURL, second.ReportURL)

	status, err := f.subs.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.RemainingAttempts)

	_, err = f.reports.Generate(ctx, user.ID, reportRequest(9))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	latest, err := f.store.Reports().FindLatestByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ReportURL, latest.FilePath)

	files, err := os.ReadDir(f.reportDir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGenerateReportSubscribedIsUnlimited(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	user := registerUser(t, f.auth, "jane", "jane@example.com")

	_, err := f.reports.Generate(ctx, user.ID, reportRequest(5))
	require.NoError(t, err)
	_, err = f.subs.Subscribe(ctx, user.ID)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := f.reports.Generate(ctx, user.ID, reportRequest(i))
		require.NoError(t, err)
	}

	status, err := f.subs.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unlimited", status.RemainingAttempts)

	files, err := os.ReadDir(f.reportDir)
	require.NoError(t, err)
	assert.Len(t, files, 5)
}

func TestGenerateReportUnknownUser(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.reports.Generate(context.Background(), 404, reportRequest(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestLatestReport(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	user := registerUser(t, f.auth, "jane", "jane@example.com")

	_, err := f.reports.Latest(ctx, user.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	assert.Equal(t, "Report not found", apperror.Message(err))

	_, err = f.reports.Generate(ctx, user.ID, reportRequest(6))
	require.NoError(t, err)
	second, err := f.reports.Generate(ctx, user.ID, reportRequest(7))
	require.NoError(t, err)

	latest, err := f.reports.Latest(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ReportURL, latest.FilePath)

	require.NoError(t, os.Remove(latest.FilePath))
	_, err = f.reports.Latest(ctx, user.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, "jane", 8, []string{"Go", "SQL"}, []string{"Frontend"}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	text, err := NewPDFParserService().ExtractTextFromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "Interview Report for jane")
	assert.Contains(t, text, "Score: 8")
	assert.Contains(t, text, "Strengths: Go, SQL")
}
