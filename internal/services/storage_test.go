package services

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/apperror"
)

func newTestStorage(t *testing.T, maxSize int64) (StorageService, string, string) {
	t.Helper()
	dir := t.TempDir()
	uploads, reports := filepath.Join(dir, "resumes"), filepath.Join(dir, "reports")
	s := NewStorageService(uploads, reports, maxSize)
	require.NoError(t, s.EnsureDirs())
	return s, uploads, reports
}

func TestSaveUpload(t *testing.T) {
	s, uploads, _ := newTestStorage(t, 0)

	name, err := s.SaveUpload(fileHeader(t, "../../etc/My Resume.PDF", []byte("%PDF-fake")))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^resume_[0-9a-f-]{36}\.pdf$`), name)

	data, err := os.ReadFile(filepath.Join(uploads, name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(data))

	read, err := s.ReadUpload(name)
	require.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestSaveUploadRejects(t *testing.T) {
	s, uploads, _ := newTestStorage(t, 4)

	_, err := s.SaveUpload(fileHeader(t, "resume.docx", []byte("x")))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
	assert.Equal(t, "Only PDF files are supported", apperror.Message(err))

	_, err = s.SaveUpload(fileHeader(t, "resume.pdf", []byte("too large")))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))

	entries, err := os.ReadDir(uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResumePath(t *testing.T) {
	s, uploads, _ := newTestStorage(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "resume_a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(uploads), "secret.txt"), []byte("x"), 0o644))

	path, err := s.ResumePath("resume_a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(uploads, "resume_a.pdf"), path)

	for _, name := range []string{"", ".", "..", "../secret.txt", "sub/resume_a.pdf", "missing.pdf"} {
		_, err := s.ResumePath(name)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound), name)
	}
}

func TestNewReportPath(t *testing.T) {
	s, _, reports := newTestStorage(t, 0)

	first := s.NewReportPath("../jane doe")
	second := s.NewReportPath("../jane doe")

	assert.NotEqual(t, first, second)
	assert.Equal(t, reports, filepath.Dir(first))
	assert.True(t, strings.HasSuffix(first, "_report.pdf"))
	assert.NotContains(t, filepath.Base(first), "..")
	assert.NotContains(t, filepath.Base(first), " ")
}

func TestDeleteUploadMissingIsNoop(t *testing.T) {
	s, _, _ := newTestStorage(t, 0)
	assert.NoError(t, s.DeleteUpload("resume_missing.pdf"))
}
