package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/apperror"
)

type StorageService interface {
	EnsureDirs() error
	SaveUpload(file *multipart.FileHeader) (storedName string, err error)
	ReadUpload(storedName string) ([]byte, error)
	ResumePath(storedName string) (string, error)
	NewReportPath(username string) string
	DeleteUpload(storedName string) error
	DeleteFile(path string) error
}

type storageService struct {
	uploadPath  string
	reportPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath, reportPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		reportPath:  reportPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.uploadPath, s.reportPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload stores a PDF upload under a server-assigned name.
// The client filename never reaches the filesystem.
func (s *storageService) SaveUpload(file *multipart.FileHeader) (string, error) {
	const op = "StorageService.SaveUpload"

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", apperror.E(apperror.CodeInvalidArgument, op, "Only PDF files are supported", nil)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", apperror.E(apperror.CodeInvalidArgument, op,
			fmt.Sprintf("File exceeds the %d byte limit", s.maxFileSize), nil)
	}

	storedName := fmt.Sprintf("resume_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, storedName)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return storedName, nil
}

func (s *storageService) ReadUpload(storedName string) ([]byte, error) {
	path, err := s.ResumePath(storedName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// ResumePath resolves a stored resume name. Anything that is not a plain
// file name inside the upload directory, or that does not exist, is not found.
func (s *storageService) ResumePath(storedName string) (string, error) {
	const op = "StorageService.ResumePath"
	notFound := apperror.E(apperror.CodeNotFound, op, "File not found", nil)

	if storedName == "" || storedName != filepath.Base(storedName) || storedName == "." || storedName == ".." {
		return "", notFound
	}

	path := filepath.Join(s.uploadPath, storedName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", notFound
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", notFound
	}
	return path, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NewReportPath returns a fresh path in the report directory for username.
func (s *storageService) NewReportPath(username string) string {
	safe := unsafeNameChars.ReplaceAllString(username, "_")
	if safe == "" {
		safe = "user"
	}
	return filepath.Join(s.reportPath, fmt.Sprintf("%s_%s_report.pdf", safe, uuid.New().String()))
}

func (s *storageService) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) DeleteUpload(storedName string) error {
	return s.DeleteFile(filepath.Join(s.uploadPath, filepath.Base(storedName)))
}
