package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const (
	msgReportGenerated = "Report generated successfully."
	msgReportNotFound  = "Report not found"
)

type ReportService interface {
	Generate(ctx context.Context, userID uint, req models.ReportRequest) (*models.ReportResponse, error)
	Latest(ctx context.Context, userID uint) (*models.InterviewReport, error)
}

type reportService struct {
	users         repositories.UserRepository
	reports       repositories.ReportRepository
	subscriptions SubscriptionService
	storage       StorageService
	log           logrus.FieldLogger
}

func NewReportService(
	users repositories.UserRepository,
	reports repositories.ReportRepository,
	subscriptions SubscriptionService,
	storage StorageService,
	log logrus.FieldLogger,
) ReportService {
	return &reportService{
		users:         users,
		reports:       reports,
		subscriptions: subscriptions,
		storage:       storage,
		log:           log.WithField("component", "report"),
	}
}

// Generate charges an attempt, renders the PDF and records it.
// The attempt is not refunded when rendering fails.
func (s *reportService) Generate(ctx context.Context, userID uint, req models.ReportRequest) (*models.ReportResponse, error) {
	const op = "ReportService.Generate"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeNotFound, op, "User not found", nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load user", err)
	}

	if err := s.subscriptions.ConsumeAttempt(ctx, user); err != nil {
		return nil, err
	}

	score := 0
	if req.Score != nil {
		score = *req.Score
	}

	path := s.storage.NewReportPath(user.Username)
	if err := writeReportFile(path, user.Username, score, req.Strengths, req.Weaknesses); err != nil {
		_ = s.storage.DeleteFile(path)
		return nil, apperror.E(apperror.CodeInternal, op, fmt.Sprintf("Error generating PDF: %v", err), err)
	}

	report := &models.InterviewReport{UserID: user.ID, FilePath: path}
	if err := s.reports.Create(ctx, report); err != nil {
		_ = s.storage.DeleteFile(path)
		return nil, apperror.E(apperror.CodeInternal, op, "failed to save report", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "report_id": report.ID}).Info("report generated")
	return &models.ReportResponse{Message: msgReportGenerated, ReportURL: path}, nil
}

// Latest returns the newest report of a user whose file is still on disk.
func (s *reportService) Latest(ctx context.Context, userID uint) (*models.InterviewReport, error) {
	const op = "ReportService.Latest"

	report, err := s.reports.FindLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeNotFound, op, msgReportNotFound, nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load report", err)
	}

	if _, err := os.Stat(report.FilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.WithField("report_id", report.ID).Warn("report file missing on disk")
			return nil, apperror.E(apperror.CodeNotFound, op, msgReportNotFound, err)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to stat report", err)
	}
	return report, nil
}

func writeReportFile(path, username string, score int, strengths, weaknesses []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderReport(f, username, score, strengths, weaknesses); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderReport writes the interview report PDF to w.
func RenderReport(w io.Writer, username string, score int, strengths, weaknesses []string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, "Interview Report", "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	chapterTitle := func(title string) {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "", false, 0, "")
		pdf.Ln(5)
	}
	chapterBody := func(body string) {
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 10, tr(body), "", "", false)
		pdf.Ln(-1)
	}

	pdf.AddPage()
	chapterTitle("Interview Report for " + username)
	chapterBody("Score: " + strconv.Itoa(score))
	chapterBody("Strengths: " + strings.Join(strengths, ", "))
	chapterBody("Weaknesses: " + strings.Join(weaknesses, ", "))

	return pdf.Output(w)
}
