package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandleGenerate handles POST /reports/generate/:user_id
func (h *ReportHandler) HandleGenerate(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	var req models.ReportRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.reports.Generate(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HandleDownload handles GET /reports/download/:user_id
func (h *ReportHandler) HandleDownload(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	report, err := h.reports.Latest(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Download(report.FilePath, filepath.Base(report.FilePath))
}
