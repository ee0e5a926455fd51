package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ResumeHandler struct {
	resumes services.ResumeService
	search  services.SearchService
}

// NewResumeHandler builds the resume routes. search is nil when no vector index is configured.
func NewResumeHandler(resumes services.ResumeService, search services.SearchService) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, search: search}
}

// HandleAnalyze handles POST /analyze_resume/
func (h *ResumeHandler) HandleAnalyze(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apperror.E(apperror.CodeInvalidArgument, "ResumeHandler.HandleAnalyze", "file is required", err)
	}

	resp, err := h.resumes.Analyze(c.UserContext(), file)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HandleGetFile handles GET /resumes/:filename
func (h *ResumeHandler) HandleGetFile(c *fiber.Ctx) error {
	path, err := h.resumes.ResumeFile(c.Params("filename"))
	if err != nil {
		return err
	}
	return c.SendFile(path)
}

// HandleGetAnalysis handles GET /analyses/:id
func (h *ResumeHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	data, err := h.resumes.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data)
}

// HandleSearch handles POST /analyses/search
func (h *ResumeHandler) HandleSearch(c *fiber.Ctx) error {
	if h.search == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Search index is not enabled")
	}

	var req models.SearchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	hits, err := h.search.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": hits})
}
