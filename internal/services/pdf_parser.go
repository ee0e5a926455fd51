package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-analyzer/internal/apperror"
)

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	ExtractTextFromBytes(data []byte) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	return p.ExtractTextFromBytes(data)
}

// ExtractTextFromBytes returns the text of every page joined by a single space.
// Unopenable documents and documents without text are client errors.
func (p *pdfParserService) ExtractTextFromBytes(data []byte) (string, error) {
	const op = "PDFParserService.ExtractTextFromBytes"

	pages, err := extractPages(data)
	if err != nil {
		return "", apperror.E(apperror.CodeInvalidArgument, op, fmt.Sprintf("Failed to extract text: %v", err), err)
	}

	text := strings.Join(pages, " ")
	if strings.TrimSpace(text) == "" {
		return "", apperror.E(apperror.CodeInvalidArgument, op, "Failed to extract text: No readable text found in the PDF.", nil)
	}

	return text, nil
}

// extractPages guards against the parser panicking on malformed input.
func extractPages(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	totalPage := r.NumPage()
	pages = make([]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable page, keep going with the rest
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
