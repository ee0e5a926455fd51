package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

const validModelJSON = `{
  "overall_score": 82,
  "relevance": 8,
  "skills_fit": 7.5,
  "experience_match": 9,
  "cultural_fit": 6,
  "strengths": ["APIs", "Testing"],
  "weaknesses": ["No cloud"],
  "missing_elements": [],
  "recommendations": ["Add metrics"],
  "candidate_info": {"name": "Jane Doe", "email": "jane@example.com", "phone": "+1 555 0100"}
}`

type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	upserted map[uint][]string
	results  []SearchResult
	err      error
}

func (f *fakeIndex) InitCollection(context.Context) error { return nil }

func (f *fakeIndex) UpsertChunks(_ context.Context, analysisID uint, chunks []string, embeddings [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if len(chunks) != len(embeddings) {
		return errors.New("length mismatch")
	}
	if f.upserted == nil {
		f.upserted = make(map[uint][]string)
	}
	f.upserted[analysisID] = chunks
	return nil
}

func (f *fakeIndex) SearchSimilar(_ context.Context, _ []float32, limit int) ([]SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

type recordingQueue struct {
	ids []uint
}

func (q *recordingQueue) EnqueueJob(id uint) { q.ids = append(q.ids, id) }

// textPDF renders a one page PDF with one line per entry.
func textPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	for _, line := range lines {
		pdf.CellFormat(0, 10, line, "", 1, "", false, 0, "")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func blankPDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}
