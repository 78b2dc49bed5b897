package services

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/ledongthuc/pdf"
)

// UploadedFile is one raw file received from a training author
type UploadedFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// ExtractorService turns uploaded documents into plain text for prompt
// construction. Extraction failures never abort a batch; a failed file is
// recorded with no text so the author can see what was skipped.
type ExtractorService struct{}

func NewExtractorService() *ExtractorService {
	return &ExtractorService{}
}

// ExtractAll processes a batch of files independently. The returned slice
// always has one entry per input file, in input order.
func (s *ExtractorService) ExtractAll(files []UploadedFile) []models.Document {
	documents := make([]models.Document, 0, len(files))
	for _, file := range files {
		doc := models.Document{
			Name:     file.Name,
			Size:     int64(len(file.Data)),
			MimeType: file.MimeType,
		}

		text, err := s.Extract(file)
		if err != nil {
			slog.Warn("Document extraction failed, skipping file", "file", file.Name, "mime_type", file.MimeType, "error", err)
		} else {
			doc.ExtractedText = &text
		}

		documents = append(documents, doc)
	}
	return documents
}

// Extract recovers plain text from a single file based on its MIME type
func (s *ExtractorService) Extract(file UploadedFile) (string, error) {
	switch {
	case file.MimeType == "application/pdf" || strings.HasSuffix(strings.ToLower(file.Name), ".pdf"):
		return s.extractPDF(file)
	case file.MimeType == "text/csv" || strings.HasSuffix(strings.ToLower(file.Name), ".csv"):
		return "CSV Data:\n" + string(file.Data), nil
	case strings.HasPrefix(file.MimeType, "text/"), file.MimeType == "application/json", file.MimeType == "text/markdown":
		return string(file.Data), nil
	default:
		// Best effort: accept anything that decodes as valid UTF-8 text
		if !utf8.Valid(file.Data) {
			return "", fmt.Errorf("%w: %s is not a supported document type", ErrExtractionFailed, file.Name)
		}
		return string(file.Data), nil
	}
}

func (s *ExtractorService) extractPDF(file UploadedFile) (text string, err error) {
	// The pdf library panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf parse panic in %s: %v", ErrExtractionFailed, file.Name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("Failed to extract pdf page", "file", file.Name, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no extractable text in %s", ErrExtractionFailed, file.Name)
	}

	slog.Info("Extracted pdf text", "file", file.Name, "pages", len(pages))
	return strings.Join(pages, "\n\n"), nil
}
