package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// NormalizedDocument is the canonical inline payload handed to the
// analysis model, plus a thumbnail the UI can display directly.
type NormalizedDocument struct {
	Base64    string // payload without data-URL header
	MimeType  string
	Thumbnail string // data URL, header included
}

// SupportedExtension reports whether the queue accepts files with this
// name. The set is fixed: pdf, jpg, jpeg, png.
func SupportedExtension(fileName string) bool {
	lower := strings.ToLower(fileName)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}

// NormalizeDocument converts a raw upload into the inline payload for
// analysis. PDFs are reduced to their FIRST page only; the correlative
// data of a guide always sits on page 1.
// Images pass through with their original encoding.
func NormalizeDocument(data []byte, fileName string) (*NormalizedDocument, error) {
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return normalizePDF(data)
	}
	mime := imageMimeType(fileName)
	encoded := base64.StdEncoding.EncodeToString(data)
	return &NormalizedDocument{
		Base64:    encoded,
		MimeType:  mime,
		Thumbnail: "data:" + mime + ";base64," + encoded,
	}, nil
}

// normalizePDF extracts page 1 into a standalone single-page PDF. Gemini
// accepts application/pdf inline parts, so no rasterization is needed.
func normalizePDF(data []byte) (*NormalizedDocument, error) {
	var firstPage bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &firstPage, []string{"1"}, nil); err != nil {
		return nil, fmt.Errorf("no se pudo procesar el PDF: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(firstPage.Bytes())
	return &NormalizedDocument{
		Base64:    encoded,
		MimeType:  "application/pdf",
		Thumbnail: "data:application/pdf;base64," + encoded,
	}, nil
}

func imageMimeType(fileName string) string {
	if strings.HasSuffix(strings.ToLower(fileName), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
