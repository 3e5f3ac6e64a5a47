package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF is returned when the content does not carry the PDF signature.
	ErrNotPDF = errors.New("content is not a PDF document")
	// ErrNoText is returned for documents without an extractable text layer,
	// such as scanned transcripts.
	ErrNoText = errors.New("no text extracted from PDF")
)

var pdfSignature = []byte("%PDF")

// Extractor turns PDF bytes into plain text.
type Extractor struct {
	// MaxBytes limits the accepted document size. Zero means no limit.
	MaxBytes int64
}

func New(maxBytes int64) *Extractor {
	return &Extractor{MaxBytes: maxBytes}
}

// ExtractFile reads path and extracts its text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript %q: %w", path, err)
	}
	return e.Extract(ctx, data)
}

// Extract returns the plain text of a PDF document.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read PDF content: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfSignature) {
		return "", ErrNotPDF
	}

	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return "", fmt.Errorf("document is %d bytes, limit is %d", len(data), e.MaxBytes)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read PDF content: %w", err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read PDF content: %w", err)
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

// IsPDF reports whether the file name has a .pdf extension.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
