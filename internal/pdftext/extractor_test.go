package pdftext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := New(0).Extract(context.Background(), []byte("plain text transcript"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestExtractRejectsOversizedDocument(t *testing.T) {
	data := []byte("%PDF-1.4\n" + strings.Repeat("x", 64))

	_, err := New(16).Extract(context.Background(), data)
	if err == nil || !strings.Contains(err.Error(), "limit is 16") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestExtractFailsOnCorruptPDF(t *testing.T) {
	_, err := New(0).Extract(context.Background(), []byte("%PDF-1.4\ngarbage"))
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
	if errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestExtractHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(0).Extract(ctx, []byte("%PDF-1.4")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractFileMissing(t *testing.T) {
	_, err := New(0).ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestIsPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		expect bool
	}{
		{name: "transcript.pdf", expect: true},
		{name: "TRANSCRIPT.PDF", expect: true},
		{name: "transcript.txt", expect: false},
		{name: "pdf", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPDF(tt.name); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
