package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if _, ok := ctx[FieldModel]; ok {
		t.Fatalf("expected empty model to be omitted")
	}
}

func TestWithCycle(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCycle(zap.New(core), 3, "/home/student/docs/transcript.pdf").Info("cycle log")
	WithCycle(zap.New(core), 4, "").Info("cycle log")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldCycle] != uint64(3) {
		t.Fatalf("unexpected cycle field: %v", first[FieldCycle])
	}
	if first[FieldTranscript] != "transcript.pdf" {
		t.Fatalf("expected base name of transcript, got %v", first[FieldTranscript])
	}

	if _, ok := entries[1].ContextMap()[FieldTranscript]; ok {
		t.Fatalf("expected transcript field to be omitted")
	}
}

func TestNewRejectsUnknownSink(t *testing.T) {
	if _, err := New(false, false, "unknown-scheme://somewhere"); err == nil {
		t.Fatal("expected error for unsupported output")
	}
}
