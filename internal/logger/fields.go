package logger

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider   = "ai_provider"
	FieldModel      = "ai_model"
	FieldCycle      = "cycle"
	FieldTranscript = "transcript"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the AI provider and model. Empty values are dropped.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// CycleFields identifies one upload cycle. Only the base name of the
// transcript path is logged.
func CycleFields(cycle uint64, transcriptPath string) []zap.Field {
	fields := []zap.Field{zap.Uint64(FieldCycle, cycle)}

	if name := strings.TrimSpace(transcriptPath); name != "" {
		fields = append(fields, zap.String(FieldTranscript, filepath.Base(name)))
	}

	return fields
}

func WithCycle(logger *zap.Logger, cycle uint64, transcriptPath string) *zap.Logger {
	return WithFields(logger, CycleFields(cycle, transcriptPath)...)
}
