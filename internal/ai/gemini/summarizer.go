package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/ai"
	"github.com/spigell/transcript-transfer/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Summarizer turns transcript text into a course list plus prose summary.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	// maxInput caps the transcript runes sent to the model. Zero disables it.
	maxInput int
}

//go:embed prompt.md
var systemPrompt string

const (
	defaultMaxLogLength = 200
	defaultMaxInput     = 60000
)

func NewSummarizer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		maxInput:  defaultMaxInput,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, transcriptText string) (*ai.Summary, error) {
	if s == nil || s.generator == nil {
		return nil, errors.New("gemini summarizer is not initialized")
	}

	text := strings.TrimSpace(transcriptText)
	if text == "" {
		return nil, errors.New("transcript text is required")
	}
	if s.maxInput > 0 && utf8.RuneCountInString(text) > s.maxInput {
		s.logger.Warn("transcript text truncated before summarization",
			zap.Int("transcript_length", utf8.RuneCountInString(text)),
			zap.Int("limit", s.maxInput),
		)
		text = string([]rune(text)[:s.maxInput])
	}

	s.logger.Debug("gemini generate content request",
		zap.Int("transcript_length", utf8.RuneCountInString(text)),
		zap.String("transcript_preview", utils.TruncateForLog(text, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemPrompt, text)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	summary := stripFences(raw)
	if summary == "" {
		return nil, errors.New("gemini returned an empty summary")
	}

	return &ai.Summary{Text: summary, Model: s.generator.Model()}, nil
}

// stripFences removes a markdown code fence wrapped around the whole answer.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```markdown")
	raw = strings.TrimPrefix(raw, "```text")
	raw = strings.TrimPrefix(raw, "```")
	if idx := strings.LastIndex(raw, "```"); idx != -1 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}
