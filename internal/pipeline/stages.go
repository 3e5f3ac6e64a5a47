package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/utils"
)

// toggle implements the enable/disable part of Stage.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type extractStage struct {
	toggle
}

// NewExtract creates the stage that reads the transcript PDF into text.
func NewExtract() Stage {
	return &extractStage{}
}

func (s *extractStage) Name() string { return "extract" }

func (s *extractStage) Apply(ctx context.Context, deps Deps, c *Cycle) (Step, error) {
	if deps.Extractor == nil {
		return Step{Status: StatusExtractionFailed}, errors.New("text extractor is not configured")
	}

	text, err := deps.Extractor.ExtractFile(ctx, c.Path)
	if err != nil {
		return Step{Status: StatusExtractionFailed}, err
	}

	c.Text = text
	deps.Logger.Debug("transcript text extracted", zap.String("head", utils.FirstLines(text, 3)))
	return Step{Status: fmt.Sprintf("extracted %d characters", utf8.RuneCountInString(text))}, nil
}

func (s *extractStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
}

type summarizeStage struct {
	toggle
}

// NewSummarize creates the stage that asks the AI provider for a course summary.
func NewSummarize() Stage {
	return &summarizeStage{}
}

func (s *summarizeStage) Name() string { return "summarize" }

func (s *summarizeStage) Apply(ctx context.Context, deps Deps, c *Cycle) (Step, error) {
	if deps.Summarizer == nil {
		return Step{Status: StatusSummarizationFailed}, errors.New("summarizer is not configured")
	}
	if strings.TrimSpace(c.Text) == "" {
		return Step{Status: StatusSummarizationFailed}, errors.New("no transcript text to summarize")
	}

	summary, err := deps.Summarizer.Summarize(ctx, c.Text)
	if err != nil {
		return Step{Status: StatusSummarizationFailed}, err
	}

	c.Summary = summary

	status := "summarized"
	if summary.Model != "" {
		status = "summarized by " + summary.Model
	}
	return Step{Status: status}, nil
}

func (s *summarizeStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
}

type matchStage struct {
	toggle
}

// NewMatch creates the stage that hands the summary to the session and
// evaluates it against the agreement table.
func NewMatch() Stage {
	return &matchStage{}
}

func (s *matchStage) Name() string { return "match" }

func (s *matchStage) Apply(ctx context.Context, deps Deps, c *Cycle) (Step, error) {
	if c.Summary == nil {
		return Step{Status: "no summary"}, errors.New("summary is required for matching")
	}

	if !deps.Session.SetSummary(c.ID, c.Summary.Text) {
		return Step{Status: StatusSuperseded}, ErrStaleCycle
	}

	if deps.Tables != nil {
		status, err := deps.Tables.Wait(ctx)
		if err != nil {
			return Step{Status: "waiting for agreements table"}, err
		}
		deps.Session.SetTable(status)
	}

	result := deps.Session.Result()
	if deps.Session.Cycle() != c.ID {
		return Step{Status: StatusSuperseded}, ErrStaleCycle
	}
	c.Result = result

	if result.Err != nil {
		deps.Logger.Warn("matching blocked", zap.Error(result.Err))
	}

	return Step{Status: fmt.Sprintf("%s: %d courses, %d agreements",
		result.State, len(result.Courses), len(result.Matches))}, nil
}

func (s *matchStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
}
