package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/agreements"
	"github.com/spigell/transcript-transfer/internal/ai"
	"github.com/spigell/transcript-transfer/internal/logger"
	"github.com/spigell/transcript-transfer/internal/session"
)

// Status strings reported to the user for failed stages.
const (
	StatusExtractionFailed    = "extraction failed"
	StatusSummarizationFailed = "summarization failed"
	StatusSuperseded          = "superseded by a newer upload"
)

// ErrStaleCycle is returned when a newer cycle started while this one was running.
var ErrStaleCycle = errors.New("cycle was superseded")

// Stage represents a single step of an upload cycle.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, c *Cycle) (Step, error)
}

// TextExtractor produces plain text from a transcript file.
type TextExtractor interface {
	ExtractFile(ctx context.Context, path string) (string, error)
}

// TableSource supplies the agreement table status, blocking until it is known.
type TableSource interface {
	Wait(ctx context.Context) (agreements.Status, error)
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Extractor  TextExtractor
	Summarizer ai.Summarizer
	Tables     TableSource
	Session    *session.Session
	Logger     *zap.Logger
}

// Cycle carries everything one upload produces as it moves through the stages.
type Cycle struct {
	ID   uint64
	Path string
	// Text is the extracted transcript. A caller may prefill it and disable
	// the extract stage.
	Text string
	// Summary may likewise be prefilled when the summarize stage is disabled.
	Summary *ai.Summary
	Result  session.Result
}

// Step describes the result of executing a stage.
type Step struct {
	Name     string
	Status   string
	Duration time.Duration
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Default returns the extract, summarize and match stages in order.
func Default() []Stage {
	return []Stage{NewExtract(), NewSummarize(), NewMatch()}
}

// Run starts a new session cycle and executes the enabled stages in order.
// A stage error stops the cycle; the steps completed so far are returned
// together with the failing one.
func Run(ctx context.Context, deps Deps, stages []Stage, c *Cycle) ([]Step, error) {
	if deps.Session == nil {
		return nil, errors.New("session is required")
	}
	c.ID = deps.Session.Begin()
	deps.Logger = logger.WithCycle(deps.Logger, c.ID, c.Path)

	steps := make([]Step, 0, len(stages))
	for _, stage := range stages {
		if !stage.IsEnabled() {
			deps.Logger.Debug("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		started := time.Now()
		info, err := stage.Apply(ctx, deps, c)
		info.Name = stage.Name()
		info.Duration = time.Since(started)
		steps = append(steps, info)

		if err != nil {
			deps.Logger.Warn("stage failed",
				zap.String("name", info.Name),
				zap.String("status", info.Status),
				zap.Error(err),
			)
			return steps, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		deps.Logger.Info("stage completed",
			zap.String("name", info.Name),
			zap.String("status", info.Status),
			zap.Duration("duration", info.Duration),
		)
	}

	return steps, nil
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}
