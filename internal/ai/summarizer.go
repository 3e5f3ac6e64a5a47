package ai

import "context"

// Summary is the model's answer for one transcript: a bullet list of passed
// courses followed by prose.
type Summary struct {
	Text  string
	Model string
}

type Summarizer interface {
	Summarize(ctx context.Context, transcriptText string) (*Summary, error)
}
