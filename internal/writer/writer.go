package writer

import (
	"context"

	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/prompts"
)

// Writer runs the drafting and humanizing passes against one provider.
type Writer struct {
	provider    llm.Provider
	model       string
	temperature float64
}

// NewWriter creates a new writer
func NewWriter(provider llm.Provider, model string, temperature float64) *Writer {
	return &Writer{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// Pass is the outcome of one completion call.
type Pass struct {
	Text  string
	Model string
	Usage llm.Usage
}

// Draft generates content from a composed prompt.
func (w *Writer) Draft(ctx context.Context, prompt string) (*Pass, error) {
	return w.complete(ctx, prompts.WriterMessages(prompt))
}

// Humanize rewrites a draft toward an informal register. It uses the same
// model and credential as Draft.
func (w *Writer) Humanize(ctx context.Context, draft string) (*Pass, error) {
	return w.complete(ctx, prompts.HumanizeMessages(draft))
}

func (w *Writer) complete(ctx context.Context, msgs []llm.Message) (*Pass, error) {
	resp, err := w.provider.Complete(ctx, &llm.CompletionRequest{
		Model:       w.model,
		Messages:    msgs,
		Temperature: w.temperature,
	})
	if err != nil {
		return nil, err
	}

	return &Pass{
		Text:  resp.Content,
		Model: resp.Model,
		Usage: resp.Usage,
	}, nil
}
