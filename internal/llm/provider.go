package llm

import (
	"context"
)

// Provider is a chat-completion backend. Complete returns either a response
// with non-empty choices or an *Error; it never retries.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	// Ping lists models, which needs a valid key but costs no tokens.
	Ping(ctx context.Context) error
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest is one non-streaming chat call. An empty Model means the
// provider's configured model.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

type Message struct {
	Role    string
	Content string
}

// CompletionResponse carries the first choice only.
type CompletionResponse struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add sums two usages; used when a run makes more than one call.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// NewRequest builds the system + user pair every quill pass sends.
func NewRequest(model string, temperature float64, systemPrompt, userPrompt string) *CompletionRequest {
	return &CompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	}
}
