package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completion endpoint.
// OpenRouter, Groq, Ollama and custom gateways all reuse it with a different
// base URL.
type OpenAIProvider struct {
	name    string
	model   string
	baseURL string
	client  *openai.Client
}

// Options configures an OpenAIProvider.
type Options struct {
	Name       string
	APIKey     string
	Model      string
	BaseURL    string
	Referer    string
	AppTitle   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewOpenAIProvider(opts Options) *OpenAIProvider {
	if opts.Name == "" {
		opts.Name = "openai"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	extra := map[string]string{}
	if opts.Referer != "" {
		extra["HTTP-Referer"] = opts.Referer
	}
	if opts.AppTitle != "" {
		extra["X-Title"] = opts.AppTitle
	}
	if len(extra) > 0 {
		wrapped := *httpClient
		wrapped.Transport = &headerTransport{base: httpClient.Transport, headers: extra}
		httpClient = &wrapped
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.BaseURL
	cfg.HTTPClient = httpClient

	return &OpenAIProvider{
		name:    opts.Name,
		model:   opts.Model,
		baseURL: opts.BaseURL,
		client:  openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenAIProvider) Name() string {
	return o.name
}

func (o *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := o.client.ListModels(ctx)
	return classify(o.name, err)
}

func (o *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: temperature(req.Temperature),
	}

	resp, err := o.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, classify(o.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindMalformed, Provider: o.name, Err: errors.New("response has no choices")}
	}

	if resp.Model != "" {
		model = resp.Model
	}

	return &CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        model,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		result[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return result
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return base.RoundTrip(req)
}

// temperature maps 0 to the smallest positive float32, since the client drops
// a zero temperature from the request body.
func temperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
