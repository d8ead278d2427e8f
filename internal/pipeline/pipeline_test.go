package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/reference"
	"github.com/sant0-9/quill/internal/writer"
)

// completionStub serves canned replies in order and records request bodies.
type completionStub struct {
	mu      sync.Mutex
	replies []string
	status  int
	bodies  []string
}

func (s *completionStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw json.RawMessage
	json.NewDecoder(r.Body).Decode(&raw)
	s.bodies = append(s.bodies, string(raw))

	w.Header().Set("Content-Type", "application/json")
	if s.status != 0 && s.status != http.StatusOK {
		w.WriteHeader(s.status)
		w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
		return
	}

	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
}

type stubExtractor struct {
	calls [][]string
}

func (e *stubExtractor) ExtractAll(ctx context.Context, urls []string) []reference.Reference {
	e.calls = append(e.calls, urls)
	var refs []reference.Reference
	for _, u := range urls {
		refs = append(refs, reference.Reference{URL: u, Text: "excerpt of " + u})
	}
	return refs
}

func newPipeline(t *testing.T, stub *completionStub) (*Pipeline, *stubExtractor) {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Provider = "custom"
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	ext := &stubExtractor{}
	return NewPipeline(ext, writer.NewWriter(provider, cfg.Model, cfg.Temperature)), ext
}

func TestProcessReturnsCompletionText(t *testing.T) {
	stub := &completionStub{replies: []string{"X"}}
	p, ext := newPipeline(t, stub)

	res, err := p.Process(context.Background(), NewRequest("sleep health"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Text != "X" {
		t.Errorf("Text = %q, want X", res.Text)
	}
	if res.Humanized {
		t.Error("Humanized = true without the flag")
	}
	if len(stub.bodies) != 1 {
		t.Errorf("made %d completion calls, want 1", len(stub.bodies))
	}
	if len(ext.calls) != 0 {
		t.Errorf("extractor called without URLs")
	}
	if res.ID == "" || res.PromptTokens == 0 {
		t.Errorf("result metadata missing: %+v", res)
	}
}

func TestProcessHumanize(t *testing.T) {
	stub := &completionStub{replies: []string{"A-draft-marker", "B"}}
	p, _ := newPipeline(t, stub)

	req := NewRequest("sleep health")
	req.Humanize = true

	res, err := p.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Text != "B" {
		t.Errorf("Text = %q, want B", res.Text)
	}
	if res.Draft != "A-draft-marker" {
		t.Errorf("Draft = %q", res.Draft)
	}
	if len(stub.bodies) != 2 {
		t.Fatalf("made %d completion calls, want 2", len(stub.bodies))
	}
	if strings.Contains(stub.bodies[0], "A-draft-marker") {
		t.Error("first call already contains the draft")
	}
	if !strings.Contains(stub.bodies[1], "A-draft-marker") {
		t.Errorf("second call does not contain the draft: %s", stub.bodies[1])
	}
}

func TestProcessUnauthorized(t *testing.T) {
	stub := &completionStub{status: http.StatusUnauthorized}
	p, _ := newPipeline(t, stub)

	req := NewRequest("sleep health")
	req.Humanize = true

	res, err := p.Process(context.Background(), req)
	if err == nil {
		t.Fatalf("Process() = %+v, want error", res)
	}
	if res != nil {
		t.Errorf("Process() returned a result alongside the error")
	}
	if got := llm.KindOf(err); got != llm.KindUnauthorized {
		t.Errorf("KindOf(%v) = %q, want unauthorized", err, got)
	}
	if len(stub.bodies) != 1 {
		t.Errorf("made %d calls, want 1 (no humanize after failure)", len(stub.bodies))
	}
}

func TestProcessMissingTopicMakesNoCalls(t *testing.T) {
	stub := &completionStub{replies: []string{"X"}}
	p, ext := newPipeline(t, stub)

	req := NewRequest("   ")
	req.URLs = []string{"https://example.com"}

	_, err := p.Process(context.Background(), req)
	if !errors.Is(err, ErrMissingTopic) {
		t.Errorf("Process() error = %v, want ErrMissingTopic", err)
	}
	if len(stub.bodies) != 0 || len(ext.calls) != 0 {
		t.Error("network stages ran despite missing topic")
	}
}

func TestProcessIncludesReferences(t *testing.T) {
	stub := &completionStub{replies: []string{"X"}}
	p, ext := newPipeline(t, stub)

	var stages []Stage
	p.SetProgressCallback(func(pr Progress) { stages = append(stages, pr.Stage) })

	req := NewRequest("sleep health")
	req.URLs = []string{"https://a.example", " "}

	res, err := p.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(ext.calls) != 1 || len(ext.calls[0]) != 1 {
		t.Errorf("extractor calls = %v, want one call with one URL", ext.calls)
	}
	if !strings.Contains(res.Prompt, "excerpt of https://a.example") {
		t.Errorf("prompt missing reference excerpt:\n%s", res.Prompt)
	}
	if !strings.Contains(stub.bodies[0], "excerpt of https://a.example") {
		t.Error("completion request missing reference excerpt")
	}

	want := []Stage{StageReferences, StageDrafting, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %v, want %v", i, stages[i], want[i])
		}
	}
}

func TestProcessReportsEachReference(t *testing.T) {
	stub := &completionStub{replies: []string{"X"}}
	p, ext := newPipeline(t, stub)

	var items []Progress
	p.SetProgressCallback(func(pr Progress) {
		if pr.Stage == StageReferences {
			items = append(items, pr)
		}
	})

	req := NewRequest("coffee")
	req.URLs = []string{"https://a.example", "https://b.example", "https://a.example"}

	res, err := p.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(ext.calls) != 2 || len(res.References) != 2 {
		t.Fatalf("extractor calls = %v, refs = %d, want 2 distinct URLs", ext.calls, len(res.References))
	}
	if len(items) != 2 || items[1].ItemIndex != 1 || items[1].TotalItems != 2 {
		t.Errorf("reference progress = %+v", items)
	}
	if !strings.Contains(res.Prompt, "Reference 2 (https://b.example)") {
		t.Errorf("prompt missing second reference:\n%s", res.Prompt)
	}
}

func TestProcessDoesNotMutateRequest(t *testing.T) {
	stub := &completionStub{replies: []string{"X"}}
	p, _ := newPipeline(t, stub)

	req := &Request{Topic: "  padded  ", WordCount: 5000}
	if _, err := p.Process(context.Background(), req); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if req.Topic != "  padded  " || req.WordCount != 5000 {
		t.Errorf("request mutated: %+v", req)
	}
}
