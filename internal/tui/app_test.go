package tui

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/pipeline"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and any batched commands, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(a *App, msgs []tea.Msg) {
	for _, m := range msgs {
		a.Update(m)
	}
}

func newTestApp(t *testing.T, handler http.HandlerFunc) (*App, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Provider = "custom"
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	cfg.OutputDir = t.TempDir()

	a := NewApp(Options{Config: cfg, ConfigPath: filepath.Join(t.TempDir(), "config.yaml")})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a, &calls
}

func reply(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"model":"test-model","choices":[{"message":{"role":"assistant","content":%q}}]}`, text)
	}
}

func TestGenerateWithoutTopicWarns(t *testing.T) {
	a, calls := newTestApp(t, reply("unused"))

	_, cmd := a.Update(keyMsg("ctrl+g"))
	if cmd != nil {
		t.Error("expected no command when the topic is missing")
	}
	if a.view != viewForm {
		t.Errorf("view = %v, want form", a.view)
	}
	if !strings.Contains(a.state.warning, "topic") {
		t.Errorf("warning = %q, want topic warning", a.state.warning)
	}
	if *calls != 0 {
		t.Errorf("upstream calls = %d, want 0", *calls)
	}
}

func TestGenerateWithoutKeyWarns(t *testing.T) {
	a, _ := newTestApp(t, reply("unused"))
	a.state.config.Provider = "openrouter"
	a.state.config.APIKey = ""
	a.state.topic.SetValue("Remote work")

	built := false
	a.newPipeline = func(cfg *config.Config) (*pipeline.Pipeline, error) {
		built = true
		return pipeline.FromConfig(cfg)
	}

	_, cmd := a.Update(keyMsg("ctrl+g"))
	if cmd != nil {
		t.Error("expected no command when the API key is missing")
	}
	if built {
		t.Error("pipeline should not be built without a key")
	}
	if !strings.Contains(a.state.warning, "API key") {
		t.Errorf("warning = %q, want API key warning", a.state.warning)
	}
}

func TestGenerateShowsResult(t *testing.T) {
	a, calls := newTestApp(t, reply("Generated post about sleep."))
	a.state.topic.SetValue("Better sleep")

	_, cmd := a.Update(keyMsg("ctrl+g"))
	if a.view != viewProcessing {
		t.Fatalf("view = %v, want processing", a.view)
	}
	if !strings.Contains(a.View(), "Generating") {
		t.Error("processing view should say Generating")
	}

	feed(a, drain(cmd))

	if a.view != viewResult {
		t.Fatalf("view = %v, want result (err = %v)", a.view, a.state.err)
	}
	if a.state.result.Text != "Generated post about sleep." {
		t.Errorf("result = %q", a.state.result.Text)
	}
	if !strings.Contains(a.View(), "Generated post about sleep.") {
		t.Error("result view should contain the generated text")
	}
	if *calls != 1 {
		t.Errorf("upstream calls = %d, want 1", *calls)
	}
}

func TestGenerateHumanizeMakesTwoCalls(t *testing.T) {
	var n int32
	a, calls := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			reply("draft")(w, r)
			return
		}
		reply("human")(w, r)
	})
	a.state.topic.SetValue("Gardening")
	a.state.humanize = true

	_, cmd := a.Update(keyMsg("ctrl+g"))
	feed(a, drain(cmd))

	if a.state.result == nil || a.state.result.Text != "human" {
		t.Fatalf("result = %+v, want humanized text", a.state.result)
	}
	if *calls != 2 {
		t.Errorf("upstream calls = %d, want 2", *calls)
	}
}

func TestGenerateErrorShowsSuggestions(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
	})
	a.state.topic.SetValue("Anything")

	_, cmd := a.Update(keyMsg("ctrl+g"))
	feed(a, drain(cmd))

	if a.view != viewError {
		t.Fatalf("view = %v, want error", a.view)
	}
	if llm.KindOf(a.state.err) != llm.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", llm.KindOf(a.state.err))
	}
	out := a.View()
	if !strings.Contains(out, "Error:") {
		t.Error("error view should show the error text")
	}
	if !strings.Contains(out, "Check your API key") {
		t.Error("error view should suggest checking the API key")
	}
}

func TestStaleResultIgnored(t *testing.T) {
	a, _ := newTestApp(t, reply("late"))
	a.state.topic.SetValue("Topic")

	_, cmd := a.Update(keyMsg("ctrl+g"))
	a.Update(keyMsg("esc")) // cancel
	if a.view != viewForm {
		t.Fatalf("view = %v, want form after cancel", a.view)
	}

	feed(a, drain(cmd))
	if a.view != viewForm || a.state.result != nil {
		t.Errorf("late result should be ignored, view = %v", a.view)
	}
}

func TestFormCycling(t *testing.T) {
	a, _ := newTestApp(t, reply("unused"))

	a.Update(keyMsg("tab")) // content type
	a.Update(keyMsg("right"))
	if a.state.contentType != "LinkedIn Post" {
		t.Errorf("contentType = %q, want LinkedIn Post", a.state.contentType)
	}
	a.Update(keyMsg("left"))
	a.Update(keyMsg("left"))
	if a.state.contentType != "YouTube Script" {
		t.Errorf("contentType = %q, want wrap to YouTube Script", a.state.contentType)
	}

	a.Update(keyMsg("tab")) // tone
	a.Update(keyMsg("right"))
	if a.state.tone != "Casual" {
		t.Errorf("tone = %q, want Casual", a.state.tone)
	}

	a.Update(keyMsg("tab")) // words
	for i := 0; i < 10; i++ {
		a.Update(keyMsg("right"))
	}
	if a.state.wordCount != pipeline.MaxWords {
		t.Errorf("wordCount = %d, want clamp at %d", a.state.wordCount, pipeline.MaxWords)
	}
	for i := 0; i < 20; i++ {
		a.Update(keyMsg("left"))
	}
	if a.state.wordCount != pipeline.MinWords {
		t.Errorf("wordCount = %d, want clamp at %d", a.state.wordCount, pipeline.MinWords)
	}

	a.focusField(fieldHumanize)
	a.Update(keyMsg(" "))
	if !a.state.humanize {
		t.Error("space should toggle humanize")
	}
}

func TestTypingGoesToFocusedInput(t *testing.T) {
	a, _ := newTestApp(t, reply("unused"))

	a.Update(keyMsg("abc"))
	if got := a.state.topic.Value(); got != "abc" {
		t.Errorf("topic = %q, want abc", got)
	}
}

func TestResultSaveAndCopy(t *testing.T) {
	a, _ := newTestApp(t, reply("Final text"))
	a.state.topic.SetValue("My Topic")

	_, cmd := a.Update(keyMsg("ctrl+g"))
	feed(a, drain(cmd))
	if a.view != viewResult {
		t.Fatalf("view = %v, want result", a.view)
	}

	_, cmd = a.Update(keyMsg("s"))
	feed(a, drain(cmd))
	path := filepath.Join(a.state.config.OutputDir, "my-topic.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file: %v", err)
	}
	if string(data) != "Final text" {
		t.Errorf("saved = %q", data)
	}
	if !strings.Contains(a.state.notice, path) {
		t.Errorf("notice = %q, want saved path", a.state.notice)
	}

	var copied string
	a.copyText = func(s string) error {
		copied = s
		return nil
	}
	a.Update(keyMsg("c"))
	if copied != "Final text" {
		t.Errorf("copied = %q", copied)
	}

	a.copyText = func(string) error { return errors.New("no clipboard") }
	a.Update(keyMsg("c"))
	if !strings.Contains(a.state.notice, "Copy failed") {
		t.Errorf("notice = %q, want copy failure", a.state.notice)
	}

	a.Update(keyMsg("n"))
	if a.view != viewForm {
		t.Errorf("view = %v, want form after new", a.view)
	}
	if a.state.topic.Value() != "My Topic" {
		t.Error("new should keep the previous form values")
	}
}

func TestSetupSavesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := NewApp(Options{Config: config.DefaultConfig(), ConfigPath: path, NeedsSetup: true})
	if a.view != viewSetup {
		t.Fatalf("view = %v, want setup", a.view)
	}

	// openrouter is first and needs a key
	a.Update(keyMsg("enter"))
	if a.state.setupStep != 1 {
		t.Fatalf("setupStep = %d, want 1", a.state.setupStep)
	}
	a.state.apiKeyInput.SetValue("sk-or-test-123456")
	_, cmd := a.Update(keyMsg("enter"))
	feed(a, drain(cmd))

	if a.view != viewForm {
		t.Errorf("view = %v, want form", a.view)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil || cfg == nil {
		t.Fatalf("LoadFrom() = %v, %v", cfg, err)
	}
	if cfg.Provider != "openrouter" || cfg.APIKey != "sk-or-test-123456" {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestSuggestionsFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		provider string
		want     string
	}{
		{"missing key", llm.ErrMissingAPIKey, "openrouter", "settings"},
		{"unauthorized", &llm.Error{Kind: llm.KindUnauthorized}, "openrouter", "API key"},
		{"rate limited", &llm.Error{Kind: llm.KindRateLimited}, "openrouter", "rate limit"},
		{"ollama down", &llm.Error{Kind: llm.KindUnreachable}, "ollama", "ollama serve"},
		{"offline", &llm.Error{Kind: llm.KindUnreachable}, "openai", "internet"},
		{"timeout", &llm.Error{Kind: llm.KindTimeout}, "openai", "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(suggestionsFor(tt.err, tt.provider), "\n")
			if !strings.Contains(got, tt.want) {
				t.Errorf("suggestions = %q, want mention of %q", got, tt.want)
			}
		})
	}

	if s := suggestionsFor(errors.New("boom"), "openai"); s != nil {
		t.Errorf("unknown error suggestions = %v, want none", s)
	}
}
