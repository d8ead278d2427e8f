package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/pipeline"
)

// field identifies a row of the generation form.
type field int

const (
	fieldTopic field = iota
	fieldContentType
	fieldTone
	fieldWords
	fieldKeywords
	fieldGoal
	fieldURLs
	fieldHumanize
	fieldSubmit
	fieldCount
)

func (f field) isText() bool {
	switch f {
	case fieldTopic, fieldKeywords, fieldGoal, fieldURLs:
		return true
	}
	return false
}

type state struct {
	// Config
	config     *config.Config
	configPath string
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model

	// Form
	focus       field
	topic       textinput.Model
	keywords    textinput.Model
	goal        textinput.Model
	urls        textinput.Model
	contentType string
	tone        string
	wordCount   int
	humanize    bool
	warning     string

	// Processing
	run       int
	cancel    context.CancelFunc
	progress  *pipeline.Progress
	spinner   spinner.Model
	startedAt time.Time

	// Result
	result   *pipeline.Result
	viewport viewport.Model
	notice   string

	// Error
	err error

	// Settings
	settingsMode     string
	settingsSelected int
}

func newTextInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 50
	return in
}

func newState(cfg *config.Config) *state {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSpinner

	s := &state{
		config:      cfg,
		apiKeyInput: apiKey,
		topic:       newTextInput("e.g. Choosing a mattress for better sleep", 200),
		keywords:    newTextInput("e.g. bedroom furniture, sleep health", 300),
		goal:        newTextInput("e.g. drive sign-ups for our newsletter", 300),
		urls:        newTextInput("https://... (comma separated, optional)", 1000),
		contentType: pipeline.ContentTypes[0],
		tone:        pipeline.Tones[0],
		wordCount:   pipeline.DefaultWords,
		spinner:     sp,
		viewport:    viewport.New(70, 20),
	}
	s.topic.Focus()
	return s
}

func (s *state) textInput(f field) *textinput.Model {
	switch f {
	case fieldTopic:
		return &s.topic
	case fieldKeywords:
		return &s.keywords
	case fieldGoal:
		return &s.goal
	case fieldURLs:
		return &s.urls
	}
	return nil
}
