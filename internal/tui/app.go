package tui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/output"
	"github.com/sant0-9/quill/internal/pipeline"
	"github.com/sant0-9/quill/internal/reference"
)

type view int

const (
	viewSetup view = iota
	viewForm
	viewProcessing
	viewResult
	viewError
	viewSettings
	viewHelp
)

// Options configures a new App.
type Options struct {
	Config     *config.Config
	ConfigPath string
	NeedsSetup bool
}

type App struct {
	width    int
	height   int
	view     view
	previous view
	state    *state
	quitting bool

	program     *tea.Program
	newPipeline func(*config.Config) (*pipeline.Pipeline, error)
	copyText    func(string) error
}

func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := newState(cfg)
	s.configPath = opts.ConfigPath
	s.needsSetup = opts.NeedsSetup

	a := &App{
		view:        viewForm,
		state:       s,
		newPipeline: pipeline.FromConfig,
		copyText:    output.Copy,
	}
	if s.needsSetup {
		a.view = viewSetup
	}
	return a
}

// SetProgram lets the pipeline goroutine push progress into the event loop.
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textinput.Blink)
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type progressMsg struct {
	run      int
	progress pipeline.Progress
}
type resultMsg struct {
	run    int
	result *pipeline.Result
}
type errorMsg struct {
	run int
	err error
}
type savedMsg struct{ path string }
type saveErrorMsg struct{ error }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := a.handleKey(msg)
		if handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeViewport()
		return a, nil

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewForm
		return a, a.focusField(fieldTopic)

	case setupErrorMsg:
		a.state.warning = "Could not save config: " + msg.Error()
		a.state.needsSetup = false
		a.view = viewForm
		return a, nil

	case progressMsg:
		if msg.run == a.state.run {
			p := msg.progress
			a.state.progress = &p
		}
		return a, nil

	case resultMsg:
		if msg.run != a.state.run {
			return a, nil
		}
		a.finishRun()
		a.showResult(msg.result)
		return a, nil

	case errorMsg:
		if msg.run != a.state.run {
			return a, nil
		}
		a.finishRun()
		a.state.err = msg.err
		a.view = viewError
		return a, nil

	case savedMsg:
		a.state.notice = "Saved to " + msg.path
		return a, nil

	case saveErrorMsg:
		a.state.notice = "Save failed: " + msg.Error()
		return a, nil

	case settingsSavedMsg:
		log.Printf("[DEBUG] tui: settings saved")
		return a, nil

	case settingsErrorMsg:
		a.state.warning = "Could not save config: " + msg.Error()
		return a, nil

	case spinner.TickMsg:
		if a.view != viewProcessing {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		return a, cmd
	}

	// Forward whatever is left to the focused component.
	switch {
	case a.view == viewSetup && a.state.setupStep == 1,
		a.view == viewSettings && a.state.settingsMode == "apikey":
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewForm:
		if in := a.state.textInput(a.state.focus); in != nil {
			var cmd tea.Cmd
			*in, cmd = in.Update(msg)
			cmds = append(cmds, cmd)
		}
	case a.view == viewResult:
		var cmd tea.Cmd
		a.state.viewport, cmd = a.state.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// handleKey returns handled=false when the key should fall through to the
// focused input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, keys.Quit) {
		a.cancelRun()
		a.quitting = true
		return tea.Quit, true
	}

	switch a.view {
	case viewSetup:
		return a.handleSetupKey(msg)
	case viewForm:
		return a.handleFormKey(msg)
	case viewProcessing:
		if key.Matches(msg, keys.Back) {
			a.cancelRun()
			a.view = viewForm
			a.state.warning = "Generation canceled"
			return nil, true
		}
		return nil, true
	case viewResult:
		return a.handleResultKey(msg)
	case viewError:
		return a.handleErrorKey(msg)
	case viewSettings:
		return a.handleSettingsKey(msg)
	case viewHelp:
		if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Help) {
			a.view = a.previous
		}
		return nil, true
	}
	return nil, false
}

func (a *App) handleSetupKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch a.state.setupStep {
	case 0: // Provider selection
		switch msg.String() {
		case "up", "k":
			if a.state.selectedProvider > 0 {
				a.state.selectedProvider--
			}
		case "down", "j":
			if a.state.selectedProvider < len(config.Providers)-1 {
				a.state.selectedProvider++
			}
		case "enter":
			provider := config.Providers[a.state.selectedProvider]
			a.state.config.Provider = provider.ID
			a.state.config.Model = provider.DefaultModel

			if provider.NeedsAPIKey {
				a.state.setupStep = 1
				return a.state.apiKeyInput.Focus(), true
			}
			return a.finishSetup(), true
		case "esc":
			a.quitting = true
			return tea.Quit, true
		}
		return nil, true

	case 1: // API key entry
		switch msg.String() {
		case "enter":
			a.state.config.APIKey = a.state.apiKeyInput.Value()
			a.state.apiKeyInput.Reset()
			a.state.apiKeyInput.Blur()
			return a.finishSetup(), true
		case "esc":
			a.state.setupStep = 0
			a.state.apiKeyInput.Reset()
			return nil, true
		}
	}

	return nil, false
}

func (a *App) finishSetup() tea.Cmd {
	cfg := *a.state.config
	path := a.state.configPath
	return func() tea.Msg {
		if err := saveConfig(&cfg, path); err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}

func saveConfig(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		a.quitting = true
		return tea.Quit, true
	case key.Matches(msg, keys.Help):
		a.previous = viewForm
		a.view = viewHelp
		return nil, true
	case key.Matches(msg, keys.Settings):
		a.openSettings()
		return nil, true
	case key.Matches(msg, keys.Generate):
		return a.startGeneration(), true
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
		return a.focusField((s.focus + 1) % fieldCount), true
	case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
		return a.focusField((s.focus + fieldCount - 1) % fieldCount), true
	case key.Matches(msg, keys.Enter):
		if s.focus == fieldSubmit {
			return a.startGeneration(), true
		}
		return a.focusField(s.focus + 1), true
	}

	step := 0
	switch {
	case key.Matches(msg, keys.Left):
		step = -1
	case key.Matches(msg, keys.Right):
		step = 1
	}

	switch s.focus {
	case fieldContentType:
		if step != 0 {
			s.contentType = pipeline.Cycle(pipeline.ContentTypes, s.contentType, step)
		}
		return nil, true
	case fieldTone:
		if step != 0 {
			s.tone = pipeline.Cycle(pipeline.Tones, s.tone, step)
		}
		return nil, true
	case fieldWords:
		s.wordCount += step * pipeline.WordStep
		s.wordCount = max(pipeline.MinWords, min(pipeline.MaxWords, s.wordCount))
		return nil, true
	case fieldHumanize:
		if key.Matches(msg, keys.Toggle) || step != 0 {
			s.humanize = !s.humanize
		}
		return nil, true
	case fieldSubmit:
		return nil, true
	}

	return nil, false
}

func (a *App) focusField(f field) tea.Cmd {
	s := a.state
	if in := s.textInput(s.focus); in != nil {
		in.Blur()
	}
	s.focus = f
	if in := s.textInput(f); in != nil {
		return in.Focus()
	}
	return nil
}

func (a *App) buildRequest() *pipeline.Request {
	s := a.state
	return &pipeline.Request{
		Topic:       s.topic.Value(),
		ContentType: s.contentType,
		Tone:        s.tone,
		WordCount:   s.wordCount,
		Keywords:    s.keywords.Value(),
		Goal:        s.goal.Value(),
		URLs:        reference.ParseURLs(s.urls.Value()),
		Humanize:    s.humanize,
	}
}

func missingInputWarning(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrMissingTopic):
		return "Please enter a topic."
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "Please set an API key in settings (ctrl+o)."
	default:
		return err.Error()
	}
}

// startGeneration validates the form and, when it passes, runs the pipeline
// in a command. Nothing is sent anywhere if validation fails.
func (a *App) startGeneration() tea.Cmd {
	req := a.buildRequest()
	if err := pipeline.CheckInputs(req, a.state.config); err != nil {
		a.state.warning = missingInputWarning(err)
		return nil
	}

	p, err := a.newPipeline(a.state.config)
	if err != nil {
		a.state.warning = missingInputWarning(err)
		return nil
	}

	a.state.run++
	run := a.state.run
	program := a.program
	p.SetProgressCallback(func(pr pipeline.Progress) {
		if program != nil {
			program.Send(progressMsg{run: run, progress: pr})
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.state.cancel = cancel
	a.state.warning = ""
	a.state.progress = nil
	a.state.err = nil
	a.state.startedAt = time.Now()
	a.view = viewProcessing

	log.Printf("[INFO] tui: starting generation run=%d", run)
	return tea.Batch(a.state.spinner.Tick, func() tea.Msg {
		res, err := p.Process(ctx, req)
		if err != nil {
			return errorMsg{run: run, err: err}
		}
		return resultMsg{run: run, result: res}
	})
}

func (a *App) cancelRun() {
	if a.state.cancel != nil {
		a.state.cancel()
		a.state.cancel = nil
	}
	// Late results from the canceled run are ignored.
	a.state.run++
}

func (a *App) finishRun() {
	if a.state.cancel != nil {
		a.state.cancel()
		a.state.cancel = nil
	}
}

func (a *App) showResult(res *pipeline.Result) {
	a.state.result = res
	a.state.notice = ""
	a.resizeViewport()
	a.state.viewport.SetContent(res.Text)
	a.state.viewport.GotoTop()
	a.view = viewResult
}

func (a *App) resizeViewport() {
	w := min(80, a.width-4)
	h := a.height - 8
	if w < 20 {
		w = 70
	}
	if h < 5 {
		h = 20
	}
	a.state.viewport.Width = w
	a.state.viewport.Height = h
}

func (a *App) handleResultKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	res := a.state.result
	switch msg.String() {
	case "s":
		if res == nil {
			return nil, true
		}
		dir := a.state.config.OutputDir
		name := output.FileName(a.state.topic.Value())
		text := res.Text
		return func() tea.Msg {
			path, err := output.Save(dir, name, text)
			if err != nil {
				return saveErrorMsg{err}
			}
			return savedMsg{path}
		}, true
	case "c":
		if res == nil {
			return nil, true
		}
		if err := a.copyText(res.Text); err != nil {
			a.state.notice = "Copy failed: " + err.Error()
		} else {
			a.state.notice = "Copied to clipboard"
		}
		return nil, true
	case "n":
		a.view = viewForm
		a.state.notice = ""
		return a.focusField(fieldTopic), true
	case "r":
		return a.startGeneration(), true
	case "esc":
		a.view = viewForm
		return nil, true
	case "?", "f1":
		a.previous = viewResult
		a.view = viewHelp
		return nil, true
	}
	// Scrolling keys go to the viewport.
	return nil, false
}

func (a *App) handleErrorKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "r":
		return a.startGeneration(), true
	case "s":
		a.openSettings()
		return nil, true
	case "n", "esc":
		a.view = viewForm
		return a.focusField(a.state.focus), true
	}
	return nil, true
}

func (a *App) openSettings() {
	a.previous = a.view
	a.view = viewSettings
	a.state.settingsMode = ""
	a.state.settingsSelected = 0
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewProcessing:
		return a.renderProcessing()
	case viewResult:
		return a.renderResult()
	case viewError:
		return a.renderError()
	case viewSettings:
		return a.renderSettings()
	case viewHelp:
		return a.renderHelp()
	default:
		return a.renderForm()
	}
}
