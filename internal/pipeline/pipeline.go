package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/prompts"
	"github.com/sant0-9/quill/internal/reference"
	"github.com/sant0-9/quill/internal/tokens"
	"github.com/sant0-9/quill/internal/writer"
)

// Stage represents a pipeline stage
type Stage int

const (
	StageReferences Stage = iota
	StageDrafting
	StageHumanizing
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageReferences:
		return "References"
	case StageDrafting:
		return "Drafting"
	case StageHumanizing:
		return "Humanizing"
	case StageDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Progress represents pipeline progress
type Progress struct {
	Stage      Stage
	StageIndex int
	ItemIndex  int
	TotalItems int
	Message    string
}

// Extractor turns reference URLs into excerpts. Implementations must not
// fail; unusable pages come back with placeholder text.
type Extractor interface {
	ExtractAll(ctx context.Context, urls []string) []reference.Reference
}

// Result contains pipeline output
type Result struct {
	ID           string
	Text         string
	Draft        string
	Humanized    bool
	Prompt       string
	PromptTokens int
	References   []reference.Reference
	Model        string
	Usage        llm.Usage
	Elapsed      time.Duration
}

// Pipeline runs one generation: references, prompt, draft, optional rewrite.
type Pipeline struct {
	extractor  Extractor
	writer     *writer.Writer
	onProgress func(Progress)
}

// NewPipeline creates a new pipeline
func NewPipeline(extractor Extractor, w *writer.Writer) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		writer:    w,
	}
}

// FromConfig wires the default extractor, provider and writer. It fails
// without a network call if the provider needs a key that is not set.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	w := writer.NewWriter(provider, cfg.Model, cfg.Temperature)
	return NewPipeline(reference.NewExtractor(cfg.ScrapeTimeout), w), nil
}

// SetProgressCallback sets the progress callback
func (p *Pipeline) SetProgressCallback(fn func(Progress)) {
	p.onProgress = fn
}

func (p *Pipeline) progress(pr Progress) {
	if p.onProgress != nil {
		p.onProgress(pr)
	}
}

// Process runs the pipeline. Completion failures are returned unchanged in
// kind (see llm.KindOf); reference failures never are.
func (p *Pipeline) Process(ctx context.Context, in *Request) (*Result, error) {
	r := *in
	req := &r
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{ID: uuid.NewString()}
	log.Printf("[INFO] run %s: %s, %s tone, %d words, %d refs, humanize=%v",
		res.ID, req.ContentType, req.Tone, req.WordCount, len(req.URLs), req.Humanize)

	// Stage 1: references
	if len(req.URLs) > 0 {
		for i, u := range req.URLs {
			p.progress(Progress{
				Stage:      StageReferences,
				StageIndex: 0,
				ItemIndex:  i,
				TotalItems: len(req.URLs),
				Message:    fmt.Sprintf("Reading %s...", u),
			})
			res.References = append(res.References, p.extractor.ExtractAll(ctx, []string{u})...)
		}
	}

	sources := make([]prompts.Source, len(res.References))
	for i, r := range res.References {
		sources[i] = prompts.Source{URL: r.URL, Text: r.Text}
	}

	res.Prompt = prompts.Compose(prompts.Params{
		Topic:       req.Topic,
		ContentType: req.ContentType,
		Tone:        req.Tone,
		WordCount:   req.WordCount,
		Keywords:    req.Keywords,
		Goal:        req.Goal,
		Sources:     sources,
	})
	res.PromptTokens = tokens.Count(res.Prompt)

	// Stage 2: draft
	p.progress(Progress{
		Stage:      StageDrafting,
		StageIndex: 1,
		Message:    fmt.Sprintf("Writing ~%d words (%d prompt tokens)...", req.WordCount, res.PromptTokens),
	})

	draft, err := p.writer.Draft(ctx, res.Prompt)
	if err != nil {
		log.Printf("[ERROR] run %s: draft failed (%s): %v", res.ID, llm.KindOf(err), err)
		return nil, fmt.Errorf("drafting failed: %w", err)
	}
	res.Draft = draft.Text
	res.Text = draft.Text
	res.Model = draft.Model
	res.Usage = draft.Usage

	// Stage 3: humanize
	if req.Humanize {
		p.progress(Progress{
			Stage:      StageHumanizing,
			StageIndex: 2,
			Message:    "Rewriting in a more human voice...",
		})

		rewrite, err := p.writer.Humanize(ctx, draft.Text)
		if err != nil {
			log.Printf("[ERROR] run %s: humanize failed (%s): %v", res.ID, llm.KindOf(err), err)
			return nil, fmt.Errorf("humanizing failed: %w", err)
		}
		res.Text = rewrite.Text
		res.Humanized = true
		res.Usage = res.Usage.Add(rewrite.Usage)
	}

	res.Elapsed = time.Since(start)
	p.progress(Progress{
		Stage:      StageDone,
		StageIndex: 3,
		Message:    "Done",
	})
	log.Printf("[INFO] run %s: done in %s, %d tokens", res.ID, res.Elapsed.Round(time.Millisecond), res.Usage.TotalTokens)

	return res, nil
}
