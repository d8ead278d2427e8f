package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sant0-9/quill/internal/output"
	"github.com/sant0-9/quill/internal/pipeline"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	topic       string
	contentType string
	tone        string
	words       int
	keywords    string
	goal        string
	urls        []string
	humanize    bool

	apiKey   string
	provider string
	model    string
	out      string
	quiet    bool
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate content without the UI and print it",
		Example: `  quill generate "Remote work tips" --type "LinkedIn Post" --tone Witty --words 300
  quill generate --topic "Home espresso" --url https://example.com/guide --humanize --out espresso.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.topic == "" && len(args) > 0 {
				opts.topic = strings.Join(args, " ")
			}
			return runGenerate(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.topic, "topic", "t", "", "topic to write about")
	f.StringVar(&opts.contentType, "type", pipeline.ContentTypes[0], "content type: "+strings.Join(pipeline.ContentTypes, ", "))
	f.StringVar(&opts.tone, "tone", pipeline.Tones[0], "tone: "+strings.Join(pipeline.Tones, ", "))
	f.IntVarP(&opts.words, "words", "w", pipeline.DefaultWords, fmt.Sprintf("target word count (%d-%d)", pipeline.MinWords, pipeline.MaxWords))
	f.StringVarP(&opts.keywords, "keywords", "k", "", "SEO keywords to include")
	f.StringVarP(&opts.goal, "goal", "g", "", "goal of the content")
	f.StringSliceVarP(&opts.urls, "url", "u", nil, "reference URL to read first (repeatable)")
	f.BoolVar(&opts.humanize, "humanize", false, "rewrite the draft to sound more human")
	f.StringVar(&opts.apiKey, "api-key", "", "API key (overrides config and environment)")
	f.StringVar(&opts.provider, "provider", "", "provider id (overrides config)")
	f.StringVar(&opts.model, "model", "", "model (overrides config)")
	f.StringVarP(&opts.out, "out", "o", "", "also save the text to this file")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress")

	return cmd
}

func runGenerate(cmd *cobra.Command, global *globalOptions, opts *generateOptions) error {
	cfg, _, _, err := loadConfig(global)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.apiKey != "" {
		cfg.APIKey = opts.apiKey
	}

	closeLog, err := setupLogging(cfg, global, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	req := &pipeline.Request{
		Topic:       opts.topic,
		ContentType: opts.contentType,
		Tone:        opts.tone,
		WordCount:   opts.words,
		Keywords:    opts.keywords,
		Goal:        opts.goal,
		URLs:        opts.urls,
		Humanize:    opts.humanize,
	}
	if err := pipeline.CheckInputs(req, cfg); err != nil {
		return err
	}

	p, err := pipeline.FromConfig(cfg)
	if err != nil {
		return err
	}
	if !opts.quiet {
		stderr := cmd.ErrOrStderr()
		p.SetProgressCallback(func(pr pipeline.Progress) {
			if pr.Stage != pipeline.StageDone {
				fmt.Fprintf(stderr, "[%s] %s\n", pr.Stage, pr.Message)
			}
		})
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	res, err := p.Process(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Text)

	if opts.out != "" {
		path, err := output.Save(filepath.Dir(opts.out), filepath.Base(opts.out), res.Text)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		if !opts.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", path)
		}
	}
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
