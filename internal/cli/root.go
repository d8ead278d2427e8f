// Package cli wires the quill commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/logging"
	"github.com/sant0-9/quill/internal/tui"
	"github.com/spf13/cobra"
)

var Version = "dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:     "quill",
		Version: Version,
		Short:   "AI content generator for blogs, posts, threads and scripts",
		Long: `quill writes marketing content with an LLM.
Give it a topic, a content type, a tone and a length; optionally SEO
keywords, a goal and reference links to read first. It can run a second
pass that rewrites the draft to sound more human.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/quill/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newServeCmd(opts),
		newFetchCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the config file (defaults when missing), then applies the
// environment overrides. found reports whether the file existed.
func loadConfig(opts *globalOptions) (cfg *config.Config, path string, found bool, err error) {
	path = opts.configPath
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			return nil, "", false, err
		}
	}

	cfg, err = config.LoadFrom(path)
	if err != nil {
		return nil, "", false, fmt.Errorf("load config %s: %w", path, err)
	}
	found = cfg != nil
	if !found {
		cfg = config.DefaultConfig()
	}

	cfg.ApplyEnv()
	return cfg, path, found, nil
}

// setupLogging sends logs to the log file (flag, then config) when one is
// set, otherwise to fallback. Flags never end up in the saved config. The
// returned func closes the file.
func setupLogging(cfg *config.Config, opts *globalOptions, fallback io.Writer) (func(), error) {
	level, file := cfg.LogLevel, cfg.LogFile
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if opts.logFile != "" {
		file = opts.logFile
	}

	if file == "" {
		logging.Setup(fallback, level)
		return func() {}, nil
	}
	f, err := logging.OpenFile(file)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(f, level)
	return func() { f.Close() }, nil
}

func runTUI(opts *globalOptions) error {
	cfg, path, found, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// bubbletea owns the terminal, so logs always go to a file.
	logCfg := *cfg
	if logCfg.LogFile == "" {
		logCfg.LogFile = filepath.Join(filepath.Dir(path), "quill.log")
	}
	closeLog, err := setupLogging(&logCfg, opts, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	app := tui.NewApp(tui.Options{
		Config:     cfg,
		ConfigPath: path,
		NeedsSetup: !found,
	})
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	app.SetProgram(p)

	log.Printf("[INFO] quill %s starting (provider=%s model=%s)", Version, cfg.Provider, cfg.Model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
