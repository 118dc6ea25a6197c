package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hupe1980/blogmesh"
	"github.com/hupe1980/blogmesh/artifact"
	"github.com/hupe1980/blogmesh/config"
	"github.com/hupe1980/blogmesh/console"
	"github.com/hupe1980/blogmesh/core"
	"github.com/hupe1980/blogmesh/logging"
	"github.com/hupe1980/blogmesh/model"
	"github.com/hupe1980/blogmesh/search"
)

// app holds the collaborators the commands are built from.
type app struct {
	getenv      func(string) string
	newModel    func(cfg *config.Config, logger logging.Logger) (model.Model, error)
	newSearcher func(cfg *config.Config) (search.Searcher, error)
}

func newApp() *app {
	return &app{
		getenv:      os.Getenv,
		newModel:    func(cfg *config.Config, l logging.Logger) (model.Model, error) { return cfg.NewModel(l) },
		newSearcher: func(cfg *config.Config) (search.Searcher, error) { return cfg.NewSearcher() },
	}
}

type runFlags struct {
	configPath    string
	topic         string
	tone          string
	constraints   string
	wordCount     int
	maxIterations int
	provider      string
	model         string
	baseURL       string
	promptsDir    string
	maxModelCalls int
	out           string
	sessionID     string
	seo           bool
	stream        bool
	logLevel      string
	logFormat     string
}

func (a *app) rootCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "blogmesh",
		Short: "Research, write and iteratively refine a blog post",
		Long: `blogmesh validates the requested topic, plans web searches, researches once,
then alternates between a writer and a critic until the critic's confidence
reaches 80% or the iteration cap is hit. The best-scoring draft is printed.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fl.StringVarP(&f.topic, "topic", "t", "", "blog topic (prompted interactively when empty)")
	fl.StringVar(&f.tone, "tone", "", "tone of the blog, e.g. friendly, professional, humorous")
	fl.StringVar(&f.constraints, "constraints", "", "additional constraints (SEO terms, audience, ...)")
	fl.IntVarP(&f.wordCount, "word-count", "w", core.DefaultWordCount, "target number of words")
	fl.IntVarP(&f.maxIterations, "max-iterations", "n", core.DefaultMaxIterations, "generation/critique iteration cap")
	fl.StringVar(&f.provider, "provider", "", "text generation provider: groq, openai or anthropic")
	fl.StringVar(&f.model, "model", "", "model name (provider default when empty)")
	fl.StringVar(&f.baseURL, "base-url", "", "override the provider API base URL")
	fl.StringVar(&f.promptsDir, "prompts", "", "directory overlaying <name>.txt prompt templates")
	fl.IntVar(&f.maxModelCalls, "max-model-calls", 0, "fail the run after this many model calls (0 = unlimited)")
	fl.StringVarP(&f.out, "out", "o", "", "export best_draft.md, best_draft.html and report.json below this directory")
	fl.StringVar(&f.sessionID, "session", "", "session id (generated when empty)")
	fl.BoolVar(&f.seo, "seo", false, "run the SEO editor over the best draft")
	fl.BoolVar(&f.stream, "stream", false, "request streaming responses from the provider")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "", "text or json")

	cmd.AddCommand(a.promptsCmd(), versionCmd())
	return cmd
}

// loadConfig layers flags over file and environment settings.
func (a *app) loadConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath, a.getenv)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("provider") {
		cfg.Provider = f.provider
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("prompts") {
		cfg.PromptsDir = f.promptsDir
	}
	if changed("max-model-calls") {
		cfg.MaxModelCalls = f.maxModelCalls
	}
	if changed("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if changed("word-count") {
		cfg.WordCount = f.wordCount
	}
	if changed("stream") {
		cfg.Stream = f.stream
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	cfg.Normalize()
	return cfg, nil
}

func (a *app) run(cmd *cobra.Command, f *runFlags) error {
	cfg, err := a.loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	in := blogmesh.Input{
		Topic:         f.topic,
		Tone:          f.tone,
		Constraints:   f.constraints,
		WordCount:     cfg.WordCount,
		MaxIterations: cfg.MaxIterations,
	}
	if in.Topic == "" {
		in, err = readInput(cmd.InOrStdin(), cmd.OutOrStdout(), in)
		if err != nil {
			return err
		}
	}

	llm, err := a.newModel(cfg, logger)
	if err != nil {
		return err
	}
	searcher, err := a.newSearcher(cfg)
	if err != nil {
		return err
	}

	p, err := blogmesh.New(llm, searcher, func(o *blogmesh.Options) {
		o.Prompts = cfg.NewPrompts()
		o.SEO = f.seo
		o.Stream = cfg.Stream
		o.Logger = logger
		o.Observer = progress(cmd.ErrOrStderr())
	})
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, noteStyle(stderr).Render("Running multi-agent blog generator..."))
	fmt.Fprintln(stderr, noteStyle(stderr).Render("Research is performed once; later iterations refine the draft from critic feedback."))

	res, runErr := p.Run(cmd.Context(), f.sessionID, in)
	if res == nil || res.State == nil {
		return runErr
	}
	report := res.Report()
	if runErr != nil {
		// Whatever earlier cycles committed is still worth showing.
		if report.BestDraft != "" {
			_ = report.Render(cmd.OutOrStdout())
		}
		return runErr
	}

	if err := report.Render(cmd.OutOrStdout()); err != nil {
		return err
	}
	if f.out != "" {
		return export(cmd.OutOrStdout(), f.out, report)
	}
	return nil
}

func export(w io.Writer, dir string, report console.Report) error {
	store := artifact.NewDirStore(dir)
	written, err := console.Export(store, report)
	for _, id := range written {
		fmt.Fprintf(w, "wrote %s\n", store.Path(report.SessionID, id))
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// progress prints one line per completed stage.
func progress(w io.Writer) func(ev core.Event) {
	style := noteStyle(w)
	return func(ev core.Event) {
		line := fmt.Sprintf("✓ %s (iteration %d, %s)", ev.Stage, ev.Iteration, ev.Duration.Round(time.Millisecond))
		switch {
		case ev.Failed():
			line = fmt.Sprintf("✗ %s failed: %s", ev.Stage, ev.Error)
		case ev.Stage == "critic":
			line += fmt.Sprintf(" score %.1f%%", ev.Score*100)
		case ev.Route == core.RouteDone && ev.StopReason != "":
			line += " " + ev.StopReason
		}
		fmt.Fprintln(w, style.Render(line))
	}
}

func noteStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("#999999"))
}
