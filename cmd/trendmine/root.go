package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trendmine/internal/app"
	"trendmine/internal/client"
	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/orchestrator"
	"trendmine/internal/signals"
)

var (
	configPath string
	apiURL     string
	local      bool
	verbose    bool

	window     string
	location   string
	subreddits []string
	keywords   string
)

var rootCmd = &cobra.Command{
	Use:   "trendmine",
	Short: "Mine trend signals for business ideas",
	Long: `TrendMine collects trend signals from Reddit communities, a regional
trending-searches feed and your own keywords, then asks a language model
for business ideas grounded in them.

By default the CLI talks to a running TrendMine API. Use --local to run
both pipelines in process.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: environment and configs/)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "TrendMine API base URL (default: server.base_url)")
	rootCmd.PersistentFlags().BoolVar(&local, "local", false, "Run the pipelines in process instead of calling the API")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	for _, c := range []*cobra.Command{refreshCmd, generateCmd} {
		c.Flags().StringVarP(&window, "window", "w", "", "Time window: 24h, 7d or 30d")
		c.Flags().StringVarP(&location, "location", "l", "", "Location: CA, US or worldwide")
		c.Flags().StringSliceVarP(&subreddits, "subreddits", "s", nil, "Communities to read (default: the built-in list)")
		c.Flags().StringVarP(&keywords, "keywords", "k", "", "Comma-separated social keywords")
	}

	rootCmd.AddCommand(refreshCmd, generateCmd, showCmd, clearCmd)
}

// env is everything a command needs.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	orch    *orchestrator.Orchestrator
	release func()
}

func setup(ctx context.Context, out io.Writer) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewStructured(level, "console")

	var (
		fetcher   orchestrator.SignalFetcher
		generator orchestrator.IdeaGenerator
	)
	if local {
		l := &orchestrator.Local{
			Aggregator: app.NewAggregator(cfg, log),
			Generator:  app.NewGenerator(cfg, log),
		}
		fetcher, generator = l, l
	} else {
		base := apiURL
		if base == "" {
			base = cfg.Server.BaseURL
		}
		c := client.New(base, 2*time.Minute, log)
		fetcher, generator = c, c
	}

	store, release := app.NewSessionStore(ctx, cfg, log)
	orch := orchestrator.New(fetcher, generator, store, writerNotifier{w: out}, log)
	orch.Hydrate(ctx)

	return &env{cfg: cfg, log: log, orch: orch, release: release}, nil
}

// applyFlags overlays command-line parameters on the hydrated or default ones.
func (e *env) applyFlags() {
	p := e.orch.Snapshot().Params

	w := p.TimeWindow
	if window != "" {
		w = signals.TimeWindow(window)
	}
	l := p.Location
	if location != "" {
		l = signals.Location(location)
	}
	subs := p.Subreddits
	if subreddits != nil {
		subs = subreddits
	}
	kw := strings.Join(p.SocialKeywords, ",")
	if keywords != "" {
		kw = keywords
	}

	e.orch.SetParams(w, l, subs, kw)
}

func validateFlags() error {
	switch signals.TimeWindow(window) {
	case "", signals.Window24h, signals.Window7d, signals.Window30d:
	default:
		return fmt.Errorf("invalid --window %q: want 24h, 7d or 30d", window)
	}
	switch signals.Location(location) {
	case "", signals.LocationCA, signals.LocationUS, signals.LocationWorldwide:
	default:
		return fmt.Errorf("invalid --location %q: want CA, US or worldwide", location)
	}
	return nil
}

// writerNotifier prints notices the way the web client shows toasts.
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(notice orchestrator.Notice) {
	prefix := "✓"
	switch notice.Level {
	case orchestrator.LevelWarning:
		prefix = "!"
	case orchestrator.LevelFatal:
		prefix = "✗"
	}
	if notice.Description == "" {
		fmt.Fprintf(n.w, "%s %s\n", prefix, notice.Title)
		return
	}
	fmt.Fprintf(n.w, "%s %s: %s\n", prefix, notice.Title, notice.Description)
}
