package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/claude/repsession/internal/app"
	"github.com/claude/repsession/internal/backend"
	"github.com/claude/repsession/internal/config"
	"github.com/claude/repsession/internal/logging"
	"github.com/claude/repsession/internal/metrics"
	"github.com/claude/repsession/internal/progress"
	"github.com/claude/repsession/internal/timer"
	"github.com/claude/repsession/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "repsession",
	Short: "repsession runs a live workout session against the workout backend",
	Long: `repsession is the session client of the workout app:
1. Resolves today's session (resuming or starting one)
2. Tracks sets, rest countdowns and elapsed time
3. Keeps progress on disk so a crash or restart loses nothing
4. Reports completion or abandonment to the backend`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (env-only when empty)")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(progressCmd)
}

// runtime bundles what every session-running command needs.
type runtime struct {
	cfg      *config.Config
	log      *slog.Logger
	logClose io.Closer
	store    *progress.Store
	registry *prometheus.Registry
}

// newRuntime loads config and opens the logger and progress store. console
// receives text logs; pass nil when stdout/stderr belong to something else.
func newRuntime(console io.Writer) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, logClose := logging.Setup(logging.SetupParams{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: console,
	})

	store, err := progress.Open(cfg.State.Dir, log)
	if err != nil {
		_ = logClose.Close()
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		logClose: logClose,
		store:    store,
		registry: prometheus.NewRegistry(),
	}, nil
}

// openSession resolves and starts the current session.
func (rt *runtime) openSession(ctx context.Context, onEvent func(tracker.Event)) (*app.Session, error) {
	client := backend.NewClient(rt.cfg.Backend.URL, rt.cfg.Backend.Token, rt.cfg.Backend.Timeout)

	bootCtx, cancel := context.WithTimeout(ctx, rt.cfg.Backend.Timeout+5*time.Second)
	defer cancel()

	sess, err := app.Open(bootCtx, app.Deps{
		Backend:   client,
		Store:     rt.store,
		Scheduler: timer.Ticker{},
		Tick:      rt.cfg.Timers.Tick,
		Log:       rt.log,
		Metrics:   metrics.NewManager("repsession", "tracker", rt.registry),
		OnEvent:   onEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return sess, nil
}

func (rt *runtime) Close() error {
	return multierr.Combine(rt.store.Close(), rt.logClose.Close())
}
