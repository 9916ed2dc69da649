// Command trackpal runs the Touch Intent Engine as a background daemon:
// single-finger edge scrolling, middle-click emulation, and hot-corner
// actions layered on top of macOS's native multi-finger-only trackpad
// driver.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jason5545/trackpal/internal/adaptive"
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
	"github.com/jason5545/trackpal/internal/engine"
	"github.com/jason5545/trackpal/internal/platform"
	"github.com/jason5545/trackpal/internal/platform/darwin"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the persisted configuration file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, or error")
	dryRun := flag.Bool("dry-run", false, "log scroll/click/corner actions instead of posting them to the OS")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trackpal: invalid -log-level %q, using info\n", *logLevel)
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "trackpal").Logger()

	store := config.NewFileStore(*configPath)
	persisted, loadErr := store.Load()
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("failed to load persisted config, using defaults")
		persisted = config.DefaultPersisted()
	}
	cfg := persisted.ToConfig()
	learner := adaptive.FromPersisted(persisted)

	var sink platform.EventSink = darwin.EventSink{}
	var corners platform.CornerActionInvoker = darwin.CornerActionInvoker{}
	if *dryRun {
		log.Info().Msg("dry-run: scroll, click, and corner actions will be logged, not posted")
		sink = dryRunSink{log: log}
		corners = dryRunCornerInvoker{log: log}
	}

	eng := engine.New(
		log,
		cfg,
		learner,
		&darwin.TouchSource{},
		sink,
		&darwin.EventInterceptor{},
		&darwin.FrameClock{},
		store,
		corners,
	)

	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "trackpal: failed to start: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	log.Info().Msg("trackpal started, press Ctrl+C to stop")
	<-sig

	log.Info().Msg("stopping")
	eng.Stop()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "trackpal.json"
	}
	return filepath.Join(dir, "trackpal", "trackpal.json")
}

// dryRunSink logs the scroll/click actions the real darwin.EventSink would
// post, for running the engine against real hardware input without moving
// the user's actual scroll position.
type dryRunSink struct {
	log zerolog.Logger
}

func (s dryRunSink) PostScroll(ev contact.ScrollEvent) {
	s.log.Debug().
		Int("dx", ev.DX).Int("dy", ev.DY).
		Str("phase", ev.Phase.String()).
		Bool("momentum", ev.IsMomentum).
		Msg("dry-run: would post scroll")
}

func (s dryRunSink) PostMiddleClick() {
	s.log.Info().Msg("dry-run: would post middle click")
}

// dryRunCornerInvoker logs the corner action the real
// darwin.CornerActionInvoker would trigger, instead of invoking it.
type dryRunCornerInvoker struct {
	log zerolog.Logger
}

func (c dryRunCornerInvoker) Invoke(action config.CornerAction) error {
	c.log.Info().Str("action", action.String()).Msg("dry-run: would invoke corner action")
	return nil
}
