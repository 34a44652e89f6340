package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoketrail/config"
	"github.com/pthm-cable/smoketrail/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output field and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	backend := flag.String("backend", "", "Solver backend: cpu or gpu (empty = use config)")
	workers := flag.Int("workers", -1, "Solver worker count (0 = GOMAXPROCS, -1 = use config)")
	streamAddr := flag.String("stream-addr", "", "Serve websocket frames on this address (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if err := applyOverrides(cfg, *backend, *workers, *streamAddr); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Headless:  *headless,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	if *headless {
		runHeadless(cfg, opts, *maxFrames)
		return
	}
	runWindowed(cfg, opts, *maxFrames)
}

// applyOverrides folds CLI flags into the loaded config and re-validates it.
func applyOverrides(cfg *config.Config, backend string, workers int, streamAddr string) error {
	if backend != "" {
		cfg.Solver.Backend = backend
	}
	if workers >= 0 {
		cfg.Workers.Count = workers
	}
	if streamAddr != "" {
		cfg.Stream.Addr = streamAddr
	}
	return cfg.Refresh()
}

func runHeadless(cfg *config.Config, opts game.Options, maxFrames int) {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	slog.Info("starting headless run",
		"max_frames", maxFrames,
		"fixed_dt", cfg.Solver.FixedDT,
	)

	for {
		select {
		case <-stop:
			slog.Info("interrupted", "frame", g.Frame())
			return
		default:
		}

		g.UpdateHeadless()

		if maxFrames > 0 && int(g.Frame()) >= maxFrames {
			slog.Info("max frames reached", "frame", g.Frame(), "sim_time", g.SimTime())
			return
		}
	}
}

func runWindowed(cfg *config.Config, opts game.Options, maxFrames int) {
	if cfg.Screen.Overlay {
		rl.SetConfigFlags(rl.FlagWindowTransparent | rl.FlagWindowUndecorated | rl.FlagWindowTopmost | rl.FlagWindowResizable)
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	}
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Smoke Trail")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxFrames > 0 && int(g.Frame()) >= maxFrames {
			break
		}
	}
}
