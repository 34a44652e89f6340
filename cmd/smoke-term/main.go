// Command smoke-term runs the smoke overlay inside a terminal, following
// the mouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoketrail/config"
	"github.com/pthm-cable/smoketrail/fluid"
	"github.com/pthm-cable/smoketrail/termview"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	workers := flag.Int("workers", -1, "Solver worker count (0 = GOMAXPROCS, -1 = use config)")
	fps := flag.Int("fps", 30, "Frames per second")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	flag.Parse()

	// The terminal owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := run(*configPath, *workers, *fps); err != nil {
		slog.Error("smoke-term failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, workers, fps int) error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	cfg := config.Cfg()
	if workers >= 0 {
		cfg.Workers.Count = workers
		if err := cfg.Refresh(); err != nil {
			return err
		}
	}

	solver, err := fluid.NewSolver(cfg.Grid.Width, cfg.Grid.Height, cfg.Derived.Workers, fluid.NewParamsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("creating solver: %w", err)
	}
	defer solver.Close()
	solver.SetScale(float32(cfg.Grid.Scale))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("terminal overlay started", "grid_w", cfg.Grid.Width, "grid_h", cfg.Grid.Height, "fps", fps)
	err = termview.Run(ctx, termview.New(screen, solver, nil), fps)
	slog.Info("terminal overlay stopped", "frames", solver.Frame())
	return err
}
