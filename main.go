package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/flappy"
	"github.com/pthm-cable/arcade/neural"
	"github.com/pthm-cable/arcade/pong"
	"github.com/pthm-cable/arcade/renderer"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
	"github.com/pthm-cable/arcade/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	game := flag.String("game", "flappy", "Game to evolve: flappy or pong")
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	neatPath := flag.String("neat", "", "Path to NEAT config YAML (empty = use defaults)")
	generations := flag.Int("generations", 0, "Generations to run (0 = use config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and champion")
	dbPath := flag.String("db", "", "SQLite file archiving runs and champions (empty = disabled)")
	assets := flag.String("assets", "", "Directory with PNG sprites (empty = use config)")
	maxFrames := flag.Int("max-frames", -1, "Frame cap per generation (-1 = use config, 0 = unlimited)")
	profileMode := flag.String("profile", "", "Write a profile: cpu, mem or trace (empty = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *game != "flappy" && *game != "pong" {
		slog.Error("unknown game", "game", *game)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if *assets != "" {
		cfg.Screen.Assets = *assets
	}
	if *maxFrames >= 0 {
		cfg.Flappy.MaxFrames = *maxFrames
		cfg.Pong.MaxFrames = *maxFrames
	}
	if *generations <= 0 {
		*generations = cfg.Evolution.Generations
	}

	neatCfg, err := neural.LoadConfig(*neatPath)
	if err != nil {
		slog.Error("failed to load NEAT config", "path", *neatPath, "error", err)
		return 1
	}

	if p := startProfile(*profileMode, *outputDir); p != nil {
		defer p.Stop()
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	atlas, err := sprite.Load(cfg.Screen.Assets)
	if err != nil {
		slog.Error("failed to load sprites", "dir", cfg.Screen.Assets, "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		return 1
	}
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	archive, err := telemetry.OpenArchive(ctx, *dbPath, *game, rngSeed)
	if err != nil {
		out.Close()
		slog.Error("failed to open archive", "path", *dbPath, "error", err)
		return 1
	}

	reporter := telemetry.NewReporter(ctx, cfg.Telemetry, out, archive)
	defer func() {
		if err := reporter.Close(); err != nil {
			slog.Warn("failed to finish run output", "error", err)
		}
	}()

	session := &sim.Session{}
	var eval neural.EvaluateFunc
	if *headless {
		h := sim.NewHeadless(0)
		defer h.Stop()
		h.OnQuit(func() bool { return ctx.Err() != nil })
		eval = evaluator(*game, cfg, atlas, flappy.Headless(h), pong.Headless(h), session, rng)
	} else {
		win := renderer.Open(cfg, *game, atlas)
		defer win.Close()
		eval = evaluator(*game, cfg, atlas, win, win, session, rng)
	}

	pop := neural.NewPopulation(neatCfg, rng)
	pop.AddReporter(reporter)

	slog.Info("starting evolution",
		"game", *game,
		"seed", rngSeed,
		"generations", *generations,
		"population", neatCfg.NEAT.PopSize,
		"headless", *headless,
		"run_id", archive.RunID(),
		"output_dir", out.Dir(),
	)

	best, err := pop.Run(ctx, eval, *generations)
	switch {
	case errors.Is(err, sim.ErrQuit), errors.Is(err, context.Canceled):
		slog.Info("quit requested", "generation", pop.Generation(), "best_score", session.BestScore)
	case err != nil:
		slog.Error("evolution failed", "generation", pop.Generation(), "error", err)
		return 1
	}

	if best != nil {
		slog.Info("best genome",
			"genome", best.ID,
			"fitness", best.Fitness,
			"species", best.SpeciesID,
			"best_score", session.BestScore,
			"frames", session.Frames,
		)
	}
	return 0
}

// evaluator picks the generation driver for game.
func evaluator(game string, cfg *config.Config, atlas *sprite.Atlas, fv flappy.View, pv pong.View, session *sim.Session, rng *rand.Rand) neural.EvaluateFunc {
	if game == "pong" {
		return pong.Evaluate(cfg, atlas, pv, session, rng)
	}
	return flappy.Evaluate(cfg, atlas, fv, session, rng)
}

// startProfile starts a pkg/profile session writing into dir.
func startProfile(mode, dir string) interface{ Stop() } {
	if dir == "" {
		dir = "."
	}
	opts := []func(*profile.Profile){profile.ProfilePath(dir), profile.NoShutdownHook}
	switch mode {
	case "":
		return nil
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfileAllocs)
	case "trace":
		opts = append(opts, profile.TraceProfile)
	default:
		slog.Warn("unknown profile mode, profiling disabled", "mode", mode)
		return nil
	}
	return profile.Start(opts...)
}
