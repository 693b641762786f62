package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/neural"
)

// Reporter logs and persists a population run. It implements
// neural.Reporter. Output and archive may be nil.
type Reporter struct {
	ctx     context.Context
	cfg     config.TelemetryConfig
	out     *OutputManager
	archive *Archive
	hof     *HallOfFame

	started     time.Time
	generations int
	best        *neural.Individual
	bestGen     int
}

var _ neural.Reporter = (*Reporter)(nil)

// NewReporter creates a reporter writing to out and archive. ctx bounds
// archive writes.
func NewReporter(ctx context.Context, cfg config.TelemetryConfig, out *OutputManager, archive *Archive) *Reporter {
	return &Reporter{
		ctx:     ctx,
		cfg:     cfg,
		out:     out,
		archive: archive,
		hof:     NewHallOfFame(cfg.HallOfFame),
	}
}

// StartGeneration starts the generation timer.
func (r *Reporter) StartGeneration(number int) {
	r.started = time.Now()
}

// PostEvaluate records the stats of an evaluated generation.
func (r *Reporter) PostEvaluate(gen *neural.Generation, best *neural.Individual, species []neural.SpeciesInfo) {
	stats := ComputeGenerationStats(gen, best, species, time.Since(r.started))
	r.generations = gen.Number + 1

	if r.cfg.LogGenerations {
		stats.LogStats()
		for i := 0; i < r.cfg.TopSpecies && i < len(species); i++ {
			sp := species[i]
			slog.Info("species",
				"generation", gen.Number,
				"id", sp.ID,
				"size", sp.Size,
				"best_fitness", sp.BestFitness,
				"avg_fitness", sp.AvgFitness,
				"staleness", sp.Staleness,
			)
		}
	}

	if err := r.out.WriteGeneration(stats); err != nil {
		slog.Warn("failed to write generation stats", "error", err)
	}
	if err := r.out.WriteSpecies(SpeciesRecords(gen.Number, species)); err != nil {
		slog.Warn("failed to write species stats", "error", err)
	}
	if err := r.archive.RecordGeneration(r.ctx, stats); err != nil {
		slog.Warn("failed to archive generation", "generation", gen.Number, "error", err)
	}

	if best == nil {
		return
	}
	r.hof.Consider(gen, best)
	if r.best == nil || best.Fitness > r.best.Fitness {
		snapshot := *best
		r.best = &snapshot
		r.bestGen = gen.Number
		if err := r.archive.SaveChampion(r.ctx, gen.Number, best); err != nil {
			slog.Warn("failed to archive champion", "genome", best.ID, "error", err)
		}
	}
}

// EndGeneration logs the species partition of the next generation.
func (r *Reporter) EndGeneration(gen *neural.Generation, species []neural.SpeciesInfo) {
	slog.Debug("generation reproduced", "generation", gen.Number, "species", len(species))
}

// FoundSolution logs the genome that reached the fitness threshold.
func (r *Reporter) FoundSolution(gen *neural.Generation, best *neural.Individual) {
	slog.Info("fitness threshold reached",
		"generation", gen.Number,
		"genome", best.ID,
		"fitness", best.Fitness,
		"score", gen.Score,
	)
}

// Best returns the fittest individual reported so far and its generation.
func (r *Reporter) Best() (*neural.Individual, int) {
	return r.best, r.bestGen
}

// HallOfFame returns the champions collected so far.
func (r *Reporter) HallOfFame() *HallOfFame {
	return r.hof
}

// Close writes the champion and hall of fame, finishes the archived run and
// closes all outputs.
func (r *Reporter) Close() error {
	var errs []error

	if err := r.out.WriteChampion(r.bestGen, r.best); err != nil {
		errs = append(errs, err)
	}
	if err := r.out.WriteHallOfFame(r.hof); err != nil {
		errs = append(errs, err)
	}

	bestFitness := 0.0
	if r.best != nil {
		bestFitness = r.best.Fitness
	}
	// The run context may already be cancelled on shutdown
	if err := r.archive.Finish(context.WithoutCancel(r.ctx), r.generations, bestFitness); err != nil {
		errs = append(errs, err)
	}

	if err := r.out.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.archive.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
