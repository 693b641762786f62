// Package telemetry turns population runs into logs, CSV files and a
// champion archive.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/arcade/neural"
)

// GenerationStats holds aggregated statistics for one evaluated generation.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Score      int `csv:"score"`  // Pipes passed (Flappy) or deaths (Pong)
	Frames     int `csv:"frames"` // Ticks simulated
	Population int `csv:"population"`
	Species    int `csv:"species"`

	// Fitness distribution
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	MinFitness  float64 `csv:"min_fitness"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`

	// Champion shape
	BestGenome  int `csv:"best_genome"`
	BestSpecies int `csv:"best_species"`
	BestNodes   int `csv:"best_nodes"`
	BestLinks   int `csv:"best_links"` // Enabled links only

	ElapsedSec   float64 `csv:"elapsed_sec"`
	FramesPerSec float64 `csv:"fps"`
}

// SpeciesRecord is one row of species.csv.
type SpeciesRecord struct {
	Generation      int     `csv:"generation"`
	ID              int     `csv:"species"`
	Size            int     `csv:"size"`
	BestFitness     float64 `csv:"best_fitness"`
	AvgFitness      float64 `csv:"avg_fitness"`
	AdjustedFitness float64 `csv:"adjusted_fitness"`
	Age             int     `csv:"age"`
	Staleness       int     `csv:"staleness"`
}

// ComputeFitnessStats returns mean, sample standard deviation, min, max and
// the 10th/50th/90th percentiles of values. All zero for an empty slice.
func ComputeFitnessStats(values []float64) (mean, std, lo, hi, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}
	lo = floats.Min(sorted)
	hi = floats.Max(sorted)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, lo, hi, p10, p50, p90
}

// ComputeGenerationStats summarizes an evaluated generation.
func ComputeGenerationStats(gen *neural.Generation, best *neural.Individual, species []neural.SpeciesInfo, elapsed time.Duration) GenerationStats {
	fitness := make([]float64, len(gen.Individuals))
	for i, ind := range gen.Individuals {
		fitness[i] = ind.Fitness
	}

	s := GenerationStats{
		Generation: gen.Number,
		Score:      gen.Score,
		Frames:     gen.Frames,
		Population: len(gen.Individuals),
		Species:    len(species),
		ElapsedSec: elapsed.Seconds(),
	}
	s.MeanFitness, s.StdFitness, s.MinFitness, s.BestFitness, s.FitnessP10, s.FitnessP50, s.FitnessP90 =
		ComputeFitnessStats(fitness)

	if elapsed > 0 {
		s.FramesPerSec = float64(gen.Frames) / elapsed.Seconds()
	}

	if best != nil && best.Genome != nil {
		s.BestGenome = best.ID
		s.BestSpecies = best.SpeciesID
		s.BestNodes = len(best.Genome.Nodes)
		for _, gene := range best.Genome.Genes {
			if gene.IsEnabled {
				s.BestLinks++
			}
		}
	}
	return s
}

// SpeciesRecords converts species infos to CSV rows.
func SpeciesRecords(generation int, species []neural.SpeciesInfo) []SpeciesRecord {
	records := make([]SpeciesRecord, len(species))
	for i, sp := range species {
		records[i] = SpeciesRecord{
			Generation:      generation,
			ID:              sp.ID,
			Size:            sp.Size,
			BestFitness:     sp.BestFitness,
			AvgFitness:      sp.AvgFitness,
			AdjustedFitness: sp.AdjustedFitness,
			Age:             sp.Age,
			Staleness:       sp.Staleness,
		}
	}
	return records
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("score", s.Score),
		slog.Int("frames", s.Frames),
		slog.Int("population", s.Population),
		slog.Int("species", s.Species),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("min_fitness", s.MinFitness),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Int("best_genome", s.BestGenome),
		slog.Int("best_nodes", s.BestNodes),
		slog.Int("best_links", s.BestLinks),
		slog.Float64("elapsed_sec", s.ElapsedSec),
		slog.Float64("fps", s.FramesPerSec),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation evaluated",
		"generation", s.Generation,
		"score", s.Score,
		"frames", s.Frames,
		"population", s.Population,
		"species", s.Species,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"std_fitness", s.StdFitness,
		"best_genome", s.BestGenome,
		"best_nodes", s.BestNodes,
		"best_links", s.BestLinks,
		"elapsed_sec", s.ElapsedSec,
	)
}
