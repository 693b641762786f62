package telemetry

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/arcade/neural"
)

func TestComputeFitnessStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, std, lo, hi, p10, p50, p90 := ComputeFitnessStats(values)

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(std-3.0277) > 1e-3 {
		t.Errorf("std = %v, want ~3.0277", std)
	}
	if lo != 1 || hi != 10 {
		t.Errorf("min/max = %v/%v, want 1/10", lo, hi)
	}
	if p10 != 1 || p50 != 5 || p90 != 9 {
		t.Errorf("percentiles = %v/%v/%v, want 1/5/9", p10, p50, p90)
	}

	// Input order is untouched
	if values[0] != 10 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestComputeFitnessStatsEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{-1}, -1, 0},
		{"all equal", []float64{2, 2, 2}, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std, lo, hi, _, p50, _ := ComputeFitnessStats(tt.values)
			if mean != tt.wantMean || std != tt.wantStd {
				t.Errorf("mean/std = %v/%v, want %v/%v", mean, std, tt.wantMean, tt.wantStd)
			}
			if len(tt.values) > 0 && (lo != tt.wantMean || hi != tt.wantMean || p50 != tt.wantMean) {
				t.Errorf("lo/hi/p50 = %v/%v/%v, want all %v", lo, hi, p50, tt.wantMean)
			}
		})
	}
}

func TestComputeGenerationStats(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	best := &neural.Individual{
		ID:        7,
		Genome:    neural.CreateBrainGenome(rng, 7, neural.BrainInputs, neural.BrainOutputs, 1.0),
		Fitness:   3,
		SpeciesID: 2,
	}
	gen := &neural.Generation{
		Number: 4,
		Individuals: []*neural.Individual{
			best,
			{ID: 8, Fitness: -1},
			{ID: 9, Fitness: 1},
		},
		Score:  2,
		Frames: 120,
	}
	species := []neural.SpeciesInfo{{ID: 2, Size: 2}, {ID: 3, Size: 1}}

	s := ComputeGenerationStats(gen, best, species, 2*time.Second)

	if s.Generation != 4 || s.Score != 2 || s.Frames != 120 {
		t.Errorf("header = gen %d score %d frames %d", s.Generation, s.Score, s.Frames)
	}
	if s.Population != 3 || s.Species != 2 {
		t.Errorf("population/species = %d/%d, want 3/2", s.Population, s.Species)
	}
	if s.BestFitness != 3 || s.MinFitness != -1 || s.MeanFitness != 1 {
		t.Errorf("fitness best/min/mean = %v/%v/%v, want 3/-1/1", s.BestFitness, s.MinFitness, s.MeanFitness)
	}
	if s.BestGenome != 7 || s.BestSpecies != 2 {
		t.Errorf("best genome/species = %d/%d, want 7/2", s.BestGenome, s.BestSpecies)
	}
	// 3 inputs + bias + 1 output, fully connected
	if s.BestNodes != 5 || s.BestLinks != 4 {
		t.Errorf("best nodes/links = %d/%d, want 5/4", s.BestNodes, s.BestLinks)
	}
	if s.FramesPerSec != 60 {
		t.Errorf("fps = %v, want 60", s.FramesPerSec)
	}
}

func TestSpeciesRecords(t *testing.T) {
	species := []neural.SpeciesInfo{
		{ID: 1, Size: 10, BestFitness: 4, Staleness: 2},
		{ID: 5, Size: 3, BestFitness: 1},
	}
	records := SpeciesRecords(9, species)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, r := range records {
		if r.Generation != 9 || r.ID != species[i].ID || r.Size != species[i].Size {
			t.Errorf("record %d = %+v", i, r)
		}
	}
	if records[0].Staleness != 2 {
		t.Errorf("staleness = %d, want 2", records[0].Staleness)
	}
}
