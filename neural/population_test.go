package neural

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

type recordingReporter struct {
	started  []int
	evals    int
	ended    int
	solution *Individual
}

func (r *recordingReporter) StartGeneration(n int) { r.started = append(r.started, n) }
func (r *recordingReporter) PostEvaluate(*Generation, *Individual, []SpeciesInfo) {
	r.evals++
}
func (r *recordingReporter) EndGeneration(*Generation, []SpeciesInfo) { r.ended++ }
func (r *recordingReporter) FoundSolution(_ *Generation, best *Individual) {
	r.solution = best
}

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.NEAT.PopSize = 12
	return cfg
}

func TestPopulationRunGenerations(t *testing.T) {
	cfg := smallConfig()
	pop := NewPopulation(cfg, rand.New(rand.NewSource(1)))
	rep := &recordingReporter{}
	pop.AddReporter(rep)

	evalRng := rand.New(rand.NewSource(2))
	eval := func(ctx context.Context, gen *Generation) error {
		if len(gen.Individuals) == 0 {
			t.Fatal("empty generation")
		}
		seen := make(map[int]bool)
		for _, ind := range gen.Individuals {
			if ind.Fitness != 0 {
				t.Fatalf("generation %d: fitness not reset for %d", gen.Number, ind.ID)
			}
			if seen[ind.ID] {
				t.Fatalf("generation %d: duplicate individual %d", gen.Number, ind.ID)
			}
			seen[ind.ID] = true
			ind.AddFitness(evalRng.Float64() * 10)
		}
		return nil
	}

	best, err := pop.Run(context.Background(), eval, 5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if best == nil || best.Genome == nil {
		t.Fatal("expected a best individual")
	}
	if len(rep.started) != 5 || rep.evals != 5 || rep.ended != 5 {
		t.Errorf("reporter saw %d starts, %d evals, %d ends, want 5 each", len(rep.started), rep.evals, rep.ended)
	}
	for i, n := range rep.started {
		if n != i {
			t.Errorf("generation numbers %v, want 0..4", rep.started)
			break
		}
	}
	if rep.solution != nil {
		t.Error("threshold of 100 should not be reached")
	}
	if pop.Generation() != 5 {
		t.Errorf("generation = %d, want 5", pop.Generation())
	}
}

func TestPopulationSizeStaysFixed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NEAT.PopSize = 20
	// Nearly every genome becomes its own species
	cfg.NEAT.CompatThreshold = 0.01
	cfg.Evolution.NoFitnessTermination = true
	pop := NewPopulation(cfg, rand.New(rand.NewSource(7)))

	evalRng := rand.New(rand.NewSource(8))
	sizes := []int{}
	eval := func(ctx context.Context, gen *Generation) error {
		sizes = append(sizes, len(gen.Individuals))
		for _, ind := range gen.Individuals {
			ind.AddFitness(evalRng.Float64() * 10)
		}
		return nil
	}

	if _, err := pop.Run(context.Background(), eval, 8); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, n := range sizes {
		if n != cfg.NEAT.PopSize {
			t.Fatalf("generation %d has %d individuals, want %d (sizes %v)", i, n, cfg.NEAT.PopSize, sizes)
		}
	}
}

func TestPopulationStopsAtThreshold(t *testing.T) {
	cfg := smallConfig()
	cfg.Evolution.FitnessThreshold = 50
	pop := NewPopulation(cfg, rand.New(rand.NewSource(3)))
	rep := &recordingReporter{}
	pop.AddReporter(rep)

	calls := 0
	eval := func(ctx context.Context, gen *Generation) error {
		calls++
		if gen.Number == 2 {
			gen.Individuals[3].AddFitness(60)
		}
		return nil
	}

	best, err := pop.Run(context.Background(), eval, 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("evaluated %d generations, want 3", calls)
	}
	if best.Fitness != 60 || rep.solution == nil || rep.solution.Fitness != 60 {
		t.Errorf("best fitness %v, solution %+v", best.Fitness, rep.solution)
	}
	if rep.ended != 2 {
		t.Errorf("ended %d generations, want 2", rep.ended)
	}
}

func TestPopulationEvaluationError(t *testing.T) {
	pop := NewPopulation(smallConfig(), rand.New(rand.NewSource(4)))
	errStop := errors.New("stop")

	_, err := pop.Run(context.Background(), func(context.Context, *Generation) error { return errStop }, 3)
	if !errors.Is(err, errStop) {
		t.Errorf("Run error = %v, want %v", err, errStop)
	}
}

func TestPopulationCancelled(t *testing.T) {
	pop := NewPopulation(smallConfig(), rand.New(rand.NewSource(5)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pop.Run(ctx, func(context.Context, *Generation) error { return nil }, 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestPopulationExtinction(t *testing.T) {
	flat := func(context.Context, *Generation) error { return nil }

	cfg := smallConfig()
	cfg.NEAT.DropOffAge = 0
	cfg.Evolution.SpeciesElitism = 0
	cfg.Evolution.ResetOnExtinction = false

	pop := NewPopulation(cfg, rand.New(rand.NewSource(6)))
	if _, err := pop.Run(context.Background(), flat, 3); !errors.Is(err, ErrExtinction) {
		t.Fatalf("Run error = %v, want ErrExtinction", err)
	}

	cfg.Evolution.ResetOnExtinction = true
	pop = NewPopulation(cfg, rand.New(rand.NewSource(6)))
	first := pop.Members()[0].ID
	if _, err := pop.Run(context.Background(), flat, 3); err != nil {
		t.Fatalf("Run with reset failed: %v", err)
	}
	if len(pop.Members()) != cfg.NEAT.PopSize {
		t.Errorf("reset population has %d members, want %d", len(pop.Members()), cfg.NEAT.PopSize)
	}
	if pop.Members()[0].ID == first {
		t.Error("reset population should be made of new genomes")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") failed: %v", err)
	}
	if cfg.Brain.Inputs != BrainInputs || cfg.NEAT.PopSize != 50 {
		t.Errorf("unexpected defaults: %+v", cfg.Brain)
	}

	path := filepath.Join(t.TempDir(), "neat.yaml")
	data := []byte("brain:\n  initial_connection_prob: 0.5\nevolution:\n  fitness_threshold: 20\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Brain.InitialConnectionProb != 0.5 || cfg.Evolution.FitnessThreshold != 20 {
		t.Errorf("overlay not applied: %+v %+v", cfg.Brain, cfg.Evolution)
	}
	if cfg.Evolution.Elitism != 2 || cfg.Brain.Inputs != BrainInputs {
		t.Error("fields missing from the file should keep their defaults")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigRejectsBrainShape(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"extra input", "brain:\n  inputs: 4\n"},
		{"missing input", "brain:\n  inputs: 2\n"},
		{"extra output", "brain:\n  outputs: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "neat.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected brain shape to be rejected")
			}
		})
	}
}
