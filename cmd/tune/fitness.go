package main

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/flappy"
	"github.com/pthm-cable/arcade/neural"
	"github.com/pthm-cable/arcade/pong"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
)

// FitnessEvaluator runs headless evolutions and scores parameter vectors.
type FitnessEvaluator struct {
	params      *ParamVector
	game        string
	generations int
	seeds       []int64
	gameConfig  *config.Config
	neatConfig  *neural.Config
	atlas       *sprite.Atlas

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestScore   int
	lastScore   float64 // mean best game score from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run is capped at the
// game config's max_frames, which must be positive for pong and flappy
// agents that never die.
func NewFitnessEvaluator(params *ParamVector, game string, generations int, seeds []int64, gameCfg *config.Config, neatCfg *neural.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		game:        game,
		generations: generations,
		seeds:       seeds,
		gameConfig:  gameCfg,
		neatConfig:  neatCfg,
		atlas:       sprite.Procedural(),
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the mean best game score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// BestScore returns the best single-run game score seen so far.
func (fe *FitnessEvaluator) BestScore() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestScore
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	score   int
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated best genome fitness averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	neatCfg := fe.params.ApplyToConfig(fe.neatConfig, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEvolution(neatCfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalScore float64
	bestScore := 0
	for _, r := range results {
		totalFitness += r.fitness
		totalScore += float64(r.score)
		bestScore = max(bestScore, r.score)
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.bestScore = max(fe.bestScore, bestScore)
	fe.lastScore = totalScore / n
	fe.mu.Unlock()

	return avgFitness
}

// runEvolution evolves a fresh population for the configured number of
// generations with its own random source.
func (fe *FitnessEvaluator) runEvolution(neatCfg *neural.Config, seed int64) seedResult {
	rng := rand.New(rand.NewSource(seed))
	session := &sim.Session{}

	var eval neural.EvaluateFunc
	if fe.game == "pong" {
		eval = pong.Evaluate(fe.gameConfig, fe.atlas, nil, session, rng)
	} else {
		eval = flappy.Evaluate(fe.gameConfig, fe.atlas, nil, session, rng)
	}

	pop := neural.NewPopulation(neatCfg, rng)
	best, err := pop.Run(context.Background(), eval, fe.generations)
	if err != nil || best == nil {
		// Extinction without reset or an empty run scores worst
		return seedResult{fitness: math.MaxFloat64 / float64(len(fe.seeds)+1)}
	}
	return seedResult{fitness: -best.Fitness, score: session.BestScore}
}
