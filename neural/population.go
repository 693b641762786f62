package neural

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// ErrExtinction is returned by Run when every species stagnated and
// ResetOnExtinction is off.
var ErrExtinction = errors.New("neural: population went extinct")

// Individual is one genome of the population together with its fitness.
type Individual struct {
	ID        int
	Genome    *genetics.Genome
	Fitness   float64
	SpeciesID int
}

// AddFitness applies a fitness delta.
func (ind *Individual) AddFitness(delta float64) {
	ind.Fitness += delta
}

// Generation is handed to the evaluation function once per generation.
// The evaluator sets Score and Frames for reporting.
type Generation struct {
	Number      int
	Individuals []*Individual
	Score       int // Game score reached by the generation
	Frames      int // Ticks simulated
}

// EvaluateFunc assigns fitness to every individual of a generation.
type EvaluateFunc func(ctx context.Context, gen *Generation) error

// Reporter observes a population run.
type Reporter interface {
	StartGeneration(number int)
	PostEvaluate(gen *Generation, best *Individual, species []SpeciesInfo)
	EndGeneration(gen *Generation, species []SpeciesInfo)
	FoundSolution(gen *Generation, best *Individual)
}

// Population evolves genomes with speciated NEAT reproduction.
type Population struct {
	cfg       *Config
	rng       *rand.Rand
	ids       *GenomeIDGenerator
	species   *SpeciesSet
	members   []*Individual
	reporters []Reporter

	generation int
	best       *Individual // Snapshot of the fittest individual seen so far
}

// NewPopulation creates and speciates a fresh random population.
func NewPopulation(cfg *Config, rng *rand.Rand) *Population {
	p := &Population{
		cfg:     cfg,
		rng:     rng,
		ids:     NewGenomeIDGenerator(),
		species: NewSpeciesSet(cfg.NEAT),
	}
	p.members = p.seed()
	p.species.Speciate(p.members)
	return p
}

func (p *Population) seed() []*Individual {
	members := make([]*Individual, p.cfg.NEAT.PopSize)
	for i := range members {
		id := p.ids.NextID()
		genome := CreateBrainGenome(p.rng, id, p.cfg.Brain.Inputs, p.cfg.Brain.Outputs, p.cfg.Brain.InitialConnectionProb)
		members[i] = &Individual{ID: id, Genome: genome}
	}
	return members
}

// AddReporter registers r for run events.
func (p *Population) AddReporter(r Reporter) {
	p.reporters = append(p.reporters, r)
}

// Members returns the current generation's individuals.
func (p *Population) Members() []*Individual { return p.members }

// Species returns the current species partition.
func (p *Population) Species() *SpeciesSet { return p.species }

// Generation returns the number of the generation about to be evaluated.
func (p *Population) Generation() int { return p.generation }

// Best returns a snapshot of the fittest individual seen so far, or nil.
func (p *Population) Best() *Individual { return p.best }

// Run evaluates and reproduces the population for at most generations
// generations (0 = until the fitness threshold is met). It returns the best
// individual seen. An evaluation error stops the run and is returned as is.
func (p *Population) Run(ctx context.Context, eval EvaluateFunc, generations int) (*Individual, error) {
	for k := 0; generations <= 0 || k < generations; k++ {
		if err := ctx.Err(); err != nil {
			return p.best, err
		}
		for _, r := range p.reporters {
			r.StartGeneration(p.generation)
		}

		for _, ind := range p.members {
			ind.Fitness = 0
		}
		gen := &Generation{Number: p.generation, Individuals: p.members}
		if err := eval(ctx, gen); err != nil {
			return p.best, err
		}

		best := p.fittest()
		if p.best == nil || best.Fitness > p.best.Fitness {
			snapshot := *best
			p.best = &snapshot
		}

		p.species.UpdateFitness()
		for _, r := range p.reporters {
			r.PostEvaluate(gen, best, p.species.Infos())
		}

		if !p.cfg.Evolution.NoFitnessTermination && best.Fitness >= p.cfg.Evolution.FitnessThreshold {
			for _, r := range p.reporters {
				r.FoundSolution(gen, best)
			}
			return p.best, nil
		}

		next, err := p.reproduce()
		if err != nil {
			return p.best, err
		}
		if len(next) == 0 {
			if !p.cfg.Evolution.ResetOnExtinction {
				return p.best, ErrExtinction
			}
			next = p.seed()
		}
		p.members = next
		p.species.Speciate(p.members)

		for _, r := range p.reporters {
			r.EndGeneration(gen, p.species.Infos())
		}
		p.generation++
	}
	return p.best, nil
}

// fittest returns the member with the highest fitness, first one on ties.
func (p *Population) fittest() *Individual {
	best := p.members[0]
	for _, ind := range p.members[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// reproduce builds the next generation from the evaluated species. It
// returns an empty slice when stagnation removed every species.
func (p *Population) reproduce() ([]*Individual, error) {
	evo := p.cfg.Evolution
	opts := p.cfg.NEAT

	p.species.RemoveStale(evo.SpeciesElitism)
	if len(p.species.Species) == 0 {
		return nil, nil
	}
	p.species.AdjustFitness()

	minSize := max(evo.MinSpeciesSize, evo.Elitism)
	counts := p.species.SpawnCounts(opts.PopSize, minSize)

	next := make([]*Individual, 0, opts.PopSize)
	for i, sp := range p.species.Species {
		spawn := counts[i]
		members := make([]*Individual, len(sp.Members))
		copy(members, sp.Members)
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Fitness > members[b].Fitness
		})

		// Elites move on unchanged
		for e := 0; e < evo.Elitism && e < len(members) && spawn > 0; e++ {
			next = append(next, &Individual{ID: members[e].ID, Genome: members[e].Genome})
			spawn--
		}
		if spawn <= 0 {
			continue
		}

		// Only the top SurvivalThresh share of each species may breed
		cutoff := int(math.Ceil(opts.SurvivalThresh * float64(len(members))))
		cutoff = min(max(cutoff, 2), len(members))
		parents := members[:cutoff]

		for ; spawn > 0; spawn-- {
			child, err := p.offspring(parents)
			if err != nil {
				return nil, fmt.Errorf("species %d: %w", sp.ID, err)
			}
			next = append(next, child)
		}
	}
	return next, nil
}

// offspring breeds one child from two random parents (possibly the same).
func (p *Population) offspring(parents []*Individual) (*Individual, error) {
	opts := p.cfg.NEAT
	id := p.ids.NextID()

	p1 := parents[p.rng.Intn(len(parents))]
	p2 := parents[p.rng.Intn(len(parents))]

	var (
		genome  *genetics.Genome
		err     error
		crossed bool
	)
	if p1 != p2 && p.rng.Float64() >= opts.MutateOnlyProb {
		genome, err = CrossoverGenomes(p.rng, p1.Genome, p2.Genome, p1.Fitness, p2.Fitness, id)
		crossed = true
	} else {
		genome, err = CloneGenome(p1.Genome, id)
	}
	if err != nil {
		return nil, err
	}

	if !crossed || p.rng.Float64() >= opts.MateOnlyProb {
		if _, err := MutateBrainGenome(p.rng, genome, opts, p.ids); err != nil {
			return nil, err
		}
	}
	return &Individual{ID: id, Genome: genome}, nil
}
