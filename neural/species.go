package neural

import (
	"math"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Species represents a group of genetically similar individuals.
type Species struct {
	ID              int
	Representative  *genetics.Genome // Used for compatibility comparisons
	Members         []*Individual
	BestFitness     float64 // Best member fitness ever seen
	AvgFitness      float64 // Mean member fitness of the last evaluation
	AdjustedFitness float64 // AvgFitness normalized against the whole population
	Age             int     // Generations since species was created
	Staleness       int     // Generations without fitness improvement

	evaluated bool
}

// SpeciesSet partitions a population into species.
type SpeciesSet struct {
	Species       []*Species
	opts          *neat.Options
	nextSpeciesID int
}

// NewSpeciesSet creates an empty species set.
func NewSpeciesSet(opts *neat.Options) *SpeciesSet {
	return &SpeciesSet{
		opts:          opts,
		nextSpeciesID: 1,
	}
}

// Speciate assigns every member to the first species whose representative
// is within CompatThreshold, creating species as needed. Species left
// without members are dropped and each survivor's representative becomes
// the member closest to the previous one.
func (s *SpeciesSet) Speciate(members []*Individual) {
	for _, sp := range s.Species {
		sp.Members = sp.Members[:0]
	}

	// Compare against the representatives of the previous generation
	reps := make([]*genetics.Genome, len(s.Species))
	for i, sp := range s.Species {
		reps[i] = sp.Representative
	}

	closest := make(map[*Species]float64, len(s.Species))
	for _, ind := range members {
		var home *Species
		dist := 0.0
		for i, sp := range s.Species {
			rep := sp.Representative
			if i < len(reps) {
				rep = reps[i]
			}
			d := GenomeCompatibility(ind.Genome, rep, s.opts)
			if d < s.opts.CompatThreshold {
				home, dist = sp, d
				break
			}
		}
		if home == nil {
			home = s.newSpecies(ind.Genome)
		}

		home.Members = append(home.Members, ind)
		ind.SpeciesID = home.ID
		if best, ok := closest[home]; !ok || dist < best {
			closest[home] = dist
			home.Representative = ind.Genome
		}
	}

	active := s.Species[:0]
	for _, sp := range s.Species {
		if len(sp.Members) > 0 {
			active = append(active, sp)
		}
	}
	s.Species = active
}

func (s *SpeciesSet) newSpecies(rep *genetics.Genome) *Species {
	sp := &Species{
		ID:             s.nextSpeciesID,
		Representative: rep,
	}
	s.nextSpeciesID++
	s.Species = append(s.Species, sp)
	return sp
}

// UpdateFitness recomputes per-species fitness after an evaluation and
// advances age and staleness.
func (s *SpeciesSet) UpdateFitness() {
	for _, sp := range s.Species {
		sp.Age++
		if len(sp.Members) == 0 {
			sp.Staleness++
			continue
		}

		total := 0.0
		best := math.Inf(-1)
		for _, m := range sp.Members {
			total += m.Fitness
			best = max(best, m.Fitness)
		}
		sp.AvgFitness = total / float64(len(sp.Members))

		if !sp.evaluated || best > sp.BestFitness {
			sp.evaluated = true
			sp.BestFitness = best
			sp.Staleness = 0
		} else {
			sp.Staleness++
		}
	}
}

// RemoveStale drops species that have not improved for DropOffAge
// generations. The protect best species by BestFitness are always kept.
func (s *SpeciesSet) RemoveStale(protect int) {
	ranked := make([]*Species, len(s.Species))
	copy(ranked, s.Species)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestFitness > ranked[j].BestFitness
	})
	safe := make(map[int]bool, protect)
	for i := 0; i < protect && i < len(ranked); i++ {
		safe[ranked[i].ID] = true
	}

	active := s.Species[:0]
	for _, sp := range s.Species {
		if safe[sp.ID] || sp.Staleness < s.opts.DropOffAge {
			active = append(active, sp)
		}
	}
	s.Species = active
}

// AdjustFitness normalizes each species' mean fitness into [0, 1] against
// the fitness range of all remaining members.
func (s *SpeciesSet) AdjustFitness() {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sp := range s.Species {
		for _, m := range sp.Members {
			lo = min(lo, m.Fitness)
			hi = max(hi, m.Fitness)
		}
	}
	span := max(1.0, hi-lo)
	for _, sp := range s.Species {
		sp.AdjustedFitness = (sp.AvgFitness - lo) / span
	}
}

// SpawnCounts splits popSize offspring between the species in proportion to
// adjusted fitness. The counts always add up to popSize. Every species gets
// at least minSize, lowered to popSize/n when there are too many species.
func (s *SpeciesSet) SpawnCounts(popSize, minSize int) []int {
	n := len(s.Species)
	counts := make([]int, n)
	if n == 0 {
		return counts
	}
	minSize = min(minSize, popSize/n)

	total := 0.0
	for _, sp := range s.Species {
		total += sp.AdjustedFitness
	}

	// Largest remainder apportionment
	type share struct {
		idx  int
		frac float64
	}
	shares := make([]share, n)
	assigned := 0
	for i, sp := range s.Species {
		exact := float64(popSize) / float64(n)
		if total > 0 {
			exact = sp.AdjustedFitness / total * float64(popSize)
		}
		counts[i] = int(exact)
		shares[i] = share{i, exact - float64(counts[i])}
		assigned += counts[i]
	}
	sort.SliceStable(shares, func(a, b int) bool { return shares[a].frac > shares[b].frac })
	for i := 0; assigned < popSize; i = (i + 1) % n {
		counts[shares[i].idx]++
		assigned++
	}

	for i := range counts {
		if counts[i] < minSize {
			assigned += minSize - counts[i]
			counts[i] = minSize
		}
	}

	// Take the excess back from the largest species
	for assigned > popSize {
		largest := 0
		for i := range counts {
			if counts[i] > counts[largest] {
				largest = i
			}
		}
		if counts[largest] <= minSize {
			break
		}
		counts[largest]--
		assigned--
	}
	return counts
}

// SpeciesInfo contains display information about a single species.
type SpeciesInfo struct {
	ID              int
	Size            int
	BestFitness     float64
	AvgFitness      float64
	AdjustedFitness float64
	Age             int
	Staleness       int
}

// Infos returns information about every species, largest first.
func (s *SpeciesSet) Infos() []SpeciesInfo {
	sorted := make([]*Species, len(s.Species))
	copy(sorted, s.Species)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	result := make([]SpeciesInfo, len(sorted))
	for i, sp := range sorted {
		result[i] = SpeciesInfo{
			ID:              sp.ID,
			Size:            len(sp.Members),
			BestFitness:     sp.BestFitness,
			AvgFitness:      sp.AvgFitness,
			AdjustedFitness: sp.AdjustedFitness,
			Age:             sp.Age,
			Staleness:       sp.Staleness,
		}
	}
	return result
}
