package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/pthm-cable/arcade/neural"
)

// HallEntry is one of the best genomes seen during a run.
type HallEntry struct {
	GenomeID   int                  `json:"genome_id"`
	Generation int                  `json:"generation"`
	SpeciesID  int                  `json:"species"`
	Fitness    float64              `json:"fitness"`
	Score      int                  `json:"score"`
	Genome     neural.GenomeSummary `json:"genome"`
}

// HallOfFame keeps the fittest distinct genomes of a run, best first.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize genomes.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers an evaluated individual to the hall. A genome already in
// the hall (an elite re-evaluated in a later generation) only keeps its best
// fitness. Returns true if the hall changed.
func (hof *HallOfFame) Consider(gen *neural.Generation, ind *neural.Individual) bool {
	if ind == nil || ind.Genome == nil {
		return false
	}

	for i, e := range hof.entries {
		if e.GenomeID != ind.ID {
			continue
		}
		if ind.Fitness <= e.Fitness {
			return false
		}
		hof.entries = append(hof.entries[:i], hof.entries[i+1:]...)
		break
	}

	entry := HallEntry{
		GenomeID:   ind.ID,
		Generation: gen.Number,
		SpeciesID:  ind.SpeciesID,
		Fitness:    ind.Fitness,
		Score:      gen.Score,
		Genome:     neural.Summarize(ind.Genome),
	}

	hof.entries = hof.insertEntry(hof.entries, entry)
	return hof.contains(ind.ID)
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

func (hof *HallOfFame) contains(genomeID int) bool {
	for _, e := range hof.entries {
		if e.GenomeID == genomeID {
			return true
		}
	}
	return false
}

// Entries returns the hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopFitness returns the highest fitness in the hall, or 0 if it is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}
