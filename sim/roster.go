// Package sim holds the glue shared by the game frame loops: agent capabilities,
// the index-aligned agent roster, action decisions and the display contract.
package sim

// Brain is anything that maps a sensor tuple to an output vector.
// Evolved networks, scripted policies and replays all satisfy it.
type Brain interface {
	Activate(inputs []float64) ([]float64, error)
}

// FitnessRecorder accepts fitness deltas for an agent's genome.
// The simulation never reads fitness back.
type FitnessRecorder interface {
	AddFitness(delta float64)
}

// Roster keeps the alive agents of one generation as parallel lists.
// Index i of every list always refers to the same agent; removal happens on
// all lists at once and preserves the relative order of survivors.
type Roster[E any] struct {
	ids      []int
	entities []E
	brains   []Brain
	genomes  []FitnessRecorder
	nextID   int
}

// NewRoster creates an empty roster with room for n agents.
func NewRoster[E any](n int) *Roster[E] {
	return &Roster[E]{
		ids:      make([]int, 0, n),
		entities: make([]E, 0, n),
		brains:   make([]Brain, 0, n),
		genomes:  make([]FitnessRecorder, 0, n),
	}
}

// Add appends an agent and returns its identity.
func (r *Roster[E]) Add(entity E, brain Brain, genome FitnessRecorder) int {
	id := r.nextID
	r.nextID++
	r.ids = append(r.ids, id)
	r.entities = append(r.entities, entity)
	r.brains = append(r.brains, brain)
	r.genomes = append(r.genomes, genome)
	return id
}

// Len returns the number of alive agents.
func (r *Roster[E]) Len() int {
	return len(r.entities)
}

// ID returns the identity of the agent at index i.
func (r *Roster[E]) ID(i int) int {
	return r.ids[i]
}

// Entity returns the game entity at index i.
func (r *Roster[E]) Entity(i int) E {
	return r.entities[i]
}

// Brain returns the controlling network at index i.
func (r *Roster[E]) Brain(i int) Brain {
	return r.brains[i]
}

// Genome returns the fitness sink at index i.
func (r *Roster[E]) Genome(i int) FitnessRecorder {
	return r.genomes[i]
}

// Entities returns the alive entities. The slice is owned by the roster.
func (r *Roster[E]) Entities() []E {
	return r.entities
}

// Reward adds delta to the fitness of every alive agent.
func (r *Roster[E]) Reward(delta float64) {
	for _, g := range r.genomes {
		g.AddFitness(delta)
	}
}

// Retain keeps the agents for which keep returns true and compacts all lists
// in place. keep is called once per index, in order, against the pre-removal
// indices. Returns the number of agents removed.
func (r *Roster[E]) Retain(keep func(i int) bool) int {
	var zero E
	n := len(r.entities)
	w := 0
	for i := 0; i < n; i++ {
		if !keep(i) {
			continue
		}
		if w != i {
			r.ids[w] = r.ids[i]
			r.entities[w] = r.entities[i]
			r.brains[w] = r.brains[i]
			r.genomes[w] = r.genomes[i]
		}
		w++
	}

	// Clear the tail so removed agents can be collected
	for i := w; i < n; i++ {
		r.entities[i] = zero
		r.brains[i] = nil
		r.genomes[i] = nil
	}
	r.ids = r.ids[:w]
	r.entities = r.entities[:w]
	r.brains = r.brains[:w]
	r.genomes = r.genomes[:w]

	return n - w
}

// Remove drops the agents with the given identities. Unknown ids are ignored.
func (r *Roster[E]) Remove(ids ...int) int {
	if len(ids) == 0 {
		return 0
	}
	doomed := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	return r.Retain(func(i int) bool {
		_, dead := doomed[r.ids[i]]
		return !dead
	})
}
