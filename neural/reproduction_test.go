package neural

import (
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/network"
)

func TestGenomeIDGenerator(t *testing.T) {
	gen := NewGenomeIDGenerator()

	id1 := gen.NextID()
	id2 := gen.NextID()
	id3 := gen.NextID()

	if id1 >= id2 || id2 >= id3 {
		t.Errorf("IDs should be strictly increasing: %d, %d, %d", id1, id2, id3)
	}

	innov1 := gen.NextInnovation()
	innov2 := gen.NextInnovation()

	if innov1 >= innov2 {
		t.Errorf("innovations should be strictly increasing: %d, %d", innov1, innov2)
	}
	if innov1 < initialInnovNum {
		t.Errorf("mutation innovations must not collide with initial links: %d", innov1)
	}
}

func TestCrossoverGenomes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	parent1 := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	parent2 := CreateBrainGenome(rng, 2, BrainInputs, BrainOutputs, 1)

	child, err := CrossoverGenomes(rng, parent1, parent2, 1.0, 1.0, 3)
	if err != nil {
		t.Fatalf("CrossoverGenomes failed: %v", err)
	}
	if child.Id != 3 {
		t.Errorf("expected child ID 3, got %d", child.Id)
	}
	// Fully connected parents share every innovation
	if len(child.Genes) != len(parent1.Genes) {
		t.Errorf("expected %d genes, got %d", len(parent1.Genes), len(child.Genes))
	}

	for i := 1; i < len(child.Nodes); i++ {
		if child.Nodes[i-1].Id >= child.Nodes[i].Id {
			t.Fatal("child nodes should be sorted by ID")
		}
	}
}

func TestCrossoverKeepsFitterParentStructure(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	idGen := NewGenomeIDGenerator()

	fit := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	weak := CreateBrainGenome(rng, 2, BrainInputs, BrainOutputs, 1)
	if !addNode(rng, fit, idGen) {
		t.Fatal("addNode failed")
	}

	for trial := 0; trial < 20; trial++ {
		child, err := CrossoverGenomes(rng, weak, fit, 0, 10, 3)
		if err != nil {
			t.Fatalf("CrossoverGenomes failed: %v", err)
		}
		if len(child.Genes) != len(fit.Genes) {
			t.Fatalf("child should carry all %d genes of the fitter parent, got %d", len(fit.Genes), len(child.Genes))
		}
		if len(child.Nodes) != len(fit.Nodes) {
			t.Fatalf("child should carry the hidden node, got %d nodes", len(child.Nodes))
		}
	}
}

func TestCrossoverNil(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	if _, err := CrossoverGenomes(rng, g, nil, 0, 0, 2); err == nil {
		t.Error("expected error for nil parent")
	}
}

func TestCloneGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	original := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)

	clone, err := CloneGenome(original, 2)
	if err != nil {
		t.Fatalf("CloneGenome failed: %v", err)
	}
	if clone.Id != 2 {
		t.Errorf("expected clone ID 2, got %d", clone.Id)
	}
	if len(clone.Genes) != len(original.Genes) || len(clone.Nodes) != len(original.Nodes) {
		t.Fatal("clone should match the original's shape")
	}

	// Deep copy: changing the clone leaves the original alone
	before := original.Genes[0].Link.ConnectionWeight
	clone.Genes[0].Link.ConnectionWeight = before + 1
	if original.Genes[0].Link.ConnectionWeight != before {
		t.Error("mutating the clone changed the original")
	}
	if clone.Genes[0].Link.InNode == original.Genes[0].Link.InNode {
		t.Error("clone shares node pointers with the original")
	}
}

func TestMutateWeightsClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	genome := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)

	for i := 0; i < 200; i++ {
		mutateWeights(rng, genome, 5)
	}
	for _, gene := range genome.Genes {
		w := gene.Link.ConnectionWeight
		if w > maxConnectionWeight || w < -maxConnectionWeight {
			t.Fatalf("weight %v outside clamp", w)
		}
	}
}

func TestAddNode(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	idGen := NewGenomeIDGenerator()
	genome := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	genes := len(genome.Genes)

	if !addNode(rng, genome, idGen) {
		t.Fatal("addNode failed")
	}
	if len(genome.Genes) != genes+2 {
		t.Errorf("expected %d genes, got %d", genes+2, len(genome.Genes))
	}

	disabled := 0
	for _, gene := range genome.Genes {
		if !gene.IsEnabled {
			disabled++
		}
	}
	if disabled != 1 {
		t.Errorf("expected the split link to be disabled, %d disabled", disabled)
	}

	hidden := genome.Nodes[len(genome.Nodes)-1]
	if hidden.NeuronType != network.HiddenNeuron {
		t.Error("new node should be hidden")
	}
}

func TestAddLinkStaysFeedForward(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	idGen := NewGenomeIDGenerator()
	genome := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 0)

	for i := 0; i < 30; i++ {
		addNode(rng, genome, idGen)
		addLink(rng, genome, idGen)
	}

	seen := make(map[int64]bool)
	for _, gene := range genome.Genes {
		in, out := gene.Link.InNode, gene.Link.OutNode
		if out.NeuronType == network.InputNeuron || out.NeuronType == network.BiasNeuron {
			t.Fatalf("link %d->%d ends in a sensor", in.Id, out.Id)
		}
		if in.NeuronType == network.OutputNeuron {
			t.Fatalf("link %d->%d leaves an output", in.Id, out.Id)
		}
		key := connectionKey(in.Id, out.Id)
		if seen[key] {
			t.Fatalf("duplicate link %d->%d", in.Id, out.Id)
		}
		seen[key] = true
		if reaches(genome, out.Id, in.Id) {
			t.Fatalf("link %d->%d closes a loop", in.Id, out.Id)
		}
	}

	if _, err := NewController(&Individual{ID: 1, Genome: genome}); err != nil {
		t.Fatalf("mutated genome should still build: %v", err)
	}
}

func TestToggleEnableKeepsOutputConnected(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	genome := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 0)

	for i := 0; i < 50; i++ {
		toggleEnable(rng, genome)
	}

	enabled := 0
	for _, gene := range genome.Genes {
		if gene.IsEnabled {
			enabled++
		}
	}
	if enabled == 0 {
		t.Error("the only link into the output should stay enabled")
	}
}

func TestMutateBrainGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	idGen := NewGenomeIDGenerator()
	opts := DefaultNEATOptions()
	opts.MutateAddNodeProb = 1
	opts.MutateAddLinkProb = 1

	genome := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	nodes := len(genome.Nodes)

	mutated, err := MutateBrainGenome(rng, genome, opts, idGen)
	if err != nil {
		t.Fatalf("MutateBrainGenome failed: %v", err)
	}
	if !mutated || len(genome.Nodes) != nodes+1 {
		t.Errorf("expected a structural mutation, got %d nodes", len(genome.Nodes))
	}

	if _, err := MutateBrainGenome(rng, nil, opts, idGen); err == nil {
		t.Error("expected error for nil genome")
	}
}

func TestGenomeCompatibility(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	opts := DefaultNEATOptions()
	idGen := NewGenomeIDGenerator()

	g1 := CreateBrainGenome(rng, 1, BrainInputs, BrainOutputs, 1)
	same, _ := CloneGenome(g1, 2)

	if d := GenomeCompatibility(g1, same, opts); d != 0 {
		t.Errorf("identical genomes should have distance 0, got %v", d)
	}

	other, _ := CloneGenome(g1, 3)
	addNode(rng, other, idGen)
	// Two excess genes, matching weights unchanged
	if d := GenomeCompatibility(g1, other, opts); d != 2*opts.ExcessCoeff {
		t.Errorf("expected distance %v, got %v", 2*opts.ExcessCoeff, d)
	}

	if d := GenomeCompatibility(g1, nil, opts); d < opts.CompatThreshold {
		t.Errorf("nil genome should be incompatible, got %v", d)
	}
}
