package neural

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// biasInput is the constant fed to the bias node on every activation.
const biasInput = 1.0

// Controller wraps a goNEAT network for runtime evaluation.
type Controller struct {
	Genome  *genetics.Genome
	network *network.Network
	depth   int
	inputs  []float64
}

// NewController builds the phenotype network of an individual.
func NewController(ind *Individual) (*Controller, error) {
	if ind == nil || ind.Genome == nil {
		return nil, errors.New("individual has no genome")
	}
	phenotype, err := ind.Genome.Genesis(ind.Genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome %d: %w", ind.Genome.Id, err)
	}

	// Activate with depth-based steps for proper signal propagation
	depth, err := phenotype.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5 // Fallback for simple networks
	}

	return &Controller{
		Genome:  ind.Genome,
		network: phenotype,
		depth:   depth,
		inputs:  make([]float64, 0, BrainInputs+1),
	}, nil
}

// Activate feeds inputs (plus the bias) through the network and returns the
// output activations. The network is flushed afterwards so every call is
// independent of the previous one.
func (c *Controller) Activate(inputs []float64) ([]float64, error) {
	c.inputs = append(c.inputs[:0], inputs...)
	c.inputs = append(c.inputs, biasInput)

	if err := c.network.LoadSensors(c.inputs); err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	for i := 0; i < c.depth; i++ {
		if _, err := c.network.Activate(); err != nil {
			return nil, fmt.Errorf("activation failed: %w", err)
		}
	}

	outputs := c.network.ReadOutputs()

	if _, err := c.network.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}

	return outputs, nil
}

// NodeCount returns the number of nodes in the network.
func (c *Controller) NodeCount() int {
	return c.network.NodeCount()
}

// LinkCount returns the number of links (connections) in the network.
func (c *Controller) LinkCount() int {
	return c.network.LinkCount()
}

// CreateBrainGenome creates an initial genome: linear input nodes, one bias
// node and sigmoid outputs. Each sensor/output pair is connected with
// probability connectionProb, and every output gets at least one link.
//
// Node IDs: inputs 1..inputs, bias inputs+1, outputs after that.
func CreateBrainGenome(rng *rand.Rand, id, inputs, outputs int, connectionProb float64) *genetics.Genome {
	sensors := inputs + 1
	nodes := make([]*network.NNode, 0, sensors+outputs)

	for i := 1; i <= inputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	bias := network.NewNNode(sensors, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	for i := 1; i <= outputs; i++ {
		node := network.NewNNode(sensors+i, network.OutputNeuron)
		node.ActivationType = neatmath.SigmoidSteepenedActivation
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, sensors*outputs)
	for j := 0; j < outputs; j++ {
		out := nodes[sensors+j]
		connected := false
		for i := 0; i < sensors; i++ {
			if rng.Float64() >= connectionProb {
				continue
			}
			genes = append(genes, newLinkGene(rng, nodes[i], out, sensorInnovation(i, j, outputs)))
			connected = true
		}
		if !connected {
			i := rng.Intn(sensors)
			genes = append(genes, newLinkGene(rng, nodes[i], out, sensorInnovation(i, j, outputs)))
		}
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// sensorInnovation gives every initial sensor/output link the same
// innovation number across genomes so crossover can align them.
func sensorInnovation(sensor, output, outputs int) int64 {
	return int64(sensor*outputs + output + 1)
}

func newLinkGene(rng *rand.Rand, in, out *network.NNode, innov int64) *genetics.Gene {
	return genetics.NewGeneWithTrait(
		nil,               // trait
		rng.Float64()*4-2, // weight in [-2, 2]
		in,                // input node
		out,               // output node
		false,             // recurrent
		innov,             // innovation number
		0,                 // mutation number
	)
}

// GenomeSummary is a serializable view of a genome.
type GenomeSummary struct {
	ID    int           `json:"id"`
	Nodes []NodeSummary `json:"nodes"`
	Links []LinkSummary `json:"links"`
}

// NodeSummary describes one genome node.
type NodeSummary struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Activation string `json:"activation"`
}

// LinkSummary describes one connection gene.
type LinkSummary struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int64   `json:"innovation"`
}

// Summarize returns the serializable view of genome.
func Summarize(genome *genetics.Genome) GenomeSummary {
	s := GenomeSummary{
		ID:    genome.Id,
		Nodes: make([]NodeSummary, 0, len(genome.Nodes)),
		Links: make([]LinkSummary, 0, len(genome.Genes)),
	}
	for _, node := range genome.Nodes {
		s.Nodes = append(s.Nodes, NodeSummary{
			ID:         node.Id,
			Type:       neuronTypeName(node.NeuronType),
			Activation: activationName(node.ActivationType),
		})
	}
	for _, gene := range genome.Genes {
		s.Links = append(s.Links, LinkSummary{
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Enabled:    gene.IsEnabled,
			Innovation: gene.InnovationNum,
		})
	}
	return s
}

func neuronTypeName(t network.NodeNeuronType) string {
	switch t {
	case network.InputNeuron:
		return "input"
	case network.BiasNeuron:
		return "bias"
	case network.OutputNeuron:
		return "output"
	case network.HiddenNeuron:
		return "hidden"
	}
	return "unknown"
}

func activationName(t neatmath.NodeActivationType) string {
	switch t {
	case neatmath.LinearActivation:
		return "linear"
	case neatmath.SigmoidSteepenedActivation:
		return "sigmoid"
	case neatmath.TanhActivation:
		return "tanh"
	}
	return "other"
}
