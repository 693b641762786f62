package neural

import (
	"fmt"
	"os"

	"github.com/yaricom/goNEAT/v4/neat"
	"gopkg.in/yaml.v3"
)

// BrainInputs is the number of sensor values fed to every controller.
const BrainInputs = 3

// BrainOutputs is the number of controller outputs. Only the first is read.
const BrainOutputs = 1

// Config holds all neuro-evolution configuration.
type Config struct {
	NEAT      *neat.Options   `yaml:"neat"`
	Brain     BrainConfig     `yaml:"brain"`
	Evolution EvolutionConfig `yaml:"evolution"`
}

// BrainConfig holds the shape of the initial networks.
type BrainConfig struct {
	Inputs                int     `yaml:"inputs"`
	Outputs               int     `yaml:"outputs"`
	InitialConnectionProb float64 `yaml:"initial_connection_prob"`
}

// EvolutionConfig holds population-level settings not covered by neat.Options.
type EvolutionConfig struct {
	FitnessThreshold     float64 `yaml:"fitness_threshold"`      // Stop once the best genome reaches this
	NoFitnessTermination bool    `yaml:"no_fitness_termination"` // Ignore FitnessThreshold
	Elitism              int     `yaml:"elitism"`                // Best members copied unchanged per species
	SpeciesElitism       int     `yaml:"species_elitism"`        // Species protected from stagnation
	MinSpeciesSize       int     `yaml:"min_species_size"`
	ResetOnExtinction    bool    `yaml:"reset_on_extinction"` // Start over instead of failing when every species dies out
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NEAT: DefaultNEATOptions(),
		Brain: BrainConfig{
			Inputs:                BrainInputs,
			Outputs:               BrainOutputs,
			InitialConnectionProb: 1.0,
		},
		Evolution: EvolutionConfig{
			FitnessThreshold:  100,
			Elitism:           2,
			SpeciesElitism:    2,
			MinSpeciesSize:    2,
			ResetOnExtinction: true,
		},
	}
}

// DefaultNEATOptions returns NEAT options tuned for the arcade games.
func DefaultNEATOptions() *neat.Options {
	return &neat.Options{
		// Weight mutation
		WeightMutPower:        0.5,
		MutateLinkWeightsProb: 0.8,

		// Structural mutation rates
		MutateAddNodeProb:      0.2,
		MutateAddLinkProb:      0.5,
		MutateToggleEnableProb: 0.01,

		// Mating probabilities
		MutateOnlyProb: 0.25,
		MateOnlyProb:   0.2,

		// Speciation
		CompatThreshold: 3.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.5,

		// Species management
		DropOffAge:     20,
		SurvivalThresh: 0.2,

		PopSize: 50,
	}
}

// LoadConfig loads configuration from a YAML file over the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading neat config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing neat config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the population cannot run with.
func (c *Config) Validate() error {
	if c.NEAT == nil {
		return fmt.Errorf("neat options missing")
	}
	if c.NEAT.PopSize < 2 {
		return fmt.Errorf("neat.pop_size must be at least 2, got %d", c.NEAT.PopSize)
	}
	// The games always feed BrainInputs sensors and read BrainOutputs values
	if c.Brain.Inputs != BrainInputs || c.Brain.Outputs != BrainOutputs {
		return fmt.Errorf("brain must have %d inputs and %d outputs, got %d/%d",
			BrainInputs, BrainOutputs, c.Brain.Inputs, c.Brain.Outputs)
	}
	if c.Evolution.MinSpeciesSize < 1 {
		return fmt.Errorf("evolution.min_species_size must be positive, got %d", c.Evolution.MinSpeciesSize)
	}
	return nil
}
