// Package main provides CMA-ES tuning of the NEAT hyperparameters.
package main

import (
	"strings"

	"github.com/pthm-cable/arcade/neural"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Key path in the NEAT config YAML
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Defaults match neural.DefaultNEATOptions.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Speciation
			{Name: "compat_threshold", Path: "neat.compat_threshold", Min: 1.0, Max: 6.0, Default: 3.0},
			// Weight mutation
			{Name: "weight_mut_power", Path: "neat.weight_mut_power", Min: 0.1, Max: 2.0, Default: 0.5},
			{Name: "link_weights_prob", Path: "neat.mutate_link_weights_prob", Min: 0.2, Max: 1.0, Default: 0.8},
			// Structural mutation
			{Name: "add_node_prob", Path: "neat.mutate_add_node_prob", Min: 0.0, Max: 0.5, Default: 0.2},
			{Name: "add_link_prob", Path: "neat.mutate_add_link_prob", Min: 0.0, Max: 0.9, Default: 0.5},
			// Mating
			{Name: "mutate_only_prob", Path: "neat.mutate_only_prob", Min: 0.0, Max: 1.0, Default: 0.25},
			{Name: "survival_thresh", Path: "neat.survival_thresh", Min: 0.1, Max: 0.6, Default: 0.2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig returns a copy of base with the parameter values applied.
// base is left untouched.
func (pv *ParamVector) ApplyToConfig(base *neural.Config, values []float64) *neural.Config {
	clamped := pv.Clamp(values)

	cfg := *base
	opts := *base.NEAT
	cfg.NEAT = &opts

	// Order must match Specs order
	opts.CompatThreshold = clamped[0]
	opts.WeightMutPower = clamped[1]
	opts.MutateLinkWeightsProb = clamped[2]
	opts.MutateAddNodeProb = clamped[3]
	opts.MutateAddLinkProb = clamped[4]
	opts.MutateOnlyProb = clamped[5]
	opts.SurvivalThresh = clamped[6]

	return &cfg
}

// ExtractFromConfig extracts current parameter values from a config.
func (pv *ParamVector) ExtractFromConfig(cfg *neural.Config) []float64 {
	o := cfg.NEAT
	return []float64{
		o.CompatThreshold,
		o.WeightMutPower,
		o.MutateLinkWeightsProb,
		o.MutateAddNodeProb,
		o.MutateAddLinkProb,
		o.MutateOnlyProb,
		o.SurvivalThresh,
	}
}

// Overlay builds a nested YAML document setting every parameter at its
// Path, suitable for the -neat flag of the main binary.
func (pv *ParamVector) Overlay(values []float64) map[string]any {
	clamped := pv.Clamp(values)
	doc := map[string]any{}
	for i, spec := range pv.Specs {
		keys := strings.Split(spec.Path, ".")
		node := doc
		for _, k := range keys[:len(keys)-1] {
			child, ok := node[k].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[k] = child
			}
			node = child
		}
		node[keys[len(keys)-1]] = clamped[i]
	}
	return doc
}
