package sim

import "math"

// DefaultThreshold is the output level above which an agent acts.
const DefaultThreshold = 0.5

// Decide activates brain on sensors and reports whether the first output
// exceeds threshold. Activation errors, empty outputs and non-finite values
// all count as "no action".
func Decide(brain Brain, sensors []float64, threshold float64) bool {
	if brain == nil {
		return false
	}
	out, err := brain.Activate(sensors)
	if err != nil || len(out) == 0 {
		return false
	}
	v := out[0]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > threshold
}

// BrainFunc adapts a plain function to the Brain interface.
type BrainFunc func(inputs []float64) ([]float64, error)

// Activate calls f.
func (f BrainFunc) Activate(inputs []float64) ([]float64, error) {
	return f(inputs)
}

// Constant returns a brain that always outputs v.
func Constant(v float64) Brain {
	return BrainFunc(func([]float64) ([]float64, error) {
		return []float64{v}, nil
	})
}

// Tally is a FitnessRecorder that just sums deltas. Useful for scripted agents.
type Tally struct {
	Fitness float64
	Deltas  int
}

// AddFitness implements FitnessRecorder.
func (t *Tally) AddFitness(delta float64) {
	t.Fitness += delta
	t.Deltas++
}
