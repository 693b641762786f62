package sim

// Session carries the state that outlives a single generation.
// It is threaded through the generation drivers instead of living in globals.
type Session struct {
	Generation int // Current generation number
	BestScore  int // Highest per-generation score seen
	Frames     int // Frames simulated across all generations
}

// Begin marks the start of a generation.
func (s *Session) Begin(generation int) {
	s.Generation = generation
}

// RecordScore keeps the best score seen.
func (s *Session) RecordScore(score int) {
	if score > s.BestScore {
		s.BestScore = score
	}
}

// Ordinal returns the 1-based generation number shown on screen.
func (s *Session) Ordinal() int {
	return s.Generation + 1
}
