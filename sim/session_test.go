package sim

import "testing"

func TestSessionOrdinalIsOneBased(t *testing.T) {
	s := &Session{}
	if s.Ordinal() != 1 {
		t.Errorf("first generation ordinal = %d, want 1", s.Ordinal())
	}
	s.Begin(4)
	if s.Ordinal() != 5 {
		t.Errorf("ordinal after Begin(4) = %d, want 5", s.Ordinal())
	}
}
