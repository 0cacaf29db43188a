package components

import "testing"

// TestCompoundStorageAdd verifies capacity clamping.
func TestCompoundStorageAdd(t *testing.T) {
	tests := []struct {
		name       string
		capacity   float32
		preStored  float32
		add        float32
		wantStored float32
		wantRet    float32
	}{
		{"fits", 100, 0, 40, 40, 40},
		{"clamped at capacity", 100, 80, 40, 100, 20},
		{"already full", 100, 100, 10, 100, 0},
		{"negative amount ignored", 100, 50, -5, 50, 0},
		{"zero amount ignored", 100, 50, 0, 50, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := CompoundStorage{Capacity: tc.capacity}
			s.Stored[CompoundATP] = tc.preStored
			got := s.Add(CompoundATP, tc.add)
			if got != tc.wantRet {
				t.Errorf("Add returned %v, want %v", got, tc.wantRet)
			}
			if s.Amount(CompoundATP) != tc.wantStored {
				t.Errorf("stored = %v, want %v", s.Amount(CompoundATP), tc.wantStored)
			}
		})
	}
}

// TestCompoundStorageTake verifies shortfall behavior.
func TestCompoundStorageTake(t *testing.T) {
	tests := []struct {
		name      string
		preStored float32
		take      float32
		wantRet   float32
		wantLeft  float32
	}{
		{"full amount available", 50, 20, 20, 30},
		{"shortfall returns remainder", 10, 20, 10, 0},
		{"empty returns zero", 0, 20, 0, 0},
		{"negative amount ignored", 50, -5, 0, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := CompoundStorage{Capacity: 100}
			s.Stored[CompoundATP] = tc.preStored
			got := s.Take(CompoundATP, tc.take)
			if got != tc.wantRet {
				t.Errorf("Take returned %v, want %v", got, tc.wantRet)
			}
			if s.Amount(CompoundATP) != tc.wantLeft {
				t.Errorf("remaining = %v, want %v", s.Amount(CompoundATP), tc.wantLeft)
			}
		})
	}
}

// TestCompoundStorageFraction verifies fill ratios, including the
// degenerate zero-capacity reservoir.
func TestCompoundStorageFraction(t *testing.T) {
	s := CompoundStorage{Capacity: 200}
	s.Stored[CompoundGlucose] = 50
	if got := s.Fraction(CompoundGlucose); got != 0.25 {
		t.Errorf("Fraction = %v, want 0.25", got)
	}

	var empty CompoundStorage
	if got := empty.Fraction(CompoundATP); got != 0 {
		t.Errorf("Fraction with zero capacity = %v, want 0", got)
	}
}

// TestCompoundsIndependent verifies that compound types do not share a
// reservoir slot.
func TestCompoundsIndependent(t *testing.T) {
	s := CompoundStorage{Capacity: 100}
	s.Add(CompoundATP, 30)
	s.Add(CompoundGlucose, 70)

	if s.Amount(CompoundATP) != 30 {
		t.Errorf("ATP = %v, want 30", s.Amount(CompoundATP))
	}
	if s.Amount(CompoundGlucose) != 70 {
		t.Errorf("glucose = %v, want 70", s.Amount(CompoundGlucose))
	}

	s.Take(CompoundGlucose, 70)
	if s.Amount(CompoundATP) != 30 {
		t.Error("taking glucose changed the ATP reservoir")
	}
}
