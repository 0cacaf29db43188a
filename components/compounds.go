package components

// Compound is a typed resource stored by a microbe.
type Compound uint8

const (
	CompoundATP Compound = iota
	CompoundGlucose
	CompoundCount
)

// String returns the compound name for logging and telemetry.
func (c Compound) String() string {
	switch c {
	case CompoundATP:
		return "atp"
	case CompoundGlucose:
		return "glucose"
	default:
		return "unknown"
	}
}

// CompoundStorage is a mutable reservoir of typed resources.
// A single capacity is shared across compound types, matching the
// cell's overall storage volume.
type CompoundStorage struct {
	Stored   [CompoundCount]float32
	Capacity float32
}

// Amount returns the stored amount of a compound.
func (s *CompoundStorage) Amount(c Compound) float32 {
	if c >= CompoundCount {
		return 0
	}
	return s.Stored[c]
}

// Add stores up to amount of a compound, limited by capacity.
// Returns the amount actually stored.
func (s *CompoundStorage) Add(c Compound, amount float32) float32 {
	if c >= CompoundCount || amount <= 0 {
		return 0
	}
	free := s.Capacity - s.Stored[c]
	if free <= 0 {
		return 0
	}
	if amount > free {
		amount = free
	}
	s.Stored[c] += amount
	return amount
}

// Take removes up to amount of a compound.
// Returns the amount actually taken, which is less than requested
// when the reservoir runs short.
func (s *CompoundStorage) Take(c Compound, amount float32) float32 {
	if c >= CompoundCount || amount <= 0 {
		return 0
	}
	if amount > s.Stored[c] {
		amount = s.Stored[c]
	}
	s.Stored[c] -= amount
	return amount
}

// Fraction returns the fill ratio of a compound against capacity.
func (s *CompoundStorage) Fraction(c Compound) float32 {
	if s.Capacity <= 0 {
		return 0
	}
	return s.Amount(c) / s.Capacity
}
