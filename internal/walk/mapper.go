package walk

import (
	"fmt"

	"lcgwalk/domain/core"
	"lcgwalk/domain/motion"
)

// DefaultThreshold splits [0, 1] into four equal bands.
const DefaultThreshold = 0.25

// Mapper converts a sample in [0, 1] into a direction using bands anchored at
// Threshold t:
//
//	(0, t]    Up
//	(t, 2t]   Down
//	(2t, 3t]  Right
//	(3t, 1]   Left
//
// Exactly 0, and anything outside [0, 1], maps to Hold. The assignment is
// fixed so replays of a sequence produce the same walk.
type Mapper struct {
	Threshold float64
}

// NewMapper returns a mapper for threshold, which must satisfy 0 < t < 1/3.
func NewMapper(threshold float64) (Mapper, error) {
	if threshold <= 0 || 3*threshold >= 1 {
		return Mapper{}, fmt.Errorf("%w: got %v", core.ErrInvalidThreshold, threshold)
	}
	return Mapper{Threshold: threshold}, nil
}

// DefaultMapper uses DefaultThreshold.
func DefaultMapper() Mapper {
	return Mapper{Threshold: DefaultThreshold}
}

// Map returns the direction for sample s.
func (m Mapper) Map(s float64) motion.Direction {
	t := m.Threshold
	switch {
	case s > 0 && s <= t:
		return motion.Up
	case s > t && s <= 2*t:
		return motion.Down
	case s > 2*t && s <= 3*t:
		return motion.Right
	case s > 3*t && s <= 1:
		return motion.Left
	default:
		return motion.Hold
	}
}
