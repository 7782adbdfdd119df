package ports

import (
	"lcgwalk/domain/motion"
)

// Perception is one tick's reading from a perception component.
type Perception struct {
	TargetDetected bool
	TargetPosition motion.Vec2
}

// TargetSensor supplies the "target detected" signal for an agent at self.
type TargetSensor interface {
	Sense(self motion.Vec2) Perception
}
