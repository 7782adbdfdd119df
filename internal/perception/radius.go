package perception

import (
	"sync"

	"lcgwalk/domain/motion"
	"lcgwalk/ports"
)

// Target is something an agent can chase.
type Target interface {
	Position() motion.Vec2
	Alive() bool
}

// RadiusSensor detects a living target within Radius of the agent.
type RadiusSensor struct {
	Radius float64
	target Target
}

// NewRadiusSensor creates a sensor for target. A nil target is never detected.
func NewRadiusSensor(radius float64, target Target) *RadiusSensor {
	return &RadiusSensor{Radius: radius, target: target}
}

// Sense implements ports.TargetSensor.
func (s *RadiusSensor) Sense(self motion.Vec2) ports.Perception {
	if s.target == nil || !s.target.Alive() {
		return ports.Perception{}
	}
	pos := s.target.Position()
	if self.Distance(pos) > s.Radius {
		return ports.Perception{}
	}
	return ports.Perception{TargetDetected: true, TargetPosition: pos}
}

// MovableTarget is a Target whose state can be changed by a simulator while
// agents read it.
type MovableTarget struct {
	mu    sync.RWMutex
	pos   motion.Vec2
	alive bool
}

// NewMovableTarget creates a living target at pos.
func NewMovableTarget(pos motion.Vec2) *MovableTarget {
	return &MovableTarget{pos: pos, alive: true}
}

func (t *MovableTarget) Position() motion.Vec2 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos
}

func (t *MovableTarget) Alive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.alive
}

// MoveTo relocates the target.
func (t *MovableTarget) MoveTo(pos motion.Vec2) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = pos
}

// Kill marks the target dead.
func (t *MovableTarget) Kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alive = false
}
