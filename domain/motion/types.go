package motion

import "math"

// Vec2 is a 2D vector with +Y pointing up.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v * k
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are zero
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector along v, or the zero vector for zero input
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance returns |v - o|
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Len() }

// Direction is one of the four random-walk directions, or Hold.
type Direction int

const (
	Hold Direction = iota
	Up
	Down
	Right
	Left
)

var directionNames = [...]string{"hold", "up", "down", "right", "left"}

func (d Direction) String() string {
	if d < Hold || d > Left {
		return "unknown"
	}
	return directionNames[d]
}

// Vector returns the unit vector for d; Hold maps to the zero vector.
func (d Direction) Vector() Vec2 {
	switch d {
	case Up:
		return Vec2{X: 0, Y: 1}
	case Down:
		return Vec2{X: 0, Y: -1}
	case Right:
		return Vec2{X: 1, Y: 0}
	case Left:
		return Vec2{X: -1, Y: 0}
	default:
		return Vec2{}
	}
}

// Mode says what drove a movement intent.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeWalk    Mode = "walk"
	ModePursuit Mode = "pursuit"
)

// Intent is what a behaviour asks the movement-application component to do
// for one tick.
type Intent struct {
	Direction Vec2      `json:"direction"`
	Heading   Direction `json:"heading"`
	Speed     float64   `json:"speed"`
	Mode      Mode      `json:"mode"`
}

// Displacement returns the offset produced by applying the intent for dt seconds.
func (i Intent) Displacement(dt float64) Vec2 {
	return i.Direction.Scale(i.Speed * dt)
}
