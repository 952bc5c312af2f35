package systems

import "github.com/pthm-cable/ecosim/components"

// Restitution scales a velocity component reflected off a world boundary.
const Restitution = 0.8

// Integrate moves pos by vel*dt. An axis that leaves the world is clamped
// to the boundary and its velocity reflected with Restitution.
func Integrate(pos *components.Position, vel *components.Velocity, dt float64, b Bounds) {
	pos.X, vel.X = integrateAxis(pos.X, vel.X, dt, b.Width)
	pos.Y, vel.Y = integrateAxis(pos.Y, vel.Y, dt, b.Height)
}

func integrateAxis(p, v, dt, extent float64) (float64, float64) {
	p += v * dt
	if p < 0 {
		return 0, -v * Restitution
	}
	if p > extent {
		return extent, -v * Restitution
	}
	return p, v
}
