package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Integrate moves one agent by dt using the velocity left by the steering pass.
//
// Propulsion along the heading and drag only shape the step taken this tick;
// the stored Velocity is not written back.
func Integrate(a *Agent, dt, dragMultiplier float32) {
	velocity := a.Velocity
	velocity = velocity.Add(geometry.NormalizeSafe(a.Velocity).Mul(a.Acceleration * dt))
	velocity = velocity.Mul(1 - dragMultiplier*a.Drag*dt)

	a.Position = a.Position.Add(velocity.Mul(dt))
	a.Orientation = geometry.LookRotationSafe(a.Position.Add(velocity), geometry.WorldUp, a.Orientation)
}
