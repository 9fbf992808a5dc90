package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

// DirectBodyState reads and writes a body between ticks. The server hands
// it out only while the body's space is unlocked, and passes it to the
// force integration and state sync callbacks.
type DirectBodyState struct {
	body *Body
}

// Body returns the handle of the body.
func (s *DirectBodyState) Body() Handle { return s.body.handle }

// TotalGravity returns the gravity applied on the last tick, scaled by the
// body gravity scale.
func (s *DirectBodyState) TotalGravity() vec.Vec2 { return s.body.totalGravity }

// TotalLinearDamp returns the linear damping applied on the last tick.
func (s *DirectBodyState) TotalLinearDamp() float64 { return s.body.totalLinearDamp }

// TotalAngularDamp returns the angular damping applied on the last tick.
func (s *DirectBodyState) TotalAngularDamp() float64 { return s.body.totalAngularDamp }

// CenterOfMass returns the center of mass as a world space offset from the body origin.
func (s *DirectBodyState) CenterOfMass() vec.Vec2 { return s.body.centerOfMass }

// CenterOfMassLocal returns the center of mass in the body frame.
func (s *DirectBodyState) CenterOfMassLocal() vec.Vec2 { return s.body.centerOfMassLocal }

// InverseMass returns one over the mass, zero for static and kinematic bodies.
func (s *DirectBodyState) InverseMass() float64 { return s.body.invMass }

// InverseInertia returns one over the moment of inertia.
func (s *DirectBodyState) InverseInertia() float64 { return s.body.invInertia }

// Transform returns the body transform.
func (s *DirectBodyState) Transform() Transform { return s.body.transform }

// SetTransform teleports the body.
func (s *DirectBodyState) SetTransform(xf Transform) { s.body.setTransformState(xf) }

// LinearVelocity returns the linear velocity.
func (s *DirectBodyState) LinearVelocity() vec.Vec2 { return s.body.linearVelocity }

// SetLinearVelocity sets the linear velocity and wakes the body.
func (s *DirectBodyState) SetLinearVelocity(v vec.Vec2) { s.body.setLinearVelocity(v) }

// AngularVelocity returns the angular velocity.
func (s *DirectBodyState) AngularVelocity() float64 { return s.body.angularVelocity }

// SetAngularVelocity sets the angular velocity and wakes the body.
func (s *DirectBodyState) SetAngularVelocity(w float64) { s.body.setAngularVelocity(w) }

// VelocityAtLocalPosition returns the velocity of the point at the world
// space offset rel from the body origin.
func (s *DirectBodyState) VelocityAtLocalPosition(rel vec.Vec2) vec.Vec2 {
	return s.body.velocityAtLocalPoint(rel)
}

// ApplyCentralImpulse changes the linear velocity by j over the mass.
func (s *DirectBodyState) ApplyCentralImpulse(j vec.Vec2) { s.body.applyCentralImpulse(j) }

// ApplyImpulse applies j at the world space offset pos from the body origin.
func (s *DirectBodyState) ApplyImpulse(j, pos vec.Vec2) { s.body.applyImpulse(j, pos) }

// ApplyTorqueImpulse changes the angular velocity by t over the inertia.
func (s *DirectBodyState) ApplyTorqueImpulse(t float64) { s.body.applyTorqueImpulse(t) }

// ApplyCentralForce adds f at the center of mass for the next tick.
func (s *DirectBodyState) ApplyCentralForce(f vec.Vec2) { s.body.applyCentralForce(f) }

// ApplyForce adds f at pos, relative to the body origin, for the next tick.
func (s *DirectBodyState) ApplyForce(f, pos vec.Vec2) { s.body.applyForce(f, pos) }

// ApplyTorque adds t for the next tick.
func (s *DirectBodyState) ApplyTorque(t float64) { s.body.applyTorque(t) }

// AddConstantCentralForce adds f to the force applied every tick.
func (s *DirectBodyState) AddConstantCentralForce(f vec.Vec2) { s.body.addConstantCentralForce(f) }

// AddConstantForce adds f at pos to the force applied every tick.
func (s *DirectBodyState) AddConstantForce(f, pos vec.Vec2) { s.body.addConstantForce(f, pos) }

// AddConstantTorque adds t to the torque applied every tick.
func (s *DirectBodyState) AddConstantTorque(t float64) { s.body.addConstantTorque(t) }

// ConstantForce returns the force applied every tick.
func (s *DirectBodyState) ConstantForce() vec.Vec2 { return s.body.constantForce }

// SetConstantForce sets the force applied every tick.
func (s *DirectBodyState) SetConstantForce(f vec.Vec2) { s.body.setConstantForce(f) }

// ConstantTorque returns the torque applied every tick.
func (s *DirectBodyState) ConstantTorque() float64 { return s.body.constantTorque }

// SetConstantTorque sets the torque applied every tick.
func (s *DirectBodyState) SetConstantTorque(t float64) { s.body.setConstantTorque(t) }

// IsSleeping reports whether the body is asleep.
func (s *DirectBodyState) IsSleeping() bool { return !s.body.active }

// SetSleeping puts the body to sleep or wakes it.
func (s *DirectBodyState) SetSleeping(sleeping bool) { s.body.setSleeping(sleeping) }

// ContactCount returns the number of contacts reported on the last tick.
func (s *DirectBodyState) ContactCount() int { return s.body.contactCount }

// Contact returns contact i of the last tick.
func (s *DirectBodyState) Contact(i int) (Contact, bool) {
	if i < 0 || i >= s.body.contactCount {
		return Contact{}, false
	}
	return s.body.contacts[i], true
}

// Contacts returns a copy of the contacts of the last tick.
func (s *DirectBodyState) Contacts() []Contact {
	return append([]Contact(nil), s.body.contacts[:s.body.contactCount]...)
}

// IntegrateForces applies the last tick's gravity and damping over dt. Use
// it from a force integration callback of a body that omits force integration.
func (s *DirectBodyState) IntegrateForces(dt float64) {
	b := s.body
	lv := b.linearVelocity.Add(b.totalGravity.Scale(dt))
	b.linearVelocity = lv.Scale(math.Max(0, 1-dt*b.totalLinearDamp))
	b.angularVelocity *= math.Max(0, 1-dt*b.totalAngularDamp)
}
