package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

const (
	pooledBufferSize int     = 1024
	infinity         float64 = math.MaxFloat64
	magicEpsilon     float64 = 1e-5
)

// broadPhaseMargin grows the boxes stored in the broad phase.
const broadPhaseMargin = 1.0

func clamp(f, min, max float64) float64 {
	if f > min {
		return math.Min(f, max)
	}
	return math.Min(min, max)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(f, 1))
}

// clampMag clamps the vector magnitude to m.
func clampMag(v vec.Vec2, m float64) vec.Vec2 {
	if v.Dot(v) > m*m {
		return v.Unit().Scale(m)
	}
	return v
}

// wrapAngle maps an angle difference to [-pi, pi).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func kScalarBody(body *Body, r, n vec.Vec2) float64 {
	rcn := r.Cross(n)
	return body.invMass + body.invInertia*rcn*rcn
}

func kScalar(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return kScalarBody(a, r1, n) + kScalarBody(b, r2, n)
}

func normalRelativeVelocity(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return relativeVelocity(a, b, r1, r2).Dot(n)
}

func relativeVelocity(a, b *Body, r1, r2 vec.Vec2) vec.Vec2 {
	return r2.Perp().Scale(b.angularVelocity).Add(b.linearVelocity).Sub(r1.Perp().Scale(a.angularVelocity).Add(a.linearVelocity))
}

func biasedRelativeVelocity(a, b *Body, r1, r2 vec.Vec2) vec.Vec2 {
	return r2.Perp().Scale(b.biasedAngularVelocity).Add(b.biasedLinearVelocity).Sub(r1.Perp().Scale(a.biasedAngularVelocity).Add(a.biasedLinearVelocity))
}

// applyImpulse changes the velocity of a dynamic body. Static and kinematic
// bodies are shared between islands solved in parallel and never written.
func applyImpulse(body *Body, j, r vec.Vec2) {
	if !body.isDynamic() {
		return
	}
	body.linearVelocity = body.linearVelocity.Add(j.Scale(body.invMass))
	body.angularVelocity += body.invInertia * r.Cross(j)
}

func applyBiasImpulse(body *Body, j, r vec.Vec2) {
	if !body.isDynamic() {
		return
	}
	body.biasedLinearVelocity = body.biasedLinearVelocity.Add(j.Scale(body.invMass))
	body.biasedAngularVelocity += body.invInertia * r.Cross(j)
}

func applyImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	applyImpulse(b, j, r2)
	applyImpulse(a, j.Neg(), r1)
}

func applyBiasImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	applyBiasImpulse(b, j, r2)
	applyBiasImpulse(a, j.Neg(), r1)
}
