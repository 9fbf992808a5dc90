package space2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// pinJoint holds a point of body A on a point of body B, or on a fixed
// world point when there is no body B.
type pinJoint struct {
	anchorA, anchorB vec.Vec2 // body-local, or world for a missing B
	softness         float64

	angularLimit           bool
	limitLower, limitUpper float64
	motor                  bool
	motorVelocity          float64
	refAngle               float64 // rotation of B relative to A when made

	r1, r2 vec.Vec2
	k      mgl64.Mat2
	bias   vec.Vec2
	jAcc   vec.Vec2

	angMass   float64
	limitSide float64 // +1 below the lower limit, -1 above the upper one
	limitBias float64
	jLimit    float64
	jMotor    float64
}

// makePin pins the bodies at the world point pivot.
func (j *Joint) makePin(pivot vec.Vec2, a, b *Body) {
	p := &pinJoint{
		anchorA: a.invTransform.Apply(pivot),
		anchorB: pivot,
	}
	if b != nil {
		p.anchorB = b.invTransform.Apply(pivot)
		p.refAngle = b.transform.Rotation() - a.transform.Rotation()
	} else {
		p.refAngle = -a.transform.Rotation()
	}
	c := newJointConstraint(ConstraintPinJoint, a.space, a, b)
	c.pin = p
	j.install(c)
}

// kTensor is the 2x2 effective mass of a point constraint.
func kTensor(a, b *Body, r1, r2 vec.Vec2, softness float64) mgl64.Mat2 {
	m := a.invMass + b.invMass + softness
	k11, k12, k22 := m, 0.0, m

	ia := a.invInertia
	k11 += ia * r1.Y * r1.Y
	k12 += -ia * r1.X * r1.Y
	k22 += ia * r1.X * r1.X

	ib := b.invInertia
	k11 += ib * r2.Y * r2.Y
	k12 += -ib * r2.X * r2.Y
	k22 += ib * r2.X * r2.X

	return mgl64.Mat2{k11, k12, k12, k22}.Inv()
}

func mulTensor(k mgl64.Mat2, v vec.Vec2) vec.Vec2 {
	r := k.Mul2x1(mgl64.Vec2{v.X, v.Y})
	return vec.Vec2{X: r[0], Y: r[1]}
}

// anchorOffset turns a body-local anchor into an offset from the world center of mass.
func anchorOffset(b *Body, anchor vec.Vec2) vec.Vec2 {
	return b.transform.ApplyVector(anchor.Sub(b.centerOfMassLocal))
}

func pinJointSetup(c *Constraint, dt float64) bool {
	a, b := jointBodies(c)
	if jointInactive(a, b) {
		return false
	}
	p := c.pin
	j := c.joint

	p.r1 = anchorOffset(a, p.anchorA)
	if c.objects[1] != nil {
		p.r2 = anchorOffset(b, p.anchorB)
	} else {
		p.r2 = p.anchorB
	}
	p.k = kTensor(a, b, p.r1, p.r2, p.softness)

	ga := bodyCenter(a).Add(p.r1)
	gb := p.r2
	if c.objects[1] != nil {
		gb = bodyCenter(b).Add(p.r2)
	}
	delta := gb.Sub(ga)
	p.bias = clampMag(delta.Scale(-j.errorBias(a.space)/dt), j.maxBias)

	p.angMass = a.invInertia + b.invInertia
	if p.angMass > 0 {
		p.angMass = 1 / p.angMass
	}
	side := 0.0
	if p.angularLimit {
		angle := math.Remainder(b.transform.Rotation()-a.transform.Rotation()-p.refAngle, 2*math.Pi)
		switch {
		case angle < p.limitLower:
			side = 1
			p.limitBias = clamp(-(angle-p.limitLower)*j.errorBias(a.space)/dt, -j.maxBias, j.maxBias)
		case angle > p.limitUpper:
			side = -1
			p.limitBias = clamp(-(angle-p.limitUpper)*j.errorBias(a.space)/dt, -j.maxBias, j.maxBias)
		}
	}
	if side != p.limitSide {
		p.jLimit = 0
	}
	p.limitSide = side
	if !p.motor {
		p.jMotor = 0
	}
	return true
}

func pinJointPreSolve(c *Constraint, _ float64) bool {
	a, b := jointBodies(c)
	p := c.pin
	applyImpulses(a, b, p.r1, p.r2, p.jAcc)
	applyAngularImpulses(a, b, p.jLimit+p.jMotor)
	return true
}

// applyAngularImpulses spins b by j and a by -j. Only dynamic bodies are written.
func applyAngularImpulses(a, b *Body, j float64) {
	if a.isDynamic() {
		a.angularVelocity -= j * a.invInertia
	}
	if b.isDynamic() {
		b.angularVelocity += j * b.invInertia
	}
}

func pinJointSolve(c *Constraint, dt float64) {
	a, b := jointBodies(c)
	p := c.pin

	vr := relativeVelocity(a, b, p.r1, p.r2)
	soft := p.jAcc.Scale(p.softness)
	j := mulTensor(p.k, p.bias.Sub(vr).Sub(soft))

	jOld := p.jAcc
	p.jAcc = clampMag(jOld.Add(j), c.joint.maxForce*dt)
	applyImpulses(a, b, p.r1, p.r2, p.jAcc.Sub(jOld))

	if p.angMass == 0 {
		return
	}
	if p.motor {
		maxImpulse := c.joint.maxForce * dt
		wr := b.angularVelocity - a.angularVelocity
		old := p.jMotor
		p.jMotor = clamp(old+(p.motorVelocity-wr)*p.angMass, -maxImpulse, maxImpulse)
		applyAngularImpulses(a, b, p.jMotor-old)
	}
	if p.limitSide != 0 {
		wr := b.angularVelocity - a.angularVelocity
		old := p.jLimit
		p.jLimit = old + (p.limitBias-wr)*p.angMass
		// A limit only pushes back towards the allowed range.
		if p.limitSide > 0 {
			p.jLimit = math.Max(p.jLimit, 0)
		} else {
			p.jLimit = math.Min(p.jLimit, 0)
		}
		applyAngularImpulses(a, b, p.jLimit-old)
	}
}

func (p *pinJoint) setParam(param PinJointParam, value float64) {
	switch param {
	case PinJointSoftness:
		p.softness = value
	case PinJointLimitLower:
		p.limitLower = value
	case PinJointLimitUpper:
		p.limitUpper = value
	case PinJointMotorTargetVelocity:
		p.motorVelocity = value
	}
}

func (p *pinJoint) param(param PinJointParam) float64 {
	switch param {
	case PinJointSoftness:
		return p.softness
	case PinJointLimitLower:
		return p.limitLower
	case PinJointLimitUpper:
		return p.limitUpper
	case PinJointMotorTargetVelocity:
		return p.motorVelocity
	}
	return 0
}

func (p *pinJoint) setFlag(flag PinJointFlag, enabled bool) {
	switch flag {
	case PinJointFlagAngularLimitEnabled:
		p.angularLimit = enabled
	case PinJointFlagMotorEnabled:
		p.motor = enabled
	}
}

func (p *pinJoint) flag(flag PinJointFlag) bool {
	switch flag {
	case PinJointFlagAngularLimitEnabled:
		return p.angularLimit
	case PinJointFlagMotorEnabled:
		return p.motor
	}
	return false
}
