package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

// dampedSpringJoint pulls two anchors toward a rest distance.
type dampedSpringJoint struct {
	anchorA, anchorB vec.Vec2
	restLength       float64
	stiffness        float64
	damping          float64

	r1, r2    vec.Vec2
	n         vec.Vec2
	nMass     float64
	vCoef     float64
	targetVrn float64
	jSpring   float64
	jAcc      float64
}

// makeDampedSpring takes both anchors in world space. The rest length
// starts as their distance.
func (j *Joint) makeDampedSpring(anchorA, anchorB vec.Vec2, a, b *Body) {
	s := &dampedSpringJoint{
		anchorA:    a.invTransform.Apply(anchorA),
		anchorB:    b.invTransform.Apply(anchorB),
		restLength: anchorA.Distance(anchorB),
		stiffness:  20,
		damping:    1.5,
	}
	c := newJointConstraint(ConstraintDampedSpringJoint, a.space, a, b)
	c.spring = s
	j.install(c)
}

func dampedSpringSetup(c *Constraint, dt float64) bool {
	a, b := jointBodies(c)
	if jointInactive(a, b) {
		return false
	}
	s := c.spring

	s.r1 = anchorOffset(a, s.anchorA)
	s.r2 = anchorOffset(b, s.anchorB)

	delta := bodyCenter(b).Add(s.r2).Sub(bodyCenter(a).Add(s.r1))
	dist := delta.Mag()
	s.n = vec.Vec2{}
	if dist > 0 {
		s.n = delta.Scale(1 / dist)
	}

	k := kScalar(a, b, s.r1, s.r2, s.n)
	s.nMass = 0
	if k > 0 {
		s.nMass = 1 / k
	}
	s.targetVrn = 0
	s.vCoef = 1 - math.Exp(-s.damping*dt*k)

	s.jSpring = (s.restLength - dist) * s.stiffness * dt
	s.jAcc = s.jSpring
	return true
}

func dampedSpringPreSolve(c *Constraint, _ float64) bool {
	a, b := jointBodies(c)
	s := c.spring
	applyImpulses(a, b, s.r1, s.r2, s.n.Scale(s.jSpring))
	return true
}

func dampedSpringSolve(c *Constraint, _ float64) {
	a, b := jointBodies(c)
	s := c.spring

	vrn := normalRelativeVelocity(a, b, s.r1, s.r2, s.n)
	vDamp := (s.targetVrn - vrn) * s.vCoef
	s.targetVrn = vrn + vDamp

	jDamp := vDamp * s.nMass
	s.jAcc += jDamp
	applyImpulses(a, b, s.r1, s.r2, s.n.Scale(jDamp))
}

func (s *dampedSpringJoint) setParam(param DampedSpringParam, value float64) {
	switch param {
	case DampedSpringRestLength:
		s.restLength = value
	case DampedSpringStiffness:
		s.stiffness = value
	case DampedSpringDamping:
		s.damping = value
	}
}

func (s *dampedSpringJoint) param(param DampedSpringParam) float64 {
	switch param {
	case DampedSpringRestLength:
		return s.restLength
	case DampedSpringStiffness:
		return s.stiffness
	case DampedSpringDamping:
		return s.damping
	}
	return 0
}
