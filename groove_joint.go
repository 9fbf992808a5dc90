package space2d

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// grooveJoint keeps an anchor of body B on a segment fixed to body A.
type grooveJoint struct {
	grooveA, grooveB vec.Vec2 // in A's frame
	grooveN          vec.Vec2
	anchorB          vec.Vec2 // in B's frame

	grooveTn vec.Vec2
	clamp    float64
	r1, r2   vec.Vec2
	k        mgl64.Mat2

	jAcc, bias vec.Vec2
}

// makeGroove takes the groove ends and the anchor in world space.
func (j *Joint) makeGroove(grooveA, grooveB, anchorB vec.Vec2, a, b *Body) {
	ga := a.invTransform.Apply(grooveA)
	gb := a.invTransform.Apply(grooveB)
	g := &grooveJoint{
		grooveA: ga,
		grooveB: gb,
		grooveN: gb.Sub(ga).Unit().Perp(),
		anchorB: b.invTransform.Apply(anchorB),
	}
	c := newJointConstraint(ConstraintGrooveJoint, a.space, a, b)
	c.groove = g
	j.install(c)
}

func grooveJointSetup(c *Constraint, dt float64) bool {
	a, b := jointBodies(c)
	if jointInactive(a, b) {
		return false
	}
	g := c.groove
	j := c.joint

	ta := a.transform.Apply(g.grooveA)
	tb := a.transform.Apply(g.grooveB)
	n := a.transform.ApplyVector(g.grooveN).Unit()
	d := ta.Dot(n)

	ca, cb := bodyCenter(a), bodyCenter(b)
	g.grooveTn = n
	g.r2 = anchorOffset(b, g.anchorB)

	td := cb.Add(g.r2).Cross(n)
	switch {
	case td <= ta.Cross(n):
		g.clamp = 1
		g.r1 = ta.Sub(ca)
	case td >= tb.Cross(n):
		g.clamp = -1
		g.r1 = tb.Sub(ca)
	default:
		g.clamp = 0
		g.r1 = n.Perp().Scale(-td).Add(n.Scale(d)).Sub(ca)
	}

	g.k = kTensor(a, b, g.r1, g.r2, 0)

	delta := cb.Add(g.r2).Sub(ca.Add(g.r1))
	g.bias = clampMag(delta.Scale(-j.errorBias(a.space)/dt), j.maxBias)
	return true
}

func grooveJointPreSolve(c *Constraint, _ float64) bool {
	a, b := jointBodies(c)
	g := c.groove
	applyImpulses(a, b, g.r1, g.r2, g.jAcc)
	return true
}

func (g *grooveJoint) constrain(j vec.Vec2, maxImpulse float64) vec.Vec2 {
	n := g.grooveTn
	jClamp := j
	if g.clamp*j.Cross(n) <= 0 {
		jClamp = n.Scale(j.Dot(n))
	}
	return clampMag(jClamp, maxImpulse)
}

func grooveJointSolve(c *Constraint, dt float64) {
	a, b := jointBodies(c)
	g := c.groove

	vr := relativeVelocity(a, b, g.r1, g.r2)
	j := mulTensor(g.k, g.bias.Sub(vr))

	jOld := g.jAcc
	g.jAcc = g.constrain(jOld.Add(j), c.joint.maxForce*dt)
	applyImpulses(a, b, g.r1, g.r2, g.jAcc.Sub(jOld))
}
