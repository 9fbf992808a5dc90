package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

type softContact struct {
	point  int
	normal vec.Vec2 // from the body toward the point
	r      vec.Vec2 // body center of mass to the contact
	depth  float64

	nMass, tMass float64
	bias         float64
	jnAcc, jtAcc float64
}

// softBodyPair collides every point of a soft body with one body shape.
type softBodyPair struct {
	body     *Body
	soft     *SoftBody
	contacts []softContact
	friction float64
}

func newSoftBodyPair(space *Space, body *Body, bodyShape int, soft *SoftBody) *Constraint {
	c := &Constraint{
		kind:     ConstraintSoftBodyPair,
		space:    space,
		objects:  [2]*CollisionObject{&body.CollisionObject, &soft.CollisionObject},
		shapes:   [2]int{bodyShape, 0},
		softPair: &softBodyPair{body: body, soft: soft},
	}
	c.attach()
	return c
}

func softBodyPairSetup(c *Constraint, dt float64) bool {
	p := c.softPair
	b, sb := p.body, p.soft
	si := c.shapes[0]
	p.contacts = p.contacts[:0]
	c.colliding = false

	if !b.interactsWith(&sb.CollisionObject) || b.hasException(sb.handle) {
		return false
	}
	if !b.validIndex(si) || b.shapes[si].disabled {
		return false
	}

	sp := c.space
	shape := b.shapes[si].shape
	xf := b.shapeWorldTransform(si)
	center := bodyCenter(b)
	slop := sp.contactMaxAllowedPenetration
	bias := sp.contactDefaultBias
	if shape.customBias != 0 {
		bias = shape.customBias
	}

	for i := range sb.points {
		pt := &sb.points[i]
		if pt.invMass == 0 {
			continue
		}
		m, ok := sp.collider(shape, xf, sb.pointShape, NewTransformTranslate(pt.position))
		if !ok || m.Count == 0 {
			continue
		}
		con := softContact{
			point:  i,
			normal: m.Normal,
			r:      m.Points[0].A.Sub(center),
			depth:  m.Points[0].Depth,
		}
		kn := pt.invMass + kScalarBody(b, con.r, con.normal)
		kt := pt.invMass + kScalarBody(b, con.r, con.normal.Perp())
		con.nMass = 1 / kn
		con.tMass = 1 / kt
		con.bias = -bias * math.Min(0, -con.depth+slop) / dt
		p.contacts = append(p.contacts, con)
	}
	p.friction = b.friction
	c.colliding = len(p.contacts) > 0
	return c.colliding
}

func softBodyPairPreSolve(c *Constraint, _ float64) bool {
	return len(c.softPair.contacts) > 0
}

func softBodyPairSolve(c *Constraint, _ float64) {
	p := c.softPair
	b := p.body
	for i := range p.contacts {
		con := &p.contacts[i]
		pt := &p.soft.points[con.point]
		n := con.normal

		vb := con.r.Perp().Scale(b.angularVelocity).Add(b.linearVelocity)
		vr := pt.velocity.Sub(vb)
		vrn := vr.Dot(n)
		vrt := vr.Dot(n.Perp())

		jn := (con.bias - vrn) * con.nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := p.friction * con.jnAcc
		jtOld := con.jtAcc
		con.jtAcc = clamp(jtOld-vrt*con.tMass, -jtMax, jtMax)

		j := n.RotateComplex(vec.Vec2{X: con.jnAcc - jnOld, Y: con.jtAcc - jtOld})
		pt.velocity = pt.velocity.Add(j.Scale(pt.invMass))
		applyImpulse(b, j.Neg(), con.r)
	}
}
