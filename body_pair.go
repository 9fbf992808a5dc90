package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

type bodyContact struct {
	localA, localB vec.Vec2 // contact points in each body's frame, for warm starting
	pointA, pointB vec.Vec2
	r1, r2         vec.Vec2
	depth          float64

	nMass, tMass float64
	bounce       float64
	bias         float64

	jnAcc, jtAcc, jBias float64
	reused              bool
}

// bodyPair is a contact between one shape of each of two bodies. It keeps
// up to two contacts and warm starts the ones found again near where they were.
type bodyPair struct {
	a, b     *Body
	normal   vec.Vec2
	contacts [maxManifoldPoints]bodyContact
	count    int

	oneWayDisabled bool
	friction       float64
	solve          bool
}

func newBodyPair(space *Space, a *Body, shapeA int, b *Body, shapeB int) *Constraint {
	c := &Constraint{
		kind:     ConstraintBodyPair,
		space:    space,
		objects:  [2]*CollisionObject{&a.CollisionObject, &b.CollisionObject},
		shapes:   [2]int{shapeA, shapeB},
		bodyPair: &bodyPair{a: a, b: b},
	}
	c.attach()
	return c
}

// reset drops the contacts and releases the latch.
func (p *bodyPair) reset(c *Constraint) bool {
	c.colliding = false
	p.count = 0
	return false
}

// bodyCenter is the world position of the center of mass.
func bodyCenter(b *Body) vec.Vec2 {
	return b.transform.Origin().Add(b.centerOfMass)
}

// oneWayValid reports whether any contact pushes the body against the
// one-way direction of the other shape. dir points out of the blocking side.
func (p *bodyPair) oneWayValid(m *Manifold, dir vec.Vec2, margin float64, sign float64) bool {
	for i := 0; i < m.Count; i++ {
		if sign*m.Normal.Dot(dir) > -magicEpsilon {
			continue
		}
		if margin > 0 && m.Points[i].Depth > margin {
			continue
		}
		return true
	}
	return false
}

func bodyPairSetup(c *Constraint, dt float64) bool {
	p := c.bodyPair
	a, b := p.a, p.b
	sa, sb := c.shapes[0], c.shapes[1]
	sp := c.space

	if !a.interactsWith(&b.CollisionObject) || a.hasException(b.handle) || b.hasException(a.handle) {
		return p.reset(c)
	}
	reportOnly := a.mode <= BodyModeKinematic && b.mode <= BodyModeKinematic
	if reportOnly && a.maxContactsReported == 0 && b.maxContactsReported == 0 {
		return p.reset(c)
	}
	if !a.active && !b.active {
		return p.reset(c)
	}
	if !a.validIndex(sa) || !b.validIndex(sb) || a.shapes[sa].disabled || b.shapes[sb].disabled {
		return p.reset(c)
	}

	m, ok := sp.collider(a.shapes[sa].shape, a.shapeWorldTransform(sa), b.shapes[sb].shape, b.shapeWorldTransform(sb))
	if !ok {
		m, ok = sweptManifold(a, sa, b, sb)
	}

	prevCollided := c.colliding
	if !ok {
		p.oneWayDisabled = false
		return p.reset(c)
	}
	if p.oneWayDisabled {
		return p.reset(c)
	}
	if !prevCollided {
		if a.shapes[sa].oneWay {
			dir := a.shapeWorldTransform(sa).YAxis().Unit()
			if !p.oneWayValid(&m, dir, a.shapes[sa].oneWayMargin, 1) {
				p.oneWayDisabled = true
				return p.reset(c)
			}
		}
		if b.shapes[sb].oneWay {
			dir := b.shapeWorldTransform(sb).YAxis().Unit()
			if !p.oneWayValid(&m, dir, b.shapes[sb].oneWayMargin, -1) {
				p.oneWayDisabled = true
				return p.reset(c)
			}
		}
	}
	c.colliding = true

	old := p.contacts
	oldCount := p.count
	recycle := sp.contactRecycleRadius
	ca, cb := bodyCenter(a), bodyCenter(b)

	p.normal = m.Normal
	p.count = m.Count
	for i := 0; i < m.Count; i++ {
		mp := m.Points[i]
		con := bodyContact{
			localA: a.invTransform.Apply(mp.A),
			localB: b.invTransform.Apply(mp.B),
			pointA: mp.A,
			pointB: mp.B,
			r1:     mp.A.Sub(ca),
			r2:     mp.B.Sub(cb),
			depth:  mp.Depth,
		}
		for j := 0; j < oldCount; j++ {
			o := &old[j]
			if o.localA.Distance(con.localA) < recycle && o.localB.Distance(con.localB) < recycle {
				con.jnAcc = o.jnAcc
				con.jtAcc = o.jtAcc
				con.reused = true
				break
			}
		}
		p.contacts[i] = con
	}

	p.solve = !reportOnly
	if !p.solve {
		return true
	}

	bias := sp.contactDefaultBias
	if cb := a.shapes[sa].shape.customBias; cb != 0 {
		bias = cb
	} else if cb := b.shapes[sb].shape.customBias; cb != 0 {
		bias = cb
	}
	slop := sp.contactMaxAllowedPenetration
	e := math.Min(1, a.bounce+b.bounce)
	p.friction = math.Abs(math.Min(a.friction, b.friction))

	n := p.normal
	for i := 0; i < p.count; i++ {
		con := &p.contacts[i]
		con.nMass = 1 / kScalar(a, b, con.r1, con.r2, n)
		con.tMass = 1 / kScalar(a, b, con.r1, con.r2, n.Perp())
		con.bias = -bias * math.Min(0, -con.depth+slop) / dt
		con.jBias = 0
		con.bounce = normalRelativeVelocity(a, b, con.r1, con.r2, n) * e
	}
	return true
}

// sweptManifold turns a hit found by continuous collision detection on
// the previous tick into a single touching contact.
func sweptManifold(a *Body, sa int, b *Body, sb int) (Manifold, bool) {
	if h, ok := a.takeCCDHit(&b.CollisionObject, sa, sb); ok {
		m := Manifold{Normal: h.normal.Neg(), Count: 1}
		m.Points[0] = ContactPoint{A: h.point, B: h.point}
		return m, true
	}
	if h, ok := b.takeCCDHit(&a.CollisionObject, sb, sa); ok {
		m := Manifold{Normal: h.normal, Count: 1}
		m.Points[0] = ContactPoint{A: h.point, B: h.point}
		return m, true
	}
	return Manifold{}, false
}

func bodyPairPreSolve(c *Constraint, _ float64) bool {
	p := c.bodyPair
	if !c.colliding {
		return false
	}
	a, b := p.a, p.b

	for i := 0; i < p.count; i++ {
		con := &p.contacts[i]
		j := p.normal.RotateComplex(vec.Vec2{X: con.jnAcc, Y: con.jtAcc})
		if a.maxContactsReported > 0 {
			a.addContact(Contact{
				LocalPosition:              con.pointA.Sub(a.transform.Origin()),
				LocalNormal:                p.normal.Neg(),
				Depth:                      con.depth,
				LocalShape:                 c.shapes[0],
				ColliderPosition:           con.pointB.Sub(a.transform.Origin()),
				ColliderShape:              c.shapes[1],
				ColliderInstanceID:         b.instanceID,
				Collider:                   b.handle,
				ColliderVelocityAtPosition: b.velocityAtLocalPoint(con.pointB.Sub(b.transform.Origin())),
				Impulse:                    j.Neg(),
			})
		}
		if b.maxContactsReported > 0 {
			b.addContact(Contact{
				LocalPosition:              con.pointB.Sub(b.transform.Origin()),
				LocalNormal:                p.normal,
				Depth:                      con.depth,
				LocalShape:                 c.shapes[1],
				ColliderPosition:           con.pointA.Sub(b.transform.Origin()),
				ColliderShape:              c.shapes[0],
				ColliderInstanceID:         a.instanceID,
				Collider:                   a.handle,
				ColliderVelocityAtPosition: a.velocityAtLocalPoint(con.pointA.Sub(a.transform.Origin())),
				Impulse:                    j,
			})
		}
	}

	if !p.solve {
		return false
	}
	for i := 0; i < p.count; i++ {
		con := &p.contacts[i]
		if con.reused {
			j := p.normal.RotateComplex(vec.Vec2{X: con.jnAcc, Y: con.jtAcc})
			applyImpulses(a, b, con.r1, con.r2, j)
		}
	}
	return true
}

func bodyPairSolve(c *Constraint, _ float64) {
	p := c.bodyPair
	if !c.colliding {
		return
	}
	a, b := p.a, p.b
	n := p.normal
	friction := p.friction

	for i := 0; i < p.count; i++ {
		con := &p.contacts[i]
		r1 := con.r1
		r2 := con.r2

		vbn := biasedRelativeVelocity(a, b, r1, r2).Dot(n)
		vr := relativeVelocity(a, b, r1, r2)
		vrn := vr.Dot(n)
		vrt := vr.Dot(n.Perp())

		jbn := (con.bias - vbn) * con.nMass
		jbnOld := con.jBias
		con.jBias = math.Max(jbnOld+jbn, 0)

		jn := -(con.bounce + vrn) * con.nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = clamp(jtOld+jt, -jtMax, jtMax)

		applyBiasImpulses(a, b, r1, r2, n.Scale(con.jBias-jbnOld))
		applyImpulses(a, b, r1, r2, n.RotateComplex(vec.Vec2{
			X: con.jnAcc - jnOld,
			Y: con.jtAcc - jtOld,
		}))
	}
}

func bodyPairDestroy(c *Constraint) {
	c.bodyPair.reset(c)
}
