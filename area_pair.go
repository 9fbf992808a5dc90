package space2d

type areaPair struct {
	body                *Body
	area                *Area
	processCollision    bool
	hasSpaceOverride    bool
	bodyHasAttachedArea bool
}

func newAreaPair(space *Space, body *Body, bodyShape int, area *Area, areaShape int) *Constraint {
	c := &Constraint{
		kind:     ConstraintAreaPair,
		space:    space,
		objects:  [2]*CollisionObject{&body.CollisionObject, &area.CollisionObject},
		shapes:   [2]int{bodyShape, areaShape},
		areaPair: &areaPair{body: body, area: area},
	}
	c.attach()
	if body.mode == BodyModeKinematic {
		body.setActive(true)
	}
	return c
}

// shapesOverlap runs the narrow phase on sub-shape ia of a and ib of b.
func (sp *Space) shapesOverlap(a *CollisionObject, ia int, b *CollisionObject, ib int) bool {
	if !a.validIndex(ia) || !b.validIndex(ib) || a.shapes[ia].disabled || b.shapes[ib].disabled {
		return false
	}
	_, ok := sp.collider(a.shapes[ia].shape, a.shapeWorldTransform(ia), b.shapes[ib].shape, b.shapeWorldTransform(ib))
	return ok
}

func areaPairSetup(c *Constraint, _ float64) bool {
	p := c.areaPair
	result := p.area.mask&p.body.layer != 0 &&
		c.space.shapesOverlap(&p.body.CollisionObject, c.shapes[0], &p.area.CollisionObject, c.shapes[1])

	p.processCollision = false
	p.hasSpaceOverride = p.area.hasAnySpaceOverride()
	if result != c.colliding {
		p.processCollision = true
		c.colliding = result
	}
	return p.processCollision
}

func areaPairPreSolve(c *Constraint, _ float64) bool {
	p := c.areaPair
	if !p.processCollision {
		return false
	}
	if c.colliding {
		if p.hasSpaceOverride {
			p.bodyHasAttachedArea = true
			p.body.addArea(p.area)
		}
		if p.area.hasMonitorCallback() {
			p.area.addBodyToQuery(&p.body.CollisionObject, c.shapes[0], c.shapes[1])
		}
	} else {
		if p.bodyHasAttachedArea {
			p.bodyHasAttachedArea = false
			p.body.removeArea(p.area)
		}
		if p.area.hasMonitorCallback() {
			p.area.removeBodyFromQuery(&p.body.CollisionObject, c.shapes[0], c.shapes[1])
		}
	}
	p.processCollision = false
	return false
}

func areaPairDestroy(c *Constraint) {
	p := c.areaPair
	if !c.colliding {
		return
	}
	if p.bodyHasAttachedArea {
		p.bodyHasAttachedArea = false
		p.body.removeArea(p.area)
	}
	if p.area.hasMonitorCallback() {
		p.area.removeBodyFromQuery(&p.body.CollisionObject, c.shapes[0], c.shapes[1])
	}
	c.colliding = false
}

// area2Pair keeps one latch per side: each area monitors the other on its own terms.
type area2Pair struct {
	a, b               *Area
	collidingA         bool
	collidingB         bool
	processA, processB bool
}

func newArea2Pair(space *Space, a *Area, shapeA int, b *Area, shapeB int) *Constraint {
	c := &Constraint{
		kind:      ConstraintArea2Pair,
		space:     space,
		objects:   [2]*CollisionObject{&a.CollisionObject, &b.CollisionObject},
		shapes:    [2]int{shapeA, shapeB},
		area2Pair: &area2Pair{a: a, b: b},
	}
	c.attach()
	return c
}

func area2PairSetup(c *Constraint, _ float64) bool {
	p := c.area2Pair
	resultA := p.a.hasAreaMonitorCallback() && p.b.monitorable && p.a.mask&p.b.layer != 0
	resultB := p.b.hasAreaMonitorCallback() && p.a.monitorable && p.b.mask&p.a.layer != 0
	if (resultA || resultB) && !c.space.shapesOverlap(&p.a.CollisionObject, c.shapes[0], &p.b.CollisionObject, c.shapes[1]) {
		resultA, resultB = false, false
	}

	process := false
	p.processA = false
	if resultA != p.collidingA {
		p.collidingA = resultA
		p.processA = true
		process = true
	}
	p.processB = false
	if resultB != p.collidingB {
		p.collidingB = resultB
		p.processB = true
		process = true
	}
	c.colliding = p.collidingA || p.collidingB
	return process
}

func area2PairPreSolve(c *Constraint, _ float64) bool {
	p := c.area2Pair
	if p.processA {
		if p.collidingA {
			p.a.addAreaToQuery(&p.b.CollisionObject, c.shapes[1], c.shapes[0])
		} else {
			p.a.removeAreaFromQuery(&p.b.CollisionObject, c.shapes[1], c.shapes[0])
		}
		p.processA = false
	}
	if p.processB {
		if p.collidingB {
			p.b.addAreaToQuery(&p.a.CollisionObject, c.shapes[0], c.shapes[1])
		} else {
			p.b.removeAreaFromQuery(&p.a.CollisionObject, c.shapes[0], c.shapes[1])
		}
		p.processB = false
	}
	return false
}

func area2PairDestroy(c *Constraint) {
	p := c.area2Pair
	if p.collidingA {
		p.collidingA = false
		p.a.removeAreaFromQuery(&p.b.CollisionObject, c.shapes[1], c.shapes[0])
	}
	if p.collidingB {
		p.collidingB = false
		p.b.removeAreaFromQuery(&p.a.CollisionObject, c.shapes[0], c.shapes[1])
	}
	c.colliding = false
}
