package space2d

import "slices"

// island is a connected group of objects and the constraints between them.
// Islands of one tick share no constraint and no object, so they are solved
// concurrently. Static and kinematic members are read-only to the solver.
type island struct {
	objects     []*CollisionObject
	constraints []*Constraint
	solve       []*Constraint // constraints whose preSolve asked for solving
	areas       bool
}

// Objects returns the members of the island in traversal order.
func (is *island) Objects() []*CollisionObject { return is.objects }

// Constraints returns the constraints of the island in traversal order.
func (is *island) Constraints() []*Constraint { return is.constraints }

// buildIslands groups the live constraints of the space. Traversal starts
// from every awake rigid or soft object in activation order and continues
// through rigid and soft objects only, waking any sleeping one it reaches.
// Kinematic bodies then pull in the pairs they push against sleeping
// bodies. Area constraints form one trailing island.
func (sp *Space) buildIslands() []*island {
	step := sp.stepCount
	islands := sp.islands[:0]
	roots := slices.Clone(sp.activeList)

	for _, co := range roots {
		if co.islandStep == step || !co.propagates() || !co.isAwake() {
			continue
		}
		islands = append(islands, sp.populateIsland(co, &island{}))
	}

	for _, co := range roots {
		if co.body == nil || co.body.mode != BodyModeKinematic || !co.isAwake() {
			continue
		}
		for _, c := range slices.Clone(co.constraints) {
			if c.islandStep == step || c.ownedByArea() || !c.live(sp) {
				continue
			}
			if other := c.other(co); other != nil && other.propagates() && other.islandStep != step {
				islands = append(islands, sp.populateIsland(other, &island{}))
				continue
			}
			is := &island{}
			sp.addIslandConstraint(is, c, co)
			islands = append(islands, is)
		}
	}

	areaIsland := &island{areas: true}
	for _, co := range sp.objects {
		if co.area == nil {
			continue
		}
		for _, c := range co.constraints {
			if c.islandStep == step || !c.live(sp) {
				continue
			}
			c.islandStep = step
			areaIsland.constraints = append(areaIsland.constraints, c)
		}
	}
	if len(areaIsland.constraints) > 0 {
		islands = append(islands, areaIsland)
	}

	sp.islands = islands
	return islands
}

// populateIsland walks the constraint graph from root.
func (sp *Space) populateIsland(root *CollisionObject, is *island) *island {
	step := sp.stepCount
	root.islandStep = step
	is.objects = append(is.objects, root)

	stack := []*CollisionObject{root}
	for len(stack) > 0 {
		co := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range co.constraints {
			if c.islandStep == step || c.ownedByArea() || !c.live(sp) {
				continue
			}
			for _, other := range sp.addIslandConstraint(is, c, co) {
				if other.body != nil && other.body.mode >= BodyModeRigid && !other.body.active {
					other.body.wakeup()
				}
				stack = append(stack, other)
			}
		}
	}
	return is
}

// addIslandConstraint puts c and its unvisited parties in the island. It
// returns the new members traversal continues through.
func (sp *Space) addIslandConstraint(is *island, c *Constraint, from *CollisionObject) []*CollisionObject {
	step := sp.stepCount
	c.islandStep = step
	is.constraints = append(is.constraints, c)
	if from.islandStep != step {
		from.islandStep = step
		is.objects = append(is.objects, from)
	}

	var next []*CollisionObject
	for _, o := range c.objects {
		if o == nil || o.islandStep == step {
			continue
		}
		o.islandStep = step
		is.objects = append(is.objects, o)
		if o.propagates() {
			next = append(next, o)
		}
	}
	return next
}

// other returns the party of c that is not co, nil for a joint to the world.
func (c *Constraint) other(co *CollisionObject) *CollisionObject {
	if c.objects[0] == co {
		return c.objects[1]
	}
	return c.objects[0]
}

// liveConstraints collects every constraint an island build must cover.
func (sp *Space) liveConstraints() map[*Constraint]bool {
	live := make(map[*Constraint]bool)
	for _, co := range sp.objects {
		for _, c := range co.constraints {
			if c.live(sp) {
				live[c] = true
			}
		}
	}
	return live
}

// checkIslands verifies that no object or constraint sits in two islands
// and that the islands cover the live constraints. It must run right after
// buildIslands, before integration changes what is live.
func (sp *Space) checkIslands(islands []*island) {
	objects := make(map[*CollisionObject]int)
	constraints := make(map[*Constraint]int)
	for i, is := range islands {
		for _, o := range is.objects {
			if j, ok := objects[o]; ok {
				sp.invariantf("object %v in islands %d and %d", o, j, i)
			}
			objects[o] = i
		}
		for _, c := range is.constraints {
			if j, ok := constraints[c]; ok {
				sp.invariantf("%v constraint in islands %d and %d", c.kind, j, i)
			}
			constraints[c] = i
		}
	}
	live := sp.liveConstraints()
	for c := range live {
		if _, ok := constraints[c]; !ok {
			sp.invariantf("live %v constraint in no island", c.kind)
		}
	}
	for c := range constraints {
		if !live[c] {
			sp.invariantf("%v constraint in an island is not live", c.kind)
		}
	}
}
