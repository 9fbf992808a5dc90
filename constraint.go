package space2d

import "fmt"

// ConstraintKind enumerates the closed set of constraint variants.
type ConstraintKind uint8

const (
	// ConstraintAreaPair links a body shape overlapping an area shape.
	ConstraintAreaPair ConstraintKind = iota
	// ConstraintArea2Pair links two overlapping area shapes.
	ConstraintArea2Pair
	// ConstraintBodyPair is a contact between two body shapes.
	ConstraintBodyPair
	// ConstraintSoftBodyPair is a contact between a soft body and a body shape.
	ConstraintSoftBodyPair
	ConstraintPinJoint
	ConstraintGrooveJoint
	ConstraintDampedSpringJoint
	constraintKindCount
)

var constraintKindNames = [constraintKindCount]string{
	"area_pair", "area2_pair", "body_pair", "soft_body_pair", "pin_joint", "groove_joint", "damped_spring_joint",
}

func (k ConstraintKind) String() string {
	if k < constraintKindCount {
		return constraintKindNames[k]
	}
	return fmt.Sprintf("ConstraintKind(%d)", uint8(k))
}

// Constraint is a potential interaction between one or two collision
// objects. Its variant data lives in the field matching its kind.
type Constraint struct {
	kind    ConstraintKind
	space   *Space
	objects [2]*CollisionObject
	shapes  [2]int

	colliding                      bool
	islandStep                     uint64
	needsProcessing                bool
	disableCollisionsBetweenBodies bool
	attached                       bool

	areaPair  *areaPair
	area2Pair *area2Pair
	bodyPair  *bodyPair
	softPair  *softBodyPair
	joint     *Joint
	pin       *pinJoint
	groove    *grooveJoint
	spring    *dampedSpringJoint
}

// constraintOps is the per-kind lifecycle. setup may run concurrently for
// different constraints and only writes the constraint itself. preSolve runs
// in island order on one goroutine. solve runs concurrently across islands.
type constraintOps struct {
	setup    func(c *Constraint, dt float64) bool
	preSolve func(c *Constraint, dt float64) bool
	solve    func(c *Constraint, dt float64)
	destroy  func(c *Constraint)
}

var constraintTable = [constraintKindCount]constraintOps{
	ConstraintAreaPair:          {areaPairSetup, areaPairPreSolve, solveNothing, areaPairDestroy},
	ConstraintArea2Pair:         {area2PairSetup, area2PairPreSolve, solveNothing, area2PairDestroy},
	ConstraintBodyPair:          {bodyPairSetup, bodyPairPreSolve, bodyPairSolve, bodyPairDestroy},
	ConstraintSoftBodyPair:      {softBodyPairSetup, softBodyPairPreSolve, softBodyPairSolve, destroyNothing},
	ConstraintPinJoint:          {pinJointSetup, pinJointPreSolve, pinJointSolve, destroyNothing},
	ConstraintGrooveJoint:       {grooveJointSetup, grooveJointPreSolve, grooveJointSolve, destroyNothing},
	ConstraintDampedSpringJoint: {dampedSpringSetup, dampedSpringPreSolve, dampedSpringSolve, destroyNothing},
}

func solveNothing(*Constraint, float64) {}

func destroyNothing(*Constraint) {}

// Kind returns the variant of the constraint.
func (c *Constraint) Kind() ConstraintKind { return c.kind }

// Objects returns the participants. The second one is nil for a joint pinned to the world.
func (c *Constraint) Objects() (*CollisionObject, *CollisionObject) {
	return c.objects[0], c.objects[1]
}

// ShapeIndices returns the sub-shape index of each participant of a pair.
func (c *Constraint) ShapeIndices() (int, int) { return c.shapes[0], c.shapes[1] }

// IsColliding reports the latch state of a pair.
func (c *Constraint) IsColliding() bool { return c.colliding }

// IslandStep returns the last tick the constraint was put in an island.
func (c *Constraint) IslandStep() uint64 { return c.islandStep }

// NeedsProcessing returns what the last setup reported.
func (c *Constraint) NeedsProcessing() bool { return c.needsProcessing }

// DisablesCollisionsBetweenBodies reports whether the joint bodies ignore each other.
func (c *Constraint) DisablesCollisionsBetweenBodies() bool {
	return c.disableCollisionsBetweenBodies
}

func (c *Constraint) isJoint() bool {
	return c.kind >= ConstraintPinJoint
}

func (c *Constraint) setup(dt float64) bool {
	c.needsProcessing = constraintTable[c.kind].setup(c, dt)
	return c.needsProcessing
}

func (c *Constraint) preSolve(dt float64) bool {
	return constraintTable[c.kind].preSolve(c, dt)
}

func (c *Constraint) solve(dt float64) {
	constraintTable[c.kind].solve(c, dt)
}

// attach registers the constraint with its participants.
func (c *Constraint) attach() {
	if c.attached {
		return
	}
	c.attached = true
	for _, o := range c.objects {
		if o != nil {
			o.addConstraint(c)
		}
	}
}

// detach unregisters the constraint from its participants without running
// the destruction side effects.
func (c *Constraint) detach() {
	if !c.attached {
		return
	}
	c.attached = false
	for _, o := range c.objects {
		if o != nil {
			o.removeConstraint(c)
		}
	}
}

// destroy runs the turn-off side effects of a pair still latched on, then detaches.
func (c *Constraint) destroy() {
	if !c.attached {
		return
	}
	constraintTable[c.kind].destroy(c)
	c.detach()
}

// live reports whether the constraint belongs in an island of space this tick.
func (c *Constraint) live(space *Space) bool {
	if !c.attached {
		return false
	}
	awake := false
	for _, o := range c.objects {
		if o == nil {
			continue
		}
		if o.space != space {
			return false
		}
		if o.area != nil || o.isAwake() {
			awake = true
		}
	}
	return awake
}

// ownedByArea reports whether an area takes part in the constraint.
func (c *Constraint) ownedByArea() bool {
	for _, o := range c.objects {
		if o != nil && o.area != nil {
			return true
		}
	}
	return false
}
