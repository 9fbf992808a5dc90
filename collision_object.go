package space2d

import (
	"fmt"
	"slices"
)

// CollisionObjectType tells bodies, areas and soft bodies apart. Areas sort
// first so a pair (area, x) always has the area on the left.
type CollisionObjectType uint8

const (
	ObjectArea CollisionObjectType = iota
	ObjectBody
	ObjectSoftBody
)

type objectShape struct {
	shape        *Shape
	xform        Transform
	aabb         BB
	bpID         broadPhaseID
	disabled     bool
	oneWay       bool
	oneWayMargin float64
}

// CollisionObject is the part shared by bodies, areas and soft bodies: an
// ordered shape list, a collision layer and mask, and space membership.
type CollisionObject struct {
	handle     Handle
	kind       CollisionObjectType
	instanceID uint64
	space      *Space

	shapes       []objectShape
	transform    Transform
	invTransform Transform

	layer, mask uint32
	pickable    bool
	static      bool

	pendingShapeUpdate bool
	constraints        []*Constraint
	islandStep         uint64

	body *Body
	area *Area
	soft *SoftBody
}

func (co *CollisionObject) init(kind CollisionObjectType) {
	co.kind = kind
	co.transform = NewTransformIdentity()
	co.invTransform = NewTransformIdentity()
	co.layer = 1
	co.mask = 1
	co.pickable = true
}

func (co *CollisionObject) String() string {
	return fmt.Sprintf("%v(%v)", co.kind, co.handle)
}

func (k CollisionObjectType) String() string {
	switch k {
	case ObjectArea:
		return "Area"
	case ObjectBody:
		return "Body"
	case ObjectSoftBody:
		return "SoftBody"
	}
	return fmt.Sprintf("CollisionObjectType(%d)", uint8(k))
}

// Handle returns the server handle of the object.
func (co *CollisionObject) Handle() Handle { return co.handle }

// Type returns whether the object is a body, an area or a soft body.
func (co *CollisionObject) Type() CollisionObjectType { return co.kind }

// Space returns the space the object is in, nil if none.
func (co *CollisionObject) Space() *Space { return co.space }

// InstanceID returns the host object id attached to this object.
func (co *CollisionObject) InstanceID() uint64 { return co.instanceID }

// Transform returns the world transform.
func (co *CollisionObject) Transform() Transform { return co.transform }

// CollisionLayer returns the layers the object is in.
func (co *CollisionObject) CollisionLayer() uint32 { return co.layer }

// CollisionMask returns the layers the object scans.
func (co *CollisionObject) CollisionMask() uint32 { return co.mask }

// ShapeCount returns the number of shapes, disabled ones included.
func (co *CollisionObject) ShapeCount() int { return len(co.shapes) }

// Constraints returns the live constraints the object takes part in.
func (co *CollisionObject) Constraints() []*Constraint { return co.constraints }

func (co *CollisionObject) validIndex(i int) bool {
	return i >= 0 && i < len(co.shapes)
}

// Shape returns the shape at index i.
func (co *CollisionObject) Shape(i int) *Shape {
	if !co.validIndex(i) {
		return nil
	}
	return co.shapes[i].shape
}

// ShapeTransform returns the local transform of the shape at index i.
func (co *CollisionObject) ShapeTransform(i int) Transform {
	if !co.validIndex(i) {
		return NewTransformIdentity()
	}
	return co.shapes[i].xform
}

// IsShapeDisabled reports whether the shape at index i is left out of collision.
func (co *CollisionObject) IsShapeDisabled(i int) bool {
	return co.validIndex(i) && co.shapes[i].disabled
}

// shapeWorldTransform places the shape at index i in the world.
func (co *CollisionObject) shapeWorldTransform(i int) Transform {
	return co.transform.Mult(co.shapes[i].xform)
}

// interactsWith is the symmetric layer/mask test used to create pairs.
func (co *CollisionObject) interactsWith(other *CollisionObject) bool {
	return co.layer&other.mask != 0 || other.layer&co.mask != 0
}

func (co *CollisionObject) addShape(shape *Shape, xform Transform, disabled bool) {
	co.shapes = append(co.shapes, objectShape{shape: shape, xform: xform, disabled: disabled})
	shape.addOwner(co)
	co.queueShapeUpdate()
	co.shapesChanged()
}

func (co *CollisionObject) setShape(i int, shape *Shape) {
	s := &co.shapes[i]
	s.shape.removeOwner(co)
	s.shape = shape
	shape.addOwner(co)
	co.unregisterShape(i)
	co.queueShapeUpdate()
	co.shapesChanged()
}

func (co *CollisionObject) setShapeTransform(i int, xform Transform) {
	co.shapes[i].xform = xform
	co.queueShapeUpdate()
	co.shapesChanged()
}

func (co *CollisionObject) setShapeDisabled(i int, disabled bool) {
	s := &co.shapes[i]
	if s.disabled == disabled {
		return
	}
	s.disabled = disabled
	if disabled {
		co.unregisterShape(i)
	} else {
		co.queueShapeUpdate()
	}
	co.shapesChanged()
}

// setShapeOneWay makes the shape at index i collide only against bodies
// moving along its local +Y axis.
func (co *CollisionObject) setShapeOneWay(i int, enabled bool, margin float64) {
	co.shapes[i].oneWay = enabled
	co.shapes[i].oneWayMargin = margin
}

// removeShape drops every use of shape.
func (co *CollisionObject) removeShape(shape *Shape) {
	for i := 0; i < len(co.shapes); i++ {
		if co.shapes[i].shape == shape {
			co.removeShapeAt(i)
			i--
		}
	}
}

func (co *CollisionObject) removeShapeAt(index int) {
	// Later entries change subindex, so they leave the broad phase too and
	// come back on the next update.
	for i := index; i < len(co.shapes); i++ {
		co.unregisterShape(i)
	}
	co.shapes[index].shape.removeOwner(co)
	co.shapes = slices.Delete(co.shapes, index, index+1)
	co.queueShapeUpdate()
	co.shapesChanged()
}

func (co *CollisionObject) clearShapes() {
	for len(co.shapes) > 0 {
		co.removeShapeAt(len(co.shapes) - 1)
	}
}

func (co *CollisionObject) unregisterShape(i int) {
	s := &co.shapes[i]
	if s.bpID == 0 {
		return
	}
	if co.space != nil {
		co.space.broadPhase.Remove(s.bpID)
	}
	s.bpID = 0
}

// unregisterShapes drops every shape from the broad phase. Pairs end at once.
func (co *CollisionObject) unregisterShapes() {
	if co.soft != nil {
		co.soft.unregisterBounds()
	}
	for i := range co.shapes {
		co.unregisterShape(i)
	}
}

// shapeChanged is called by a shape whose geometry was replaced.
func (co *CollisionObject) shapeChanged(*Shape) {
	co.queueShapeUpdate()
	co.shapesChanged()
}

func (co *CollisionObject) shapesChanged() {
	if co.body != nil {
		co.body.updateMassProperties()
	}
}

func (co *CollisionObject) queueShapeUpdate() {
	if co.space == nil || co.pendingShapeUpdate {
		return
	}
	co.pendingShapeUpdate = true
	co.space.pendingShapeUpdates = append(co.space.pendingShapeUpdates, co)
}

// updateShapes recomputes every enabled shape box and hands it to the broad phase.
func (co *CollisionObject) updateShapes() {
	if co.space == nil {
		return
	}
	if co.soft != nil {
		co.soft.updateBounds()
		return
	}
	bp := co.space.broadPhase
	for i := range co.shapes {
		s := &co.shapes[i]
		if s.disabled {
			continue
		}
		s.aabb = s.shape.aabb(co.shapeWorldTransform(i))
		if s.bpID == 0 {
			s.bpID = bp.Create(co, i, s.aabb, co.static)
		} else {
			bp.Move(s.bpID, s.aabb)
		}
	}
}

func (co *CollisionObject) setTransform(xform Transform, updateShapes bool) {
	co.transform = xform
	co.invTransform = xform.Inverse()
	if updateShapes {
		co.updateShapes()
	}
}

func (co *CollisionObject) setStatic(static bool) {
	if co.static == static {
		return
	}
	co.static = static
	if co.space == nil {
		return
	}
	for i := range co.shapes {
		if co.shapes[i].bpID != 0 {
			co.space.broadPhase.SetStatic(co.shapes[i].bpID, static)
		}
	}
}

func (co *CollisionObject) setCollisionLayer(layer uint32) {
	co.layer = layer
	co.reregisterShapes()
}

func (co *CollisionObject) setCollisionMask(mask uint32) {
	co.mask = mask
	co.reregisterShapes()
}

// reregisterShapes makes the broad phase report every overlap again, so
// pair eligibility is decided with the current layers.
func (co *CollisionObject) reregisterShapes() {
	if co.space == nil {
		return
	}
	co.unregisterShapes()
	co.queueShapeUpdate()
}

// setSpace moves the object to space. Leaving a space ends all pairs.
func (co *CollisionObject) setSpace(space *Space) {
	if co.space == space {
		return
	}
	if old := co.space; old != nil {
		co.unregisterShapes()
		old.removePendingShapeUpdate(co)
		old.removeObject(co)
	}
	co.space = space
	if space != nil {
		space.addObject(co)
		co.updateShapes()
	}
}

func (co *CollisionObject) addConstraint(c *Constraint) {
	co.constraints = append(co.constraints, c)
}

func (co *CollisionObject) removeConstraint(c *Constraint) {
	if i := slices.Index(co.constraints, c); i >= 0 {
		co.constraints = slices.Delete(co.constraints, i, i+1)
	}
}

// clearConstraints ends every pair of the object. Joints stay attached and
// only take part in a tick while both bodies share a space.
func (co *CollisionObject) clearConstraints() {
	pairs := slices.DeleteFunc(slices.Clone(co.constraints), (*Constraint).isJoint)
	for _, c := range pairs {
		if c.space != nil {
			c.space.destroyPair(c)
		} else {
			c.destroy()
		}
	}
}

// clearJoints empties every joint holding the object.
func (co *CollisionObject) clearJoints() {
	for _, c := range slices.Clone(co.constraints) {
		if c.isJoint() && c.joint != nil {
			c.joint.clear()
		}
	}
}

// propagates reports whether island traversal continues through the object.
func (co *CollisionObject) propagates() bool {
	switch {
	case co.soft != nil:
		return true
	case co.body != nil:
		return co.body.mode >= BodyModeRigid
	}
	return false
}

// isAwake reports whether the object takes part in the tick on its own.
func (co *CollisionObject) isAwake() bool {
	switch {
	case co.soft != nil:
		return true
	case co.body != nil:
		return co.body.active
	}
	return false
}
