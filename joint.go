package space2d

import (
	"fmt"
	"log"
)

// JointType is the kind of constraint a joint currently holds.
type JointType uint8

const (
	JointTypePin JointType = iota
	JointTypeGroove
	JointTypeDampedSpring
	// JointTypeNone is the type of a joint created empty or cleared.
	JointTypeNone
)

func (t JointType) String() string {
	switch t {
	case JointTypePin:
		return "pin"
	case JointTypeGroove:
		return "groove"
	case JointTypeDampedSpring:
		return "damped_spring"
	case JointTypeNone:
		return "none"
	}
	return fmt.Sprintf("JointType(%d)", uint8(t))
}

// JointParam is a parameter shared by every joint type.
type JointParam uint8

const (
	// JointParamBias is the fraction of the error corrected per tick. Zero uses the space default.
	JointParamBias JointParam = iota
	// JointParamMaxBias caps the correction speed.
	JointParamMaxBias
	// JointParamMaxForce caps the force the joint applies.
	JointParamMaxForce
)

// PinJointParam is a parameter of pin joints.
type PinJointParam uint8

const (
	// PinJointSoftness lets the pinned points drift apart under load.
	PinJointSoftness PinJointParam = iota
	// PinJointLimitLower and PinJointLimitUpper bound the rotation of B
	// relative to A, in radians from the pose at creation.
	PinJointLimitLower
	PinJointLimitUpper
	// PinJointMotorTargetVelocity is the relative angular velocity the motor drives.
	PinJointMotorTargetVelocity
)

// PinJointFlag switches an optional pin joint behavior.
type PinJointFlag uint8

const (
	PinJointFlagAngularLimitEnabled PinJointFlag = iota
	PinJointFlagMotorEnabled
)

// DampedSpringParam is a parameter of damped spring joints.
type DampedSpringParam uint8

const (
	DampedSpringRestLength DampedSpringParam = iota
	DampedSpringStiffness
	DampedSpringDamping
)

// Joint is a user constraint between a body and another body or the world.
// The constraint it holds is rebuilt by every make call.
type Joint struct {
	handle Handle
	kind   JointType

	bias     float64
	maxBias  float64
	maxForce float64

	disableCollisions bool
	constraint        *Constraint
	logger            *log.Logger
}

func newJoint(logger *log.Logger) *Joint {
	return &Joint{
		kind:     JointTypeNone,
		maxBias:  3.40282e+38,
		maxForce: 3.40282e+38,
		logger:   logger,
	}
}

// Handle returns the server handle of the joint.
func (j *Joint) Handle() Handle { return j.handle }

// Type returns the joint type.
func (j *Joint) Type() JointType { return j.kind }

// Constraint returns the constraint the joint holds, nil if it holds none.
func (j *Joint) Constraint() *Constraint { return j.constraint }

// newWorldBody returns the static body standing in for the missing second
// body of a joint pinned to the world. The solver only ever reads it.
func newWorldBody() *Body {
	b := newBody(nil)
	b.setMode(BodyModeStatic)
	return b
}

// jointBodies returns the two bodies of a joint constraint. A joint pinned
// to the world gets the world body of the space its body is in.
func jointBodies(c *Constraint) (*Body, *Body) {
	a := c.objects[0].body
	b := a.space.worldBody
	if c.objects[1] != nil {
		b = c.objects[1].body
	}
	return a, b
}

// jointInactive reports whether neither body can move, in which case the
// joint has nothing to solve.
func jointInactive(a, b *Body) bool {
	return !a.isDynamic() && !b.isDynamic()
}

func (j *Joint) errorBias(sp *Space) float64 {
	if j.bias == 0 && sp != nil {
		return sp.constraintDefaultBias
	}
	return j.bias
}

// install replaces the held constraint.
func (j *Joint) install(c *Constraint) {
	j.clear()
	c.joint = j
	j.constraint = c
	j.kind = constraintJointType(c.kind)
	c.attach()
	if j.disableCollisions {
		j.applyExceptions(true)
	}
}

func constraintJointType(k ConstraintKind) JointType {
	switch k {
	case ConstraintPinJoint:
		return JointTypePin
	case ConstraintGrooveJoint:
		return JointTypeGroove
	case ConstraintDampedSpringJoint:
		return JointTypeDampedSpring
	}
	return JointTypeNone
}

// clear drops the held constraint and wakes the bodies it held.
func (j *Joint) clear() {
	c := j.constraint
	if c == nil {
		return
	}
	if j.disableCollisions {
		j.applyExceptions(false)
	}
	c.detach()
	for _, o := range c.objects {
		if o != nil && o.body != nil {
			o.body.wakeup()
		}
	}
	j.constraint = nil
	j.kind = JointTypeNone
}

func (j *Joint) setDisableCollisions(disable bool) {
	if j.disableCollisions == disable {
		return
	}
	if j.constraint != nil {
		j.applyExceptions(disable)
	}
	j.disableCollisions = disable
}

// applyExceptions adds or removes the mutual collision exceptions of the
// joint bodies.
func (j *Joint) applyExceptions(add bool) {
	c := j.constraint
	c.disableCollisionsBetweenBodies = add
	if c.objects[1] == nil {
		return
	}
	a, b := c.objects[0].body, c.objects[1].body
	if add {
		a.addException(b.handle)
		b.addException(a.handle)
	} else {
		a.removeException(b.handle)
		b.removeException(a.handle)
	}
	a.wakeup()
	b.wakeup()
}

func (j *Joint) setParam(param JointParam, value float64) {
	switch param {
	case JointParamBias:
		j.bias = value
	case JointParamMaxBias:
		j.maxBias = value
	case JointParamMaxForce:
		j.maxForce = value
	}
}

func (j *Joint) param(param JointParam) float64 {
	switch param {
	case JointParamBias:
		return j.bias
	case JointParamMaxBias:
		return j.maxBias
	case JointParamMaxForce:
		return j.maxForce
	}
	return 0
}

// newJointConstraint builds the shell shared by every joint kind.
func newJointConstraint(kind ConstraintKind, space *Space, a, b *Body) *Constraint {
	c := &Constraint{kind: kind, space: space, shapes: [2]int{-1, -1}}
	c.objects[0] = &a.CollisionObject
	if b != nil {
		c.objects[1] = &b.CollisionObject
	}
	return c
}
