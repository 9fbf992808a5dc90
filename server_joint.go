package space2d

import (
	"fmt"

	"github.com/setanarut/vec"
)

// JointCreate makes an empty joint. A make call turns it into a pin, groove
// or damped spring joint.
func (s *Server) JointCreate() Handle {
	j := newJoint(s.logger)
	j.handle = s.joints.make(j)
	return j.handle
}

func (s *Server) joint(op string, h Handle) (*Joint, error) {
	return lookup(s, s.joints, op, h)
}

// JointGet returns the joint behind a handle, nil if the handle is invalid.
func (s *Server) JointGet(joint Handle) *Joint {
	return s.joints.get(joint)
}

// JointClear empties the joint and wakes its bodies. Parameters are kept
// for the next make call.
func (s *Server) JointClear(joint Handle) error {
	j, err := s.joint("joint_clear", joint)
	if err != nil {
		return err
	}
	j.clear()
	return nil
}

func (s *Server) jointBodies(op string, a, b Handle, worldB bool) (*Body, *Body, error) {
	ba, err := s.body(op, a)
	if err != nil {
		return nil, nil, err
	}
	if worldB && !s.bodies.owns(b) {
		return ba, nil, nil
	}
	bb, err := s.body(op, b)
	if err != nil {
		return nil, nil, err
	}
	if ba == bb {
		return nil, nil, s.fail(op, fmt.Errorf("%v joined to itself: %w", a, ErrInvalidState))
	}
	return ba, bb, nil
}

// JointMakePin pins body a to body b at the world point pivot. A b that
// is not a body handle pins a to the world.
func (s *Server) JointMakePin(joint Handle, pivot vec.Vec2, a, b Handle) error {
	const op = "joint_make_pin"
	j, err := s.joint(op, joint)
	if err != nil {
		return err
	}
	ba, bb, err := s.jointBodies(op, a, b, true)
	if err != nil {
		return err
	}
	j.makePin(pivot, ba, bb)
	return nil
}

// JointMakeGroove keeps anchorB of body b on the segment grooveA-grooveB
// of body a. Points are in world space.
func (s *Server) JointMakeGroove(joint Handle, grooveA, grooveB, anchorB vec.Vec2, a, b Handle) error {
	const op = "joint_make_groove"
	j, err := s.joint(op, joint)
	if err != nil {
		return err
	}
	ba, bb, err := s.jointBodies(op, a, b, false)
	if err != nil {
		return err
	}
	j.makeGroove(grooveA, grooveB, anchorB, ba, bb)
	return nil
}

// JointMakeDampedSpring joins world anchors of a and b with a spring whose
// rest length is their current distance.
func (s *Server) JointMakeDampedSpring(joint Handle, anchorA, anchorB vec.Vec2, a, b Handle) error {
	const op = "joint_make_damped_spring"
	j, err := s.joint(op, joint)
	if err != nil {
		return err
	}
	ba, bb, err := s.jointBodies(op, a, b, false)
	if err != nil {
		return err
	}
	j.makeDampedSpring(anchorA, anchorB, ba, bb)
	return nil
}

// JointGetType returns the kind of the joint, JointTypeNone when cleared.
func (s *Server) JointGetType(joint Handle) JointType {
	j, err := s.joint("joint_get_type", joint)
	if err != nil {
		return JointTypeNone
	}
	return j.kind
}

// JointSetParam sets a parameter shared by every joint kind.
func (s *Server) JointSetParam(joint Handle, param JointParam, value float64) error {
	j, err := s.joint("joint_set_param", joint)
	if err != nil {
		return err
	}
	j.setParam(param, value)
	return nil
}

// JointGetParam returns a parameter shared by every joint kind.
func (s *Server) JointGetParam(joint Handle, param JointParam) float64 {
	j, err := s.joint("joint_get_param", joint)
	if err != nil {
		return 0
	}
	return j.param(param)
}

// JointDisableCollisionsBetweenBodies adds or removes mutual collision
// exceptions between the two bodies of the joint.
func (s *Server) JointDisableCollisionsBetweenBodies(joint Handle, disable bool) error {
	j, err := s.joint("joint_disable_collisions_between_bodies", joint)
	if err != nil {
		return err
	}
	j.setDisableCollisions(disable)
	return nil
}

// JointIsDisabledCollisionsBetweenBodies reports whether the joint bodies ignore each other.
func (s *Server) JointIsDisabledCollisionsBetweenBodies(joint Handle) bool {
	j, err := s.joint("joint_is_disabled_collisions_between_bodies", joint)
	if err != nil {
		return true
	}
	return j.disableCollisions
}

func (s *Server) typedJoint(op string, h Handle, kind JointType) (*Joint, error) {
	j, err := s.joint(op, h)
	if err != nil {
		return nil, err
	}
	if j.kind != kind {
		return nil, s.fail(op, fmt.Errorf("%v is a %v joint: %w", h, j.kind, ErrKindMismatch))
	}
	return j, nil
}

// PinJointSetParam sets a pin joint parameter.
func (s *Server) PinJointSetParam(joint Handle, param PinJointParam, value float64) error {
	j, err := s.typedJoint("pin_joint_set_param", joint, JointTypePin)
	if err != nil {
		return err
	}
	j.constraint.pin.setParam(param, value)
	return nil
}

// PinJointGetParam returns a pin joint parameter.
func (s *Server) PinJointGetParam(joint Handle, param PinJointParam) float64 {
	j, err := s.typedJoint("pin_joint_get_param", joint, JointTypePin)
	if err != nil {
		return 0
	}
	return j.constraint.pin.param(param)
}

// PinJointSetFlag switches the angular limit or the motor of a pin joint.
func (s *Server) PinJointSetFlag(joint Handle, flag PinJointFlag, enabled bool) error {
	j, err := s.typedJoint("pin_joint_set_flag", joint, JointTypePin)
	if err != nil {
		return err
	}
	j.constraint.pin.setFlag(flag, enabled)
	return nil
}

// PinJointGetFlag reports whether a pin joint behavior is on.
func (s *Server) PinJointGetFlag(joint Handle, flag PinJointFlag) bool {
	j, err := s.typedJoint("pin_joint_get_flag", joint, JointTypePin)
	if err != nil {
		return false
	}
	return j.constraint.pin.flag(flag)
}

// DampedSpringSetParam sets a damped spring parameter.
func (s *Server) DampedSpringSetParam(joint Handle, param DampedSpringParam, value float64) error {
	j, err := s.typedJoint("damped_spring_set_param", joint, JointTypeDampedSpring)
	if err != nil {
		return err
	}
	j.constraint.spring.setParam(param, value)
	return nil
}

// DampedSpringGetParam returns a damped spring parameter.
func (s *Server) DampedSpringGetParam(joint Handle, param DampedSpringParam) float64 {
	j, err := s.typedJoint("damped_spring_get_param", joint, JointTypeDampedSpring)
	if err != nil {
		return 0
	}
	return j.constraint.spring.param(param)
}
