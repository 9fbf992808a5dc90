package space2d

import (
	"fmt"

	"github.com/setanarut/vec"
)

// SoftBodyCreate makes an empty soft body outside any space.
func (s *Server) SoftBodyCreate() Handle {
	sb := newSoftBody(s.logger)
	sb.handle = s.softBodies.make(sb)
	return sb.handle
}

func (s *Server) softBody(op string, h Handle) (*SoftBody, error) {
	return lookup(s, s.softBodies, op, h)
}

// SoftBodyGet returns the soft body behind a handle, nil if the handle is invalid.
func (s *Server) SoftBodyGet(soft Handle) *SoftBody {
	return s.softBodies.get(soft)
}

// SoftBodySetSpace moves the soft body to space, or out of every space when space is zero.
func (s *Server) SoftBodySetSpace(soft, space Handle) error {
	const op = "soft_body_set_space"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	sp, err := s.optionalSpace(op, space)
	if err != nil {
		return err
	}
	if sb.space == sp {
		return nil
	}
	if err := s.checkFlush(op, &sb.CollisionObject); err != nil {
		return err
	}
	sb.setSpace(sp)
	return nil
}

// SoftBodyGetSpace returns the space of the soft body, zero when it is in none.
func (s *Server) SoftBodyGetSpace(soft Handle) Handle {
	sb, err := s.softBody("soft_body_get_space", soft)
	if err != nil {
		return 0
	}
	return spaceHandle(sb.space)
}

// SoftBodySetPoints replaces every point and drops every link.
func (s *Server) SoftBodySetPoints(soft Handle, positions []vec.Vec2) error {
	const op = "soft_body_set_points"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	if err := s.checkFlush(op, &sb.CollisionObject); err != nil {
		return err
	}
	sb.setPoints(positions)
	return nil
}

// SoftBodyAddLink joins points a and b at their current distance.
func (s *Server) SoftBodyAddLink(soft Handle, a, b int) error {
	const op = "soft_body_add_link"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	if !sb.addLink(a, b) {
		return s.fail(op, fmt.Errorf("link %d-%d of %d points: %w", a, b, len(sb.points), ErrIndexOutOfRange))
	}
	return nil
}

// SoftBodyGetPointCount returns the number of points.
func (s *Server) SoftBodyGetPointCount(soft Handle) int {
	sb, err := s.softBody("soft_body_get_point_count", soft)
	if err != nil {
		return 0
	}
	return len(sb.points)
}

// SoftBodyGetPointPosition returns the world position of point i.
func (s *Server) SoftBodyGetPointPosition(soft Handle, i int) vec.Vec2 {
	sb, err := s.softBody("soft_body_get_point_position", soft)
	if err != nil {
		return vec.Vec2{}
	}
	return sb.PointPosition(i)
}

// SoftBodyMovePoint teleports point i and clears its motion.
func (s *Server) SoftBodyMovePoint(soft Handle, i int, p vec.Vec2) error {
	const op = "soft_body_move_point"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	if !sb.movePoint(i, p) {
		return s.fail(op, fmt.Errorf("point %d: %w", i, ErrIndexOutOfRange))
	}
	return nil
}

// SoftBodyPinPoint fixes point i in place or frees it.
func (s *Server) SoftBodyPinPoint(soft Handle, i int, pinned bool) error {
	const op = "soft_body_pin_point"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	if !sb.pinPoint(i, pinned) {
		return s.fail(op, fmt.Errorf("point %d: %w", i, ErrIndexOutOfRange))
	}
	return nil
}

// SoftBodySetTotalMass spreads mass evenly over the free points.
func (s *Server) SoftBodySetTotalMass(soft Handle, mass float64) error {
	sb, err := s.softBody("soft_body_set_total_mass", soft)
	if err != nil {
		return err
	}
	sb.setTotalMass(mass)
	return nil
}

// SoftBodySetLinearStiffness sets how much of a link error one pass corrects, clamped to [0, 1].
func (s *Server) SoftBodySetLinearStiffness(soft Handle, stiffness float64) error {
	sb, err := s.softBody("soft_body_set_linear_stiffness", soft)
	if err != nil {
		return err
	}
	sb.linearStiffness = clamp01(stiffness)
	return nil
}

// SoftBodySetDampingCoefficient sets the damping added to the default area damping.
func (s *Server) SoftBodySetDampingCoefficient(soft Handle, damping float64) error {
	sb, err := s.softBody("soft_body_set_damping_coefficient", soft)
	if err != nil {
		return err
	}
	sb.dampingCoefficient = max(0, damping)
	return nil
}

// SoftBodySetSimulationPrecision sets the link relaxation passes per tick.
func (s *Server) SoftBodySetSimulationPrecision(soft Handle, passes int) error {
	sb, err := s.softBody("soft_body_set_simulation_precision", soft)
	if err != nil {
		return err
	}
	sb.simulationPrecision = max(1, passes)
	return nil
}

// SoftBodySetCollisionMargin sets the radius each point collides with.
func (s *Server) SoftBodySetCollisionMargin(soft Handle, margin float64) error {
	sb, err := s.softBody("soft_body_set_collision_margin", soft)
	if err != nil {
		return err
	}
	sb.setCollisionMargin(margin)
	return nil
}

// SoftBodySetCollisionLayer sets the layers the soft body is found in.
func (s *Server) SoftBodySetCollisionLayer(soft Handle, layer uint32) error {
	const op = "soft_body_set_collision_layer"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	return s.setCollisionLayer(op, &sb.CollisionObject, layer)
}

// SoftBodySetCollisionMask sets the layers the soft body looks for.
func (s *Server) SoftBodySetCollisionMask(soft Handle, mask uint32) error {
	const op = "soft_body_set_collision_mask"
	sb, err := s.softBody(op, soft)
	if err != nil {
		return err
	}
	return s.setCollisionMask(op, &sb.CollisionObject, mask)
}

// SoftBodyAttachObjectInstanceID stores a host id for the soft body.
func (s *Server) SoftBodyAttachObjectInstanceID(soft Handle, id uint64) error {
	sb, err := s.softBody("soft_body_attach_object_instance_id", soft)
	if err != nil {
		return err
	}
	sb.instanceID = id
	return nil
}
