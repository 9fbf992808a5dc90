package space2d

import "fmt"

// AreaCreate makes an area outside any space.
func (s *Server) AreaCreate() Handle {
	a := newArea(s.logger)
	a.handle = s.areas.make(a)
	return a.handle
}

// area resolves an area handle. A space handle stands for the space
// default area.
func (s *Server) area(op string, h Handle) (*Area, error) {
	if h.Kind() == HandleSpace {
		sp, err := lookup(s, s.spaces, op, h)
		if err != nil {
			return nil, err
		}
		if sp.defaultArea == nil {
			return nil, s.fail(op, fmt.Errorf("%v has no default area: %w", h, ErrInvalidState))
		}
		return sp.defaultArea, nil
	}
	return lookup(s, s.areas, op, h)
}

// AreaGet returns the area behind a handle, nil if the handle is invalid.
func (s *Server) AreaGet(area Handle) *Area {
	return s.areas.get(area)
}

// AreaSetSpace moves the area to space, or out of every space when space is
// zero. Exit events caused by leaving a space are delivered before it returns.
func (s *Server) AreaSetSpace(area, space Handle) error {
	const op = "area_set_space"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	sp, err := s.optionalSpace(op, space)
	if err != nil {
		return err
	}
	if a.space == sp {
		return nil
	}
	if a.defaultOf != nil {
		return s.fail(op, fmt.Errorf("%v is the default area of %v: %w", a.handle, a.defaultOf.handle, ErrInvalidState))
	}
	if err := s.checkFlush(op, &a.CollisionObject); err != nil {
		return err
	}
	leaving := a.space != nil
	a.setSpace(sp)
	if leaving {
		s.deliverArea(a)
	}
	return nil
}

// AreaGetSpace returns the space of the area, zero when it is in none.
func (s *Server) AreaGetSpace(area Handle) Handle {
	a, err := s.area("area_get_space", area)
	if err != nil {
		return 0
	}
	return spaceHandle(a.space)
}

// AreaAddShape appends shape at xform relative to the area.
func (s *Server) AreaAddShape(area, shape Handle, xform Transform, disabled bool) error {
	const op = "area_add_shape"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.addShape(op, &a.CollisionObject, shape, xform, disabled)
}

// AreaSetShape replaces the shape at index.
func (s *Server) AreaSetShape(area Handle, index int, shape Handle) error {
	const op = "area_set_shape"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.setShape(op, &a.CollisionObject, index, shape)
}

// AreaSetShapeTransform moves the shape at index relative to the area.
func (s *Server) AreaSetShapeTransform(area Handle, index int, xform Transform) error {
	const op = "area_set_shape_transform"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.setShapeTransform(op, &a.CollisionObject, index, xform)
}

// AreaSetShapeDisabled turns detection by the shape at index off or on.
func (s *Server) AreaSetShapeDisabled(area Handle, index int, disabled bool) error {
	const op = "area_set_shape_disabled"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.setShapeDisabled(op, &a.CollisionObject, index, disabled)
}

// AreaRemoveShape drops the shape at index. Later shapes move down one index.
func (s *Server) AreaRemoveShape(area Handle, index int) error {
	const op = "area_remove_shape"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.removeShape(op, &a.CollisionObject, index)
}

// AreaClearShapes drops every shape.
func (s *Server) AreaClearShapes(area Handle) error {
	const op = "area_clear_shapes"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.clearShapes(op, &a.CollisionObject)
}

// AreaGetShapeCount returns the number of shapes.
func (s *Server) AreaGetShapeCount(area Handle) int {
	a, err := s.area("area_get_shape_count", area)
	if err != nil {
		return 0
	}
	return len(a.shapes)
}

// AreaGetShape returns the shape at index, zero if there is none.
func (s *Server) AreaGetShape(area Handle, index int) Handle {
	a, err := s.area("area_get_shape", area)
	if err != nil {
		return 0
	}
	return a.shapeHandle(index)
}

// AreaGetShapeTransform returns the local transform of the shape at index.
func (s *Server) AreaGetShapeTransform(area Handle, index int) Transform {
	a, err := s.area("area_get_shape_transform", area)
	if err != nil {
		return NewTransformIdentity()
	}
	return a.ShapeTransform(index)
}

// AreaAttachObjectInstanceID stores a host id carried by monitor events.
func (s *Server) AreaAttachObjectInstanceID(area Handle, id uint64) error {
	a, err := s.area("area_attach_object_instance_id", area)
	if err != nil {
		return err
	}
	a.instanceID = id
	return nil
}

// AreaGetObjectInstanceID returns the host id attached to the area.
func (s *Server) AreaGetObjectInstanceID(area Handle) uint64 {
	a, err := s.area("area_get_object_instance_id", area)
	if err != nil {
		return 0
	}
	return a.instanceID
}

// AreaSetParam sets a gravity, damping or priority parameter. The value
// type must match the parameter: AreaOverrideMode for override modes,
// vec.Vec2 for the gravity vector, bool for point gravity, int for the
// priority and float64 otherwise.
func (s *Server) AreaSetParam(area Handle, param AreaParameter, value any) error {
	const op = "area_set_param"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	if !a.setParam(param, value) {
		return s.fail(op, fmt.Errorf("param %d got %T: %w", param, value, ErrKindMismatch))
	}
	return nil
}

// AreaGetParam returns an override parameter with the type AreaSetParam takes.
func (s *Server) AreaGetParam(area Handle, param AreaParameter) any {
	a, err := s.area("area_get_param", area)
	if err != nil {
		return nil
	}
	return a.param(param)
}

// AreaSetTransform moves the area.
func (s *Server) AreaSetTransform(area Handle, xform Transform) error {
	a, err := s.area("area_set_transform", area)
	if err != nil {
		return err
	}
	a.setTransform(xform, true)
	return nil
}

// AreaGetTransform returns the transform of the area.
func (s *Server) AreaGetTransform(area Handle) Transform {
	a, err := s.area("area_get_transform", area)
	if err != nil {
		return NewTransformIdentity()
	}
	return a.transform
}

// AreaSetMonitorable lets other areas monitor this one.
func (s *Server) AreaSetMonitorable(area Handle, monitorable bool) error {
	const op = "area_set_monitorable"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	if err := s.checkFlush(op, &a.CollisionObject); err != nil {
		return err
	}
	a.setMonitorable(monitorable)
	return nil
}

// AreaSetCollisionLayer sets the layers the area is found in.
func (s *Server) AreaSetCollisionLayer(area Handle, layer uint32) error {
	const op = "area_set_collision_layer"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.setCollisionLayer(op, &a.CollisionObject, layer)
}

// AreaGetCollisionLayer returns the layers the area is found in.
func (s *Server) AreaGetCollisionLayer(area Handle) uint32 {
	a, err := s.area("area_get_collision_layer", area)
	if err != nil {
		return 0
	}
	return a.layer
}

// AreaSetCollisionMask sets the layers the area monitors.
func (s *Server) AreaSetCollisionMask(area Handle, mask uint32) error {
	const op = "area_set_collision_mask"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	return s.setCollisionMask(op, &a.CollisionObject, mask)
}

// AreaGetCollisionMask returns the layers the area monitors.
func (s *Server) AreaGetCollisionMask(area Handle) uint32 {
	a, err := s.area("area_get_collision_mask", area)
	if err != nil {
		return 0
	}
	return a.mask
}

// AreaSetPickable includes or excludes the area from pickable point queries.
func (s *Server) AreaSetPickable(area Handle, pickable bool) error {
	a, err := s.area("area_set_pickable", area)
	if err != nil {
		return err
	}
	a.pickable = pickable
	return nil
}

// AreaSetMonitorCallback registers f to receive bodies entering and leaving
// the area. Overlaps that already exist are reported again as entries.
func (s *Server) AreaSetMonitorCallback(area Handle, f AreaMonitorFunc) error {
	const op = "area_set_monitor_callback"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	if err := s.checkFlush(op, &a.CollisionObject); err != nil {
		return err
	}
	a.setMonitorCallback(f)
	return nil
}

// AreaSetAreaMonitorCallback registers f to receive monitorable areas
// entering and leaving the area.
func (s *Server) AreaSetAreaMonitorCallback(area Handle, f AreaMonitorFunc) error {
	const op = "area_set_area_monitor_callback"
	a, err := s.area(op, area)
	if err != nil {
		return err
	}
	if err := s.checkFlush(op, &a.CollisionObject); err != nil {
		return err
	}
	a.setAreaMonitorCallback(f)
	return nil
}
