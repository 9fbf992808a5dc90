package space2d

import "fmt"

// Shape list operations shared by bodies and areas.

func (s *Server) addShape(op string, co *CollisionObject, shape Handle, xform Transform, disabled bool) error {
	sh, err := lookup(s, s.shapes, op, shape)
	if err != nil {
		return err
	}
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.addShape(sh, xform, disabled)
	return nil
}

func (s *Server) shapeIndex(op string, co *CollisionObject, index int) error {
	if !co.validIndex(index) {
		return s.fail(op, fmt.Errorf("%v shape %d of %d: %w", co.handle, index, len(co.shapes), ErrIndexOutOfRange))
	}
	return nil
}

func (s *Server) setShape(op string, co *CollisionObject, index int, shape Handle) error {
	sh, err := lookup(s, s.shapes, op, shape)
	if err != nil {
		return err
	}
	if err := s.shapeIndex(op, co, index); err != nil {
		return err
	}
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.setShape(index, sh)
	return nil
}

func (s *Server) setShapeTransform(op string, co *CollisionObject, index int, xform Transform) error {
	if err := s.shapeIndex(op, co, index); err != nil {
		return err
	}
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.setShapeTransform(index, xform)
	return nil
}

func (s *Server) setShapeDisabled(op string, co *CollisionObject, index int, disabled bool) error {
	if err := s.shapeIndex(op, co, index); err != nil {
		return err
	}
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.setShapeDisabled(index, disabled)
	return nil
}

func (s *Server) removeShape(op string, co *CollisionObject, index int) error {
	if err := s.shapeIndex(op, co, index); err != nil {
		return err
	}
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.removeShapeAt(index)
	return nil
}

func (s *Server) clearShapes(op string, co *CollisionObject) error {
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.clearShapes()
	return nil
}

func (s *Server) setCollisionLayer(op string, co *CollisionObject, layer uint32) error {
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.setCollisionLayer(layer)
	return nil
}

func (s *Server) setCollisionMask(op string, co *CollisionObject, mask uint32) error {
	if err := s.checkFlush(op, co); err != nil {
		return err
	}
	co.setCollisionMask(mask)
	return nil
}

func spaceHandle(sp *Space) Handle {
	if sp == nil {
		return 0
	}
	return sp.handle
}

func (co *CollisionObject) shapeHandle(index int) Handle {
	if !co.validIndex(index) {
		return 0
	}
	return co.shapes[index].shape.handle
}
