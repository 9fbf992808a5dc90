package space2d

import (
	"fmt"

	"github.com/setanarut/vec"
)

// ShapeCreate registers an empty shape of the given kind. It collides with
// nothing until ShapeSetData gives it geometry.
func (s *Server) ShapeCreate(kind ShapeType) Handle {
	sh := newShape(kind)
	sh.handle = s.shapes.make(sh)
	return sh.handle
}

// ShapeSetData replaces the geometry. Every object using the shape is
// updated on its next tick.
func (s *Server) ShapeSetData(shape Handle, data ShapeData) error {
	const op = "shape_set_data"
	sh, err := lookup(s, s.shapes, op, shape)
	if err != nil {
		return err
	}
	if data == nil || data.ShapeType() != sh.kind {
		return s.fail(op, fmt.Errorf("%v is %v: %w", shape, sh.kind, ErrKindMismatch))
	}
	return sh.setData(data)
}

// ShapeGetData returns the geometry of the shape, nil before it is set.
func (s *Server) ShapeGetData(shape Handle) ShapeData {
	sh, err := lookup(s, s.shapes, "shape_get_data", shape)
	if err != nil {
		return nil
	}
	return sh.data
}

// ShapeGetType returns the type the shape was created with.
func (s *Server) ShapeGetType(shape Handle) ShapeType {
	sh, err := lookup(s, s.shapes, "shape_get_type", shape)
	if err != nil {
		return ShapeWorldBoundary
	}
	return sh.kind
}

// ShapeSetCustomSolverBias sets the contact bias used instead of the space
// default. Zero restores the default.
func (s *Server) ShapeSetCustomSolverBias(shape Handle, bias float64) error {
	sh, err := lookup(s, s.shapes, "shape_set_custom_solver_bias", shape)
	if err != nil {
		return err
	}
	sh.setCustomSolverBias(bias)
	return nil
}

// ShapeGetCustomSolverBias returns the contact bias of the shape, zero for the space default.
func (s *Server) ShapeGetCustomSolverBias(shape Handle) float64 {
	sh, err := lookup(s, s.shapes, "shape_get_custom_solver_bias", shape)
	if err != nil {
		return 0
	}
	return sh.customBias
}

// ShapeCollide returns contact point pairs between two shapes swept along
// their motions, at the first position where they touch. A lies on the
// first shape and B on the second. At most maxPairs pairs are returned
// when maxPairs is positive.
func (s *Server) ShapeCollide(shapeA Handle, xa Transform, motionA vec.Vec2, shapeB Handle, xb Transform, motionB vec.Vec2, maxPairs int) ([]vec.Vec2, error) {
	const op = "shape_collide"
	a, err := lookup(s, s.shapes, op, shapeA)
	if err != nil {
		return nil, err
	}
	b, err := lookup(s, s.shapes, op, shapeB)
	if err != nil {
		return nil, err
	}
	return collidePoints(a, xa, motionA, b, xb, motionB, maxPairs), nil
}

// collidePoints flattens the first touching manifold of a sweep into point pairs.
func collidePoints(a *Shape, xa Transform, ma vec.Vec2, b *Shape, xb Transform, mb vec.Vec2, maxPairs int) []vec.Vec2 {
	m, ok := sweepCollide(DefaultCollider, a, xa, ma, b, xb, mb)
	if !ok {
		return nil
	}
	n := m.Count
	if maxPairs > 0 {
		n = min(n, maxPairs)
	}
	points := make([]vec.Vec2, 0, 2*n)
	for i := range n {
		points = append(points, m.Points[i].A, m.Points[i].B)
	}
	return points
}
