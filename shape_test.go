package space2d

import (
	"math"
	"testing"

	"github.com/setanarut/vec"
)

func closeTo(a, b vec.Vec2, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func shapeOf(t *testing.T, data ShapeData) *Shape {
	t.Helper()
	s := newShape(data.ShapeType())
	if err := s.setData(data); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestShapeCapsule(t *testing.T) {
	c := shapeOf(t, CapsuleData{Height: 40, Radius: 10})
	if got, want := c.aabb(NewTransformTranslate(vec2(100, 0))), NewBB(90, -20, 110, 20); got != want {
		t.Errorf("got [%v] want [%v]", got, want)
	}

	points := []struct {
		p    vec.Vec2
		want bool
	}{
		{vec2(0, 0), true},
		{vec2(0, -19), true},
		{vec2(9, -19), false},
		{vec2(11, 0), false},
	}
	for _, tt := range points {
		if got := c.containsPoint(NewTransformIdentity(), tt.p); got != tt.want {
			t.Errorf("contains %v: got [%v] want [%v]", tt.p, got, tt.want)
		}
	}

	hit, ok := c.segmentQuery(NewTransformIdentity(), vec2(-50, 0), vec2(150, 0), 0)
	if !ok {
		t.Fatal("got no hit want the side of the capsule")
	}
	if !closeTo(hit.Point, vec2(-10, 0), 1e-9) || !closeTo(hit.Normal, vec2(-1, 0), 1e-9) || math.Abs(hit.Alpha-0.2) > 1e-9 {
		t.Errorf("got [%+v] want point (-10,0) normal (-1,0) alpha 0.2", hit)
	}
	hit, ok = c.segmentQuery(NewTransformIdentity(), vec2(0, -50), vec2(0, 50), 0)
	if !ok || !closeTo(hit.Point, vec2(0, -20), 1e-6) {
		t.Errorf("got [%+v %v] want the top cap at (0,-20)", hit, ok)
	}

	if got := c.momentOfInertia(1); got <= MomentForCircle(1, 0, 10, vec.Vec2{}) {
		t.Errorf("got inertia [%v] want more than the end circle", got)
	}
	if bad := shapeOf(t, CapsuleData{Height: 40}); bad.configured {
		t.Error("got a capsule without radius configured")
	}
}

func TestShapeConcavePolygon(t *testing.T) {
	square := ConcavePolygonData{Segments: []vec.Vec2{
		vec2(0, 0), vec2(10, 0),
		vec2(10, 0), vec2(10, 10),
		vec2(10, 10), vec2(0, 10),
		vec2(0, 10), vec2(0, 0),
		vec2(3, 3), // unpaired
	}}
	c := shapeOf(t, square)
	if len(c.parts) != 4 {
		t.Fatalf("got [%v] segments want [4]", len(c.parts))
	}
	if got, want := c.aabb(NewTransformIdentity()), NewBB(0, 0, 10, 10); got != want {
		t.Errorf("got [%v] want [%v]", got, want)
	}
	if !c.containsPoint(NewTransformIdentity(), vec2(5, 5)) {
		t.Error("got center outside want inside")
	}
	if c.containsPoint(NewTransformIdentity(), vec2(15, 5)) {
		t.Error("got (15,5) inside want outside")
	}

	hit, ok := c.segmentQuery(NewTransformIdentity(), vec2(5, -10), vec2(5, 20), 0)
	if !ok || !closeTo(hit.Point, vec2(5, 0), 1e-9) || !closeTo(hit.Normal, vec2(0, -1), 1e-9) {
		t.Errorf("got [%+v %v] want the nearest segment at (5,0)", hit, ok)
	}

	ball := shapeOf(t, CircleData{Radius: 3})
	m, ok := DefaultCollider(c, NewTransformIdentity(), ball, NewTransformTranslate(vec2(5, -2)))
	if !ok || math.Abs(m.depth()-1) > 1e-9 {
		t.Errorf("got [%v %v] want depth 1", m.depth(), ok)
	}
	if _, ok := DefaultCollider(c, NewTransformIdentity(), c, NewTransformTranslate(vec2(5, 5))); ok {
		t.Error("got two concave polygons touching want no contact")
	}
	if empty := shapeOf(t, ConcavePolygonData{Segments: []vec.Vec2{vec2(1, 1), vec2(1, 1)}}); empty.configured {
		t.Error("got a polygon of degenerate segments configured")
	}
}

func TestShapeCapsuleOnBoundary(t *testing.T) {
	floor := shapeOf(t, WorldBoundaryData{Normal: vec2(0, -1)})
	c := shapeOf(t, CapsuleData{Height: 40, Radius: 10})

	m, ok := DefaultCollider(c, NewTransformTranslate(vec2(0, -19)), floor, NewTransformIdentity())
	if !ok {
		t.Fatal("got no contact want the lower cap on the floor")
	}
	if !closeTo(m.Normal, vec2(0, 1), 1e-9) || math.Abs(m.depth()-1) > 1e-9 {
		t.Errorf("got normal [%v] depth [%v] want (0,1) and 1", m.Normal, m.depth())
	}
	if _, ok := DefaultCollider(c, NewTransformTranslate(vec2(0, -21)), floor, NewTransformIdentity()); ok {
		t.Error("got contact above the floor")
	}
}

func TestShapeSeparationRayContact(t *testing.T) {
	ray := shapeOf(t, SeparationRayData{Length: 20})
	slider := shapeOf(t, SeparationRayData{Length: 20, SlideOnSlope: true})
	box := shapeOf(t, RectangleData{HalfExtents: vec2(100, 10)})
	slope := shapeOf(t, WorldBoundaryData{Normal: vec2(1, -1)})
	at := NewTransformTranslate(vec2(0, -15))
	s2 := math.Sqrt2 / 2

	tests := []struct {
		name       string
		ray        *Shape
		other      *Shape
		xo         Transform
		wantNormal vec.Vec2
		wantDepth  float64
	}{
		{"box", ray, box, NewTransformTranslate(vec2(0, 10)), vec2(0, 1), 5},
		{"slope along ray", ray, slope, NewTransformIdentity(), vec2(0, 1), 5},
		{"slope sliding", slider, slope, NewTransformIdentity(), vec2(-s2, s2), 5 * s2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := DefaultCollider(tt.ray, at, tt.other, tt.xo)
			if !ok {
				t.Fatal("got no contact")
			}
			if !closeTo(m.Normal, tt.wantNormal, 1e-9) || math.Abs(m.Points[0].Depth-tt.wantDepth) > 1e-9 {
				t.Errorf("got normal [%v] depth [%v] want [%v] [%v]", m.Normal, m.Points[0].Depth, tt.wantNormal, tt.wantDepth)
			}
			if !closeTo(m.Points[0].A, vec2(0, 5), 1e-9) {
				t.Errorf("got tip [%v] want [(0,5)]", m.Points[0].A)
			}
		})
	}

	if _, ok := DefaultCollider(ray, NewTransformTranslate(vec2(0, 5)), box, NewTransformTranslate(vec2(0, 10))); ok {
		t.Error("got contact for a ray starting inside want none")
	}
	if _, ok := DefaultCollider(ray, at, ray, at); ok {
		t.Error("got two rays touching want none")
	}
}

func TestShapeInflated(t *testing.T) {
	tests := []struct {
		name string
		data ShapeData
		out  vec.Vec2 // just outside the shape, within the margin
	}{
		{"circle", CircleData{Radius: 5}, vec2(5.5, 0)},
		{"rectangle", RectangleData{HalfExtents: vec2(5, 5)}, vec2(5.5, 0)},
		{"capsule", CapsuleData{Height: 20, Radius: 5}, vec2(0, 10.5)},
		{"segment", SegmentData{A: vec2(-5, 0), B: vec2(5, 0)}, vec2(0, 0.5)},
		{"polygon", ConvexPolygonData{Points: []vec.Vec2{vec2(-5, -5), vec2(5, -5), vec2(5, 5), vec2(-5, 5)}}, vec2(0, -5.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := shapeOf(t, tt.data)
			if s.containsPoint(NewTransformIdentity(), tt.out) {
				t.Fatalf("got [%v] inside the plain shape", tt.out)
			}
			grown := s.inflated(1)
			if grown == s {
				t.Fatal("got the same shape want a grown copy")
			}
			if !grown.containsPoint(NewTransformIdentity(), tt.out) {
				t.Errorf("got [%v] outside the grown shape", tt.out)
			}
		})
	}
	s := shapeOf(t, CircleData{Radius: 5})
	if s.inflated(0) != s {
		t.Error("got a copy for a zero margin")
	}
}
