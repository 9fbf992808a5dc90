package space2d

import (
	"fmt"
	"math"
	"slices"

	"github.com/setanarut/vec"
)

// ShapeType enumerates the geometric descriptors a Shape can hold.
type ShapeType uint8

const (
	ShapeWorldBoundary ShapeType = iota
	ShapeSeparationRay
	ShapeSegment
	ShapeCircle
	ShapeRectangle
	ShapeConvexPolygon
	ShapeCapsule
	ShapeConcavePolygon
)

var shapeTypeNames = [...]string{"world_boundary", "separation_ray", "segment", "circle", "rectangle", "convex_polygon", "capsule", "concave_polygon"}

func (t ShapeType) String() string {
	if int(t) < len(shapeTypeNames) {
		return shapeTypeNames[t]
	}
	return fmt.Sprintf("ShapeType(%d)", uint8(t))
}

// worldBoundaryExtent bounds the box reported for infinite half planes.
const worldBoundaryExtent = 1e7

// ShapeData is the data blob of one shape type.
type ShapeData interface {
	ShapeType() ShapeType
}

// CircleData describes a circle centered on the shape origin.
type CircleData struct {
	Radius float64
}

// RectangleData describes a box centered on the shape origin.
type RectangleData struct {
	HalfExtents vec.Vec2
}

// ConvexPolygonData holds the polygon points. They are reduced to their
// convex hull and wound counter-clockwise when stored.
type ConvexPolygonData struct {
	Points []vec.Vec2
}

// SegmentData is a two sided line segment.
type SegmentData struct {
	A, B vec.Vec2
}

// WorldBoundaryData is the half plane Normal·p <= Distance. Normal points out of the solid side.
type WorldBoundaryData struct {
	Normal   vec.Vec2
	Distance float64
}

// SeparationRayData is a ray along the shape's +Y axis.
type SeparationRayData struct {
	Length       float64
	SlideOnSlope bool
}

// CapsuleData is a capsule standing on the shape's Y axis. Height covers
// both caps.
type CapsuleData struct {
	Height float64
	Radius float64
}

// ConcavePolygonData is a soup of two sided segments, Segments[2i] to
// Segments[2i+1]. A trailing odd point is ignored.
type ConcavePolygonData struct {
	Segments []vec.Vec2
}

func (CircleData) ShapeType() ShapeType         { return ShapeCircle }
func (RectangleData) ShapeType() ShapeType      { return ShapeRectangle }
func (ConvexPolygonData) ShapeType() ShapeType  { return ShapeConvexPolygon }
func (SegmentData) ShapeType() ShapeType        { return ShapeSegment }
func (WorldBoundaryData) ShapeType() ShapeType  { return ShapeWorldBoundary }
func (SeparationRayData) ShapeType() ShapeType  { return ShapeSeparationRay }
func (CapsuleData) ShapeType() ShapeType        { return ShapeCapsule }
func (ConcavePolygonData) ShapeType() ShapeType { return ShapeConcavePolygon }

// Shape is an immutable geometric descriptor shared by any number of
// collision objects. Owners are reference counted per use, an object that
// adds the same shape twice counts twice.
type Shape struct {
	handle Handle
	kind   ShapeType
	data   ShapeData

	radius  float64
	a, b    vec.Vec2
	verts   []vec.Vec2 // counter-clockwise
	normals []vec.Vec2 // normals[i] is the outward normal of verts[i] -> verts[i+1]

	localBB    BB
	configured bool
	customBias float64
	slide      bool

	// parts splits capsules and concave polygons into convex pieces for the narrow phase.
	parts []shapePart

	owners map[*CollisionObject]int
}

// shapePart is one convex piece of a compound shape, placed by offset in
// the shape's frame.
type shapePart struct {
	shape  *Shape
	offset Transform
}

func newShape(kind ShapeType) *Shape {
	return &Shape{
		kind:   kind,
		owners: make(map[*CollisionObject]int),
	}
}

// Type returns the shape type.
func (s *Shape) Type() ShapeType {
	return s.kind
}

// Data returns the last data set on the shape, nil if none.
func (s *Shape) Data() ShapeData {
	return s.data
}

// CustomSolverBias returns the bias used instead of the space default when non zero.
func (s *Shape) CustomSolverBias() float64 {
	return s.customBias
}

// setData replaces the geometry and tells every owner.
func (s *Shape) setData(data ShapeData) error {
	if data == nil || data.ShapeType() != s.kind {
		return fmt.Errorf("shape %v: %w", s.kind, ErrKindMismatch)
	}
	s.data = data
	s.verts, s.normals, s.parts = nil, nil, nil
	s.configured = true
	s.slide = false

	switch d := data.(type) {
	case CircleData:
		s.radius = d.Radius
		s.configured = d.Radius > 0
		s.localBB = NewBBForCircle(vec.Vec2{}, d.Radius)
	case RectangleData:
		he := d.HalfExtents
		s.configured = he.X > 0 && he.Y > 0
		s.setPolygon([]vec.Vec2{{X: -he.X, Y: -he.Y}, {X: he.X, Y: -he.Y}, {X: he.X, Y: he.Y}, {X: -he.X, Y: he.Y}})
	case ConvexPolygonData:
		hull := convexHull(d.Points, 0)
		s.configured = len(hull) >= 3
		s.setPolygon(hull)
	case SegmentData:
		s.a, s.b = d.A, d.B
		s.configured = d.A.Distance(d.B) > magicEpsilon
		n := d.B.Sub(d.A).Unit().ReversePerp()
		s.verts = []vec.Vec2{d.A, d.B}
		s.normals = []vec.Vec2{n, n.Neg()}
		s.localBB = NewBB(math.Min(d.A.X, d.B.X), math.Min(d.A.Y, d.B.Y), math.Max(d.A.X, d.B.X), math.Max(d.A.Y, d.B.Y))
	case WorldBoundaryData:
		s.configured = d.Normal.LengthSq() > magicEpsilon
		if s.configured {
			s.a = d.Normal.Unit()
		}
		s.radius = d.Distance
		s.localBB = NewBB(-worldBoundaryExtent, -worldBoundaryExtent, worldBoundaryExtent, worldBoundaryExtent)
	case SeparationRayData:
		s.radius = d.Length
		s.slide = d.SlideOnSlope
		s.configured = d.Length > 0
		s.localBB = NewBB(0, math.Min(0, d.Length), 0, math.Max(0, d.Length))
	case CapsuleData:
		half := math.Max(0, d.Height*0.5-d.Radius)
		s.radius = d.Radius
		s.a, s.b = vec.Vec2{Y: -half}, vec.Vec2{Y: half}
		s.configured = d.Radius > 0 && d.Height > 0
		s.localBB = NewBB(-d.Radius, -half-d.Radius, d.Radius, half+d.Radius)
		if s.configured {
			s.parts = capsuleParts(d.Radius, half)
		}
	case ConcavePolygonData:
		s.setSegments(d.Segments)
	}

	for _, owner := range s.sortedOwners() {
		owner.shapeChanged(s)
	}
	return nil
}

func (s *Shape) setPolygon(points []vec.Vec2) {
	s.verts = points
	s.normals = make([]vec.Vec2, len(points))
	if len(points) == 0 {
		s.localBB = BB{}
		return
	}
	bb := NewBB(points[0].X, points[0].Y, points[0].X, points[0].Y)
	for i, p := range points {
		next := points[(i+1)%len(points)]
		s.normals[i] = next.Sub(p).Unit().ReversePerp()
		bb = bb.Expand(p)
	}
	s.localBB = bb
}

// capsuleParts is two end circles joined by a box.
func capsuleParts(radius, half float64) []shapePart {
	end := newPartShape(CircleData{Radius: radius})
	parts := []shapePart{{shape: end, offset: NewTransformTranslate(vec.Vec2{Y: -half})}}
	if half > 0 {
		parts = append(parts,
			shapePart{shape: end, offset: NewTransformTranslate(vec.Vec2{Y: half})},
			shapePart{shape: newPartShape(RectangleData{HalfExtents: vec.Vec2{X: radius, Y: half}}), offset: NewTransformIdentity()},
		)
	}
	return parts
}

// setSegments keeps every non degenerate segment of a concave polygon as a part.
func (s *Shape) setSegments(points []vec.Vec2) {
	s.localBB = BB{}
	for i := 0; i+1 < len(points); i += 2 {
		a, b := points[i], points[i+1]
		if a.Distance(b) <= magicEpsilon {
			continue
		}
		seg := NewBB(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Max(a.X, b.X), math.Max(a.Y, b.Y))
		if len(s.parts) == 0 {
			s.localBB = seg
		} else {
			s.localBB = s.localBB.Merge(seg)
		}
		s.parts = append(s.parts, shapePart{shape: newPartShape(SegmentData{A: a, B: b}), offset: NewTransformIdentity()})
	}
	s.configured = len(s.parts) > 0
}

func newPartShape(data ShapeData) *Shape {
	s := newShape(data.ShapeType())
	_ = s.setData(data)
	return s
}

// pieces returns the convex parts of the shape, the shape itself when it has none.
func (s *Shape) pieces() []shapePart {
	if s.parts != nil {
		return s.parts
	}
	return []shapePart{{shape: s, offset: NewTransformIdentity()}}
}

func (s *Shape) setCustomSolverBias(bias float64) {
	s.customBias = bias
}

func (s *Shape) addOwner(owner *CollisionObject) {
	s.owners[owner]++
}

func (s *Shape) removeOwner(owner *CollisionObject) {
	s.owners[owner]--
	if s.owners[owner] <= 0 {
		delete(s.owners, owner)
	}
}

func (s *Shape) ownerCount() int {
	return len(s.owners)
}

// sortedOwners returns the owners in handle order so teardown is reproducible.
func (s *Shape) sortedOwners() []*CollisionObject {
	owners := make([]*CollisionObject, 0, len(s.owners))
	for o := range s.owners {
		owners = append(owners, o)
	}
	slices.SortFunc(owners, func(a, b *CollisionObject) int {
		switch {
		case a.handle < b.handle:
			return -1
		case a.handle > b.handle:
			return 1
		}
		return 0
	})
	return owners
}

// aabb returns the world box of the shape placed by xf.
func (s *Shape) aabb(xf Transform) BB {
	switch s.kind {
	case ShapeCircle:
		return NewBBForCircle(xf.Origin(), s.radius)
	case ShapeWorldBoundary:
		return s.localBB.Offset(xf.Origin())
	case ShapeSeparationRay:
		p0 := xf.Origin()
		return NewBB(p0.X, p0.Y, p0.X, p0.Y).Expand(xf.Apply(vec.Vec2{X: 0, Y: s.radius}))
	case ShapeCapsule:
		a, b := xf.Apply(s.a), xf.Apply(s.b)
		return NewBB(a.X, a.Y, a.X, a.Y).Expand(b).Grow(s.radius)
	case ShapeConcavePolygon:
		return xf.BB(s.localBB)
	}
	if len(s.verts) == 0 {
		p0 := xf.Origin()
		return NewBB(p0.X, p0.Y, p0.X, p0.Y)
	}
	p := xf.Apply(s.verts[0])
	bb := NewBB(p.X, p.Y, p.X, p.Y)
	for _, v := range s.verts[1:] {
		bb = bb.Expand(xf.Apply(v))
	}
	return bb
}

// momentOfInertia returns the inertia of the shape about its own origin.
func (s *Shape) momentOfInertia(mass float64) float64 {
	switch s.kind {
	case ShapeCircle:
		return MomentForCircle(mass, 0, s.radius, vec.Vec2{})
	case ShapeRectangle:
		return MomentForBox(mass, s.localBB.R-s.localBB.L, s.localBB.T-s.localBB.B)
	case ShapeConvexPolygon:
		if len(s.verts) < 3 {
			return 0
		}
		return MomentForPoly(mass, s.verts, vec.Vec2{}, 0)
	case ShapeSegment:
		return MomentForSegment(mass, s.a, s.b, 0)
	case ShapeCapsule:
		return MomentForSegment(mass, s.a, s.b, s.radius)
	}
	return 0
}

// worldPolygon returns the vertices and normals placed by xf.
func (s *Shape) worldPolygon(xf Transform) (verts, normals []vec.Vec2) {
	verts = make([]vec.Vec2, len(s.verts))
	normals = make([]vec.Vec2, len(s.normals))
	for i := range s.verts {
		verts[i] = xf.Apply(s.verts[i])
		normals[i] = xf.ApplyVector(s.normals[i]).Unit()
	}
	return verts, normals
}

// segmentHit is the result of a segment cast against one shape.
type segmentHit struct {
	Point  vec.Vec2
	Normal vec.Vec2
	Alpha  float64
}

// segmentQuery casts a circle of the given radius from a to b against the
// shape placed by xf. Casts starting inside the shape report no hit.
func (s *Shape) segmentQuery(xf Transform, a, b vec.Vec2, radius float64) (segmentHit, bool) {
	hit := segmentHit{Point: b, Alpha: 1}
	found := false
	if !s.configured {
		return hit, false
	}

	switch s.kind {
	case ShapeCircle:
		found = circleSegmentQuery(xf.Origin(), s.radius, a, b, radius, &hit)
	case ShapeWorldBoundary:
		n := xf.ApplyVector(s.a).Unit()
		d := s.radius + n.Dot(xf.Origin())
		an := a.Dot(n) - d - radius
		bn := b.Dot(n) - d - radius
		if an >= 0 && bn < 0 {
			t := an / (an - bn)
			hit = segmentHit{Point: a.Lerp(b, t).Sub(n.Scale(radius)), Normal: n, Alpha: t}
			found = true
		}
	case ShapeRectangle, ShapeConvexPolygon, ShapeSegment:
		verts, normals := s.worldPolygon(xf)
		found = polySegmentQuery(verts, normals, a, b, radius, &hit)
	case ShapeCapsule:
		ca, cb := xf.Apply(s.a), xf.Apply(s.b)
		if ca.Distance(cb) <= magicEpsilon {
			found = circleSegmentQuery(ca, s.radius, a, b, radius, &hit)
			break
		}
		n := cb.Sub(ca).Unit().ReversePerp()
		// Cast against the core segment with both radii, then step back out to the surface.
		found = polySegmentQuery([]vec.Vec2{ca, cb}, []vec.Vec2{n, n.Neg()}, a, b, radius+s.radius, &hit)
		if found {
			hit.Point = hit.Point.Add(hit.Normal.Scale(s.radius))
		}
	case ShapeConcavePolygon:
		for _, part := range s.parts {
			h, ok := part.shape.segmentQuery(xf.Mult(part.offset), a, b, radius)
			if ok && (!found || h.Alpha < hit.Alpha) {
				hit, found = h, true
			}
		}
	}
	return hit, found
}

// containsPoint reports whether p lies inside the shape placed by xf.
func (s *Shape) containsPoint(xf Transform, p vec.Vec2) bool {
	if !s.configured {
		return false
	}
	switch s.kind {
	case ShapeCircle:
		return p.Distance(xf.Origin()) <= s.radius
	case ShapeWorldBoundary:
		n := xf.ApplyVector(s.a).Unit()
		return p.Dot(n) <= s.radius+n.Dot(xf.Origin())
	case ShapeRectangle, ShapeConvexPolygon:
		verts, normals := s.worldPolygon(xf)
		for i := range verts {
			if normals[i].Dot(p.Sub(verts[i])) > 0 {
				return false
			}
		}
		return true
	case ShapeCapsule:
		return closestOnSegment(p, xf.Apply(s.a), xf.Apply(s.b)).Distance(p) <= s.radius
	case ShapeConcavePolygon:
		// Even-odd rule along +X in the shape's frame.
		lp := xf.Inverse().Apply(p)
		inside := false
		for _, part := range s.parts {
			a, b := part.shape.a, part.shape.b
			if (a.Y > lp.Y) == (b.Y > lp.Y) {
				continue
			}
			if x := a.X + (lp.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y); x > lp.X {
				inside = !inside
			}
		}
		return inside
	}
	return false
}

// closestOnSegment returns the point of segment ab nearest to p.
func closestOnSegment(p, a, b vec.Vec2) vec.Vec2 {
	ab := b.Sub(a)
	l := ab.LengthSq()
	if l <= 0 {
		return a
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l))
	return a.Add(ab.Scale(t))
}
