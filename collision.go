package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

// maxManifoldPoints is the contact capacity of one shape pair.
const maxManifoldPoints = 2

// ContactPoint is one point of a contact manifold in world space.
type ContactPoint struct {
	// A and B are the deepest points of each shape inside the other.
	A, B vec.Vec2
	// Depth is the penetration along the manifold normal, (A-B)·Normal.
	Depth float64
	// ID identifies the features that produced the point.
	ID uint32
}

// Manifold is the result of a narrow-phase test.
type Manifold struct {
	// Normal points from the first shape to the second.
	Normal vec.Vec2
	Count  int
	Points [maxManifoldPoints]ContactPoint
}

func (m Manifold) flipped() Manifold {
	m.Normal = m.Normal.Neg()
	for i := 0; i < m.Count; i++ {
		m.Points[i].A, m.Points[i].B = m.Points[i].B, m.Points[i].A
	}
	return m
}

// Collider is the narrow-phase collaborator. It reports whether two shapes
// placed by their transforms intersect and with what manifold. It must be
// safe for concurrent use and must report no collision for degenerate input.
type Collider func(a *Shape, xa Transform, b *Shape, xb Transform) (Manifold, bool)

func collideRank(k ShapeType) int {
	switch k {
	case ShapeWorldBoundary:
		return 0
	case ShapeSeparationRay:
		return 1
	case ShapeSegment:
		return 2
	case ShapeCircle:
		return 3
	}
	return 4
}

// DefaultCollider handles every shape type. Capsules and concave polygons
// collide piece by piece. A separation ray reports its tip against the first
// surface it crosses, two rays never touch and neither do two concave polygons.
func DefaultCollider(a *Shape, xa Transform, b *Shape, xb Transform) (Manifold, bool) {
	if a == nil || b == nil || !a.configured || !b.configured {
		return Manifold{}, false
	}
	if a.parts != nil || b.parts != nil {
		if a.kind == ShapeConcavePolygon && b.kind == ShapeConcavePolygon {
			return Manifold{}, false
		}
		return collideParts(a, xa, b, xb)
	}
	if collideRank(a.kind) > collideRank(b.kind) {
		m, ok := DefaultCollider(b, xb, a, xa)
		return m.flipped(), ok
	}

	switch a.kind {
	case ShapeSeparationRay:
		return separationRayContact(a, xa, b, xb)
	case ShapeWorldBoundary:
		n := xa.ApplyVector(a.a).Unit()
		d := a.radius + n.Dot(xa.Origin())
		switch b.kind {
		case ShapeWorldBoundary:
			return Manifold{}, false
		case ShapeSeparationRay:
			m, ok := separationRayContact(b, xb, a, xa)
			return m.flipped(), ok
		case ShapeCircle:
			c := xb.Origin()
			s := n.Dot(c) - d
			if s > b.radius {
				return Manifold{}, false
			}
			m := Manifold{Normal: n, Count: 1}
			m.Points[0] = ContactPoint{A: c.Sub(n.Scale(s)), B: c.Sub(n.Scale(b.radius)), Depth: b.radius - s}
			return m, true
		}
		verts, _ := b.worldPolygon(xb)
		return boundaryPolyContact(n, d, verts)
	case ShapeSegment, ShapeCircle:
		if a.kind == ShapeCircle && b.kind == ShapeCircle {
			return circleContact(xa.Origin(), a.radius, xb.Origin(), b.radius)
		}
		if a.kind == ShapeSegment && b.kind == ShapeCircle {
			verts, normals := a.worldPolygon(xa)
			return polyCircleContact(verts, normals, xb.Origin(), b.radius)
		}
		if a.kind == ShapeCircle {
			verts, normals := b.worldPolygon(xb)
			m, ok := polyCircleContact(verts, normals, xa.Origin(), a.radius)
			return m.flipped(), ok
		}
	}

	va, na := a.worldPolygon(xa)
	vb, nb := b.worldPolygon(xb)
	return polyContact(va, na, vb, nb)
}

// boundaryPolyContact keeps the two deepest vertices under the plane n·p = d.
func boundaryPolyContact(n vec.Vec2, d float64, verts []vec.Vec2) (Manifold, bool) {
	m := Manifold{Normal: n}
	for i, p := range verts {
		s := n.Dot(p) - d
		if s > 0 {
			continue
		}
		cp := ContactPoint{A: p.Sub(n.Scale(s)), B: p, Depth: -s, ID: uint32(i)}
		switch {
		case m.Count < maxManifoldPoints:
			m.Points[m.Count] = cp
			m.Count++
		case cp.Depth > m.Points[0].Depth && m.Points[0].Depth <= m.Points[1].Depth:
			m.Points[0] = cp
		case cp.Depth > m.Points[1].Depth:
			m.Points[1] = cp
		}
	}
	return m, m.Count > 0
}

// collideParts keeps the manifold of the deepest pair of convex pieces.
func collideParts(a *Shape, xa Transform, b *Shape, xb Transform) (Manifold, bool) {
	var best Manifold
	found := false
	for _, pa := range a.pieces() {
		for _, pb := range b.pieces() {
			m, ok := DefaultCollider(pa.shape, xa.Mult(pa.offset), pb.shape, xb.Mult(pb.offset))
			if ok && (!found || m.depth() > best.depth()) {
				best, found = m, true
			}
		}
	}
	return best, found
}

// separationRayContact pushes the ray tip back to the first surface the ray
// crosses. The normal follows the ray, or the surface when the ray slides on
// slopes. A ray starting inside the other shape reports nothing.
func separationRayContact(ray *Shape, xr Transform, other *Shape, xo Transform) (Manifold, bool) {
	if other.kind == ShapeSeparationRay {
		return Manifold{}, false
	}
	from := xr.Origin()
	dir := xr.YAxis().Unit()
	tip := from.Add(dir.Scale(ray.radius))
	hit, ok := other.segmentQuery(xo, from, tip, 0)
	if !ok {
		return Manifold{}, false
	}
	n := dir
	if ray.slide {
		n = hit.Normal.Neg()
	}
	depth := tip.Sub(hit.Point).Dot(n)
	if depth <= 0 {
		return Manifold{}, false
	}
	m := Manifold{Normal: n, Count: 1}
	m.Points[0] = ContactPoint{A: tip, B: hit.Point, Depth: depth}
	return m, true
}

// depth is the deepest penetration of the manifold.
func (m Manifold) depth() float64 {
	d := math.Inf(-1)
	for i := 0; i < m.Count; i++ {
		d = math.Max(d, m.Points[i].Depth)
	}
	return d
}
