package space2d

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// maxSweepSamples bounds the positions tested along a shape motion.
const maxSweepSamples = 64

// castIterations is the bisection depth of a motion cast.
const castIterations = 8

// ShapeQueryParameters places a shape for the shape queries of a space.
type ShapeQueryParameters struct {
	Shape     Handle
	Transform Transform
	// Motion sweeps the shape from Transform to Transform moved by Motion.
	Motion vec.Vec2
	// Margin grows the shape on every side.
	Margin float64
	Filter QueryFilter
}

// RestInfo is the deepest contact of a shape query.
type RestInfo struct {
	// Point lies on the surface of the object touched.
	Point vec.Vec2
	// Normal points out of the object touched, towards the query shape.
	Normal         vec.Vec2
	Object         Handle
	InstanceID     uint64
	Shape          int
	LinearVelocity vec.Vec2
}

func (t Transform) translated(v vec.Vec2) Transform {
	return NewTransformTranslate(v).Mult(t)
}

// sweepSize is the step a sweep may take without skipping over the shape.
func (s *Shape) sweepSize() float64 {
	ext := s.localBB.Extents()
	size := math.Min(ext.X, ext.Y)
	if size <= magicEpsilon {
		size = math.Max(ext.X, ext.Y)
	}
	return math.Max(size, 1e-3)
}

// sweepCollide tests a against b at evenly spaced positions along their
// motions, no further apart than half the smaller shape, and returns the
// first touch.
func sweepCollide(collide Collider, a *Shape, xa Transform, ma vec.Vec2, b *Shape, xb Transform, mb vec.Vec2) (Manifold, bool) {
	steps := 0
	if rel := ma.Sub(mb).Mag(); rel > 0 {
		step := math.Min(a.sweepSize(), b.sweepSize())
		steps = min(int(math.Ceil(rel/step)), maxSweepSamples)
	}
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		if m, ok := collide(a, xa.translated(ma.Scale(t)), b, xb.translated(mb.Scale(t))); ok {
			return m, true
		}
	}
	return Manifold{}, false
}

// inflated returns the shape grown by margin on every side, s itself when
// margin is not positive or the shape has no grown form.
func (s *Shape) inflated(margin float64) *Shape {
	if margin <= 0 || !s.configured {
		return s
	}
	var data ShapeData
	switch d := s.data.(type) {
	case CircleData:
		data = CircleData{Radius: d.Radius + margin}
	case RectangleData:
		data = RectangleData{HalfExtents: d.HalfExtents.Add(vec.Vec2{X: margin, Y: margin})}
	case CapsuleData:
		data = CapsuleData{Height: d.Height + 2*margin, Radius: d.Radius + margin}
	case SeparationRayData:
		d.Length += margin
		data = d
	case WorldBoundaryData:
		d.Distance += margin
		data = d
	case SegmentData:
		t := d.B.Sub(d.A).Unit().Scale(margin)
		n := t.ReversePerp()
		data = ConvexPolygonData{Points: []vec.Vec2{d.A.Sub(t).Sub(n), d.B.Add(t).Sub(n), d.B.Add(t).Add(n), d.A.Sub(t).Add(n)}}
	case ConvexPolygonData:
		pts := make([]vec.Vec2, len(s.verts))
		for i, v := range s.verts {
			prev := s.normals[(i+len(s.verts)-1)%len(s.verts)]
			pts[i] = v.Add(prev.Add(s.normals[i]).Unit().Scale(margin))
		}
		data = ConvexPolygonData{Points: pts}
	default:
		return s
	}
	return newPartShape(data)
}

// queryShape resolves the shape of a query, grown by its margin.
func (s *DirectSpaceState) queryShape(op string, p *ShapeQueryParameters) (*Shape, error) {
	if s.srv == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidHandle)
	}
	sh, err := lookup(s.srv, s.srv.shapes, op, p.Shape)
	if err != nil {
		return nil, err
	}
	return sh.inflated(p.Margin), nil
}

// candidates culls the accepted object shapes whose boxes meet shape swept
// along motion.
func (s *DirectSpaceState) candidates(shape *Shape, xf Transform, motion vec.Vec2, filter *QueryFilter) []BroadPhaseHit {
	bb := shape.aabb(xf).Merge(shape.aabb(xf.translated(motion)))
	hits := s.space.broadPhase.CullAABB(bb, nil)
	kept := hits[:0]
	for _, hit := range hits {
		if filter.accepts(hit.Object, hit.Subindex) {
			kept = append(kept, hit)
		}
	}
	return kept
}

// IntersectShape returns the object shapes the query shape touches anywhere
// along its motion, at most maxResults of them when maxResults is positive.
func (s *DirectSpaceState) IntersectShape(p ShapeQueryParameters, maxResults int) ([]ShapeResult, error) {
	shape, err := s.queryShape("intersect_shape", &p)
	if err != nil {
		return nil, err
	}
	var results []ShapeResult
	for _, hit := range s.candidates(shape, p.Transform, p.Motion, &p.Filter) {
		co := hit.Object
		other := co.shapes[hit.Subindex].shape
		if _, ok := sweepCollide(s.space.collider, shape, p.Transform, p.Motion, other, co.shapeWorldTransform(hit.Subindex), vec.Vec2{}); !ok {
			continue
		}
		results = append(results, ShapeResult{Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results, nil
}

// CastMotion returns how far along its motion the query shape may travel.
// safe is the largest fraction found free of contact and unsafe the
// smallest fraction found touching. Both are 1 when nothing is in the way
// and 0 when the shape starts out touching.
func (s *DirectSpaceState) CastMotion(p ShapeQueryParameters) (safe, unsafe float64, err error) {
	shape, err := s.queryShape("cast_motion", &p)
	if err != nil {
		return 0, 0, err
	}
	safe, unsafe = 1, 1
	for _, hit := range s.candidates(shape, p.Transform, p.Motion, &p.Filter) {
		co := hit.Object
		other := co.shapes[hit.Subindex].shape
		oxf := co.shapeWorldTransform(hit.Subindex)
		lo, hi, touched := castShape(s.space.collider, shape, p.Transform, p.Motion, other, oxf)
		if !touched {
			continue
		}
		if hi < unsafe {
			safe, unsafe = lo, hi
		}
		if unsafe == 0 {
			break
		}
	}
	return safe, unsafe, nil
}

// castShape bisects the first touch of a moving shape against a still one.
func castShape(collide Collider, shape *Shape, xf Transform, motion vec.Vec2, other *Shape, oxf Transform) (lo, hi float64, touched bool) {
	if _, ok := sweepCollide(collide, shape, xf, motion, other, oxf, vec.Vec2{}); !ok {
		return 1, 1, false
	}
	if _, ok := collide(shape, xf, other, oxf); ok {
		return 0, 0, true
	}
	lo, hi = 0, 1
	// Narrow down to the first sample that touches before bisecting.
	steps := min(int(math.Ceil(motion.Mag()/shape.sweepSize()*2)), maxSweepSamples)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if _, ok := collide(shape, xf.translated(motion.Scale(t)), other, oxf); ok {
			hi = t
			break
		}
		lo = t
	}
	for range castIterations {
		mid := (lo + hi) * 0.5
		if _, ok := collide(shape, xf.translated(motion.Scale(mid)), other, oxf); ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo, hi, true
}

// CollideShape returns contact point pairs of the query shape, A on the
// query shape and B on the object, at the first position along the motion
// where each object is touched. At most maxPairs pairs are returned when
// maxPairs is positive.
func (s *DirectSpaceState) CollideShape(p ShapeQueryParameters, maxPairs int) ([]vec.Vec2, error) {
	shape, err := s.queryShape("collide_shape", &p)
	if err != nil {
		return nil, err
	}
	var points []vec.Vec2
	for _, hit := range s.candidates(shape, p.Transform, p.Motion, &p.Filter) {
		co := hit.Object
		m, ok := sweepCollide(s.space.collider, shape, p.Transform, p.Motion, co.shapes[hit.Subindex].shape, co.shapeWorldTransform(hit.Subindex), vec.Vec2{})
		if !ok {
			continue
		}
		for i := 0; i < m.Count; i++ {
			points = append(points, m.Points[i].A, m.Points[i].B)
			if maxPairs > 0 && len(points) == 2*maxPairs {
				return points, nil
			}
		}
	}
	return points, nil
}

// RestInfo returns the deepest contact of the query shape placed at the end
// of its motion. ok is false when it touches nothing.
func (s *DirectSpaceState) RestInfo(p ShapeQueryParameters) (info RestInfo, ok bool, err error) {
	shape, err := s.queryShape("rest_info", &p)
	if err != nil {
		return RestInfo{}, false, err
	}
	xf := p.Transform.translated(p.Motion)
	best := 0.0
	for _, hit := range s.candidates(shape, xf, vec.Vec2{}, &p.Filter) {
		co := hit.Object
		m, touched := s.space.collider(shape, xf, co.shapes[hit.Subindex].shape, co.shapeWorldTransform(hit.Subindex))
		if !touched {
			continue
		}
		for i := 0; i < m.Count; i++ {
			cp := m.Points[i]
			if ok && cp.Depth <= best {
				continue
			}
			best, ok = cp.Depth, true
			info = RestInfo{Point: cp.B, Normal: m.Normal.Neg(), Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex}
			if co.body != nil {
				info.LinearVelocity = co.body.velocityAtLocalPoint(cp.B.Sub(co.transform.Origin()))
			}
		}
	}
	return info, ok, nil
}
