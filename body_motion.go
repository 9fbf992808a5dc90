package space2d

import (
	"math"
	"slices"

	"github.com/setanarut/vec"
)

const (
	// motionRecoverAttempts bounds the passes that push a body out of
	// overlaps before its motion is cast.
	motionRecoverAttempts = 4
	// motionRecoverRatio is the share of an overlap undone per pass.
	motionRecoverRatio = 0.4
	// motionMinDepthFactor scales the margin into the overlap left alone.
	motionMinDepthFactor = 0.05
)

// MotionParameters describes a body motion to test.
type MotionParameters struct {
	From   Transform
	Motion vec.Vec2
	// Margin grows the body shapes while recovering and reporting contacts.
	Margin float64
	// CollideSeparationRay lets separation ray shapes of the body take part.
	CollideSeparationRay bool
	ExcludeBodies        []Handle
	ExcludeObjects       []uint64
	// RecoveryAsCollision reports an overlap pushed out of before the cast
	// even when the motion itself is free.
	RecoveryAsCollision bool
}

// MotionResult is the outcome of a motion test.
type MotionResult struct {
	// Travel is the recovery plus the safe part of the motion.
	Travel    vec.Vec2
	Remainder vec.Vec2

	CollisionPoint  vec.Vec2
	CollisionNormal vec.Vec2 // out of the collider, towards the body
	CollisionDepth  float64

	CollisionSafeFraction   float64
	CollisionUnsafeFraction float64
	CollisionLocalShape     int

	Collider         Handle
	ColliderID       uint64
	ColliderShape    int
	ColliderVelocity vec.Vec2
}

// motionPairFunc sees one own shape placed at sxf and one object shape that
// may touch it. Returning false stops the walk.
type motionPairFunc func(own int, shape *Shape, sxf Transform, other *CollisionObject, sub int) bool

// forMotionPairs walks the shapes of the body placed at xf, grown by margin,
// against every body shape met along motion.
func (b *Body) forMotionPairs(p *MotionParameters, xf Transform, motion vec.Vec2, margin float64, fn motionPairFunc) {
	for i := range b.shapes {
		os := &b.shapes[i]
		if os.disabled || !os.shape.configured {
			continue
		}
		if os.shape.kind == ShapeSeparationRay && !p.CollideSeparationRay {
			continue
		}
		shape := os.shape.inflated(margin)
		sxf := xf.Mult(os.xform)
		bb := shape.aabb(sxf).Merge(shape.aabb(sxf.translated(motion)))
		for _, hit := range b.space.broadPhase.CullAABB(bb, nil) {
			if !b.motionCanHit(p, hit.Object, hit.Subindex) {
				continue
			}
			if !fn(i, shape, sxf, hit.Object, hit.Subindex) {
				return
			}
		}
	}
}

func (b *Body) motionCanHit(p *MotionParameters, other *CollisionObject, sub int) bool {
	if other == &b.CollisionObject || other.body == nil || other.shapes[sub].disabled {
		return false
	}
	if b.mask&other.layer == 0 || b.hasException(other.handle) || other.body.hasException(b.handle) {
		return false
	}
	return !slices.Contains(p.ExcludeBodies, other.handle) && !slices.Contains(p.ExcludeObjects, other.instanceID)
}

// motionBlocked reports whether a manifold from the moving body against a
// one-way shape holds. Other shapes always block.
func motionBlocked(other *CollisionObject, sub int, m *Manifold, margin float64) bool {
	os := &other.shapes[sub]
	if !os.oneWay {
		return true
	}
	dir := other.shapeWorldTransform(sub).YAxis().Unit()
	if m.Normal.Dot(dir) <= magicEpsilon {
		return false
	}
	return os.oneWayMargin <= 0 || m.depth() <= os.oneWayMargin+margin
}

// testMotion pushes the body out of what it overlaps at p.From, casts it
// along p.Motion and reports the deepest contact where it stops. The body
// itself is left where it is.
func (b *Body) testMotion(p *MotionParameters) (MotionResult, bool) {
	sp := b.space
	r := MotionResult{CollisionSafeFraction: 1, CollisionUnsafeFraction: 1, CollisionLocalShape: -1, ColliderShape: -1}
	minDepth := p.Margin * motionMinDepthFactor
	xf := p.From

	var recovered vec.Vec2
	for range motionRecoverAttempts {
		var push vec.Vec2
		b.forMotionPairs(p, xf, vec.Vec2{}, p.Margin, func(_ int, shape *Shape, sxf Transform, other *CollisionObject, sub int) bool {
			m, ok := sp.collider(shape, sxf, other.shapes[sub].shape, other.shapeWorldTransform(sub))
			if !ok || !motionBlocked(other, sub, &m, p.Margin) {
				return true
			}
			d := m.depth() - minDepth
			if d <= 0 {
				return true
			}
			// Higher priority colliders push harder.
			step := math.Min(d, d*motionRecoverRatio*other.body.collisionPriority)
			push = push.Sub(m.Normal.Scale(step))
			return true
		})
		if push == (vec.Vec2{}) {
			break
		}
		recovered = recovered.Add(push)
		xf = xf.translated(push)
	}

	safe, unsafe := 1.0, 1.0
	bestShape := -1
	if p.Motion != (vec.Vec2{}) {
		b.forMotionPairs(p, xf, p.Motion, 0, func(own int, shape *Shape, sxf Transform, other *CollisionObject, sub int) bool {
			oshape := other.shapes[sub].shape
			oxf := other.shapeWorldTransform(sub)
			lo, hi, touched := castShape(sp.collider, shape, sxf, p.Motion, oshape, oxf)
			if !touched || hi >= unsafe {
				return true
			}
			if other.shapes[sub].oneWay {
				m, ok := sp.collider(shape, sxf.translated(p.Motion.Scale(hi)), oshape, oxf)
				if !ok || !motionBlocked(other, sub, &m, 0) {
					return true
				}
			}
			safe, unsafe, bestShape = lo, hi, own
			return unsafe > 0
		})
	}

	collided := false
	if unsafe < 1 || (p.RecoveryAsCollision && recovered != (vec.Vec2{})) {
		at := xf.translated(p.Motion.Scale(unsafe))
		best := 0.0
		b.forMotionPairs(p, at, vec.Vec2{}, p.Margin, func(own int, shape *Shape, sxf Transform, other *CollisionObject, sub int) bool {
			if bestShape >= 0 && own != bestShape {
				return true
			}
			m, ok := sp.collider(shape, sxf, other.shapes[sub].shape, other.shapeWorldTransform(sub))
			if !ok || !motionBlocked(other, sub, &m, p.Margin) {
				return true
			}
			for i := 0; i < m.Count; i++ {
				cp := m.Points[i]
				if cp.Depth < minDepth || cp.Depth <= best {
					continue
				}
				best, collided = cp.Depth, true
				r.CollisionPoint = cp.B
				r.CollisionNormal = m.Normal.Neg()
				r.CollisionDepth = cp.Depth
				r.CollisionLocalShape = own
				r.Collider, r.ColliderID, r.ColliderShape = other.handle, other.instanceID, sub
				r.ColliderVelocity = other.body.velocityAtLocalPoint(cp.B.Sub(other.transform.Origin()))
			}
			return true
		})
	}

	if !collided {
		r.Travel = recovered.Add(p.Motion)
		return r, false
	}
	r.Travel = recovered.Add(p.Motion.Scale(safe))
	r.Remainder = p.Motion.Sub(p.Motion.Scale(safe))
	r.CollisionSafeFraction, r.CollisionUnsafeFraction = safe, unsafe
	return r, true
}
