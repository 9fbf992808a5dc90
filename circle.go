package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

// circleSegmentQuery casts a circle of radius r2 from a to b against a circle
// of radius r1 at center. hit is only written when the cast is not farther
// than the hit it already holds.
func circleSegmentQuery(center vec.Vec2, r1 float64, a, b vec.Vec2, r2 float64, hit *segmentHit) bool {
	da := a.Sub(center)
	db := b.Sub(center)
	rsum := r1 + r2

	qa := da.Dot(da) - 2*da.Dot(db) + db.Dot(db)
	qb := da.Dot(db) - da.Dot(da)
	det := qb*qb - qa*(da.Dot(da)-rsum*rsum)

	if det < 0 || qa == 0 {
		return false
	}
	t := (-qb - math.Sqrt(det)) / qa
	if t < 0 || t > hit.Alpha {
		return false
	}
	n := da.Lerp(db, t).Unit()
	hit.Point = a.Lerp(b, t).Sub(n.Scale(r2))
	hit.Normal = n
	hit.Alpha = t
	return true
}

// circleContact fills the contact between two circles. The normal points from a to b.
func circleContact(ca vec.Vec2, ra float64, cb vec.Vec2, rb float64) (Manifold, bool) {
	delta := cb.Sub(ca)
	mindist := ra + rb
	distsq := delta.LengthSq()
	if distsq > mindist*mindist {
		return Manifold{}, false
	}
	dist := math.Sqrt(distsq)
	n := vec.Vec2{X: 0, Y: 1}
	if dist > magicEpsilon {
		n = delta.Scale(1 / dist)
	}
	m := Manifold{Normal: n, Count: 1}
	m.Points[0] = ContactPoint{
		A:     ca.Add(n.Scale(ra)),
		B:     cb.Sub(n.Scale(rb)),
		Depth: mindist - dist,
	}
	return m, true
}
