package space2d

import (
	"slices"

	"github.com/setanarut/vec"
)

// convexHull returns the counter-clockwise convex hull of points. Points
// closer than tol to a hull edge are dropped.
func convexHull(points []vec.Vec2, tol float64) []vec.Vec2 {
	if len(points) == 0 {
		return nil
	}
	verts := slices.Clone(points)
	start, end := loopIndexes(verts)
	if start == end {
		return verts[:1]
	}

	verts[0], verts[start] = verts[start], verts[0]
	if end == 0 {
		verts[1], verts[start] = verts[start], verts[1]
	} else {
		verts[1], verts[end] = verts[end], verts[1]
	}

	a := verts[0]
	b := verts[1]
	count := qhullReduce(tol, verts[2:], len(verts)-2, a, b, a, verts[1:]) + 1
	hull := verts[:count]
	if AreaForPoly(hull) < 0 {
		slices.Reverse(hull)
	}
	return hull
}

func loopIndexes(verts []vec.Vec2) (int, int) {
	start := 0
	end := 0

	lo := verts[0]
	hi := lo

	for i := 1; i < len(verts); i++ {
		v := verts[i]

		if v.X < lo.X || (v.X == lo.X && v.Y < lo.Y) {
			lo = v
			start = i
		} else if v.X > hi.X || (v.X == hi.X && v.Y > hi.Y) {
			hi = v
			end = i
		}
	}

	return start, end
}

// qhullReduce performs an in place reduction using result as scratch space.
func qhullReduce(tol float64, verts []vec.Vec2, count int, a, pivot, b vec.Vec2, result []vec.Vec2) int {
	if count == 0 {
		result[0] = pivot
		return 1
	}

	leftCount := qhullPartition(verts, count, a, pivot, tol)
	var index int
	if leftCount-1 >= 0 {
		index = qhullReduce(tol, verts[1:], leftCount-1, a, verts[0], pivot, result)
	}

	result[index] = pivot
	index++

	rightCount := qhullPartition(verts[leftCount:], count-leftCount, pivot, b, tol)
	if rightCount-1 < 0 {
		return index
	}
	return index + qhullReduce(tol, verts[leftCount+1:], rightCount-1, pivot, verts[leftCount], b, result[index:])
}

func qhullPartition(verts []vec.Vec2, count int, a, b vec.Vec2, tol float64) int {
	if count == 0 {
		return 0
	}

	best := 0.0
	pivot := 0

	delta := b.Sub(a)
	valueTol := tol * delta.Mag()

	head := 0
	for tail := count - 1; head <= tail; {
		value := verts[head].Sub(a).Cross(delta)
		if value > valueTol {
			if value > best {
				best = value
				pivot = head
			}

			head++
		} else {
			verts[head], verts[tail] = verts[tail], verts[head]
			tail--
		}
	}

	// move the new pivot to the front if it's not already there.
	if pivot != 0 {
		verts[0], verts[pivot] = verts[pivot], verts[0]
	}
	return head
}

// polySegmentQuery casts a circle of radius r2 from a to b against a convex
// polygon. Two vertex polygons are treated as two sided segments.
func polySegmentQuery(verts, normals []vec.Vec2, a, b vec.Vec2, r2 float64, hit *segmentHit) bool {
	count := len(verts)
	found := false

	for i := 0; i < count; i++ {
		n := normals[i]
		an := a.Dot(n)
		d := an - verts[i].Dot(n) - r2
		if d < 0 {
			continue
		}

		bn := b.Dot(n)
		if an-bn <= 0 {
			continue
		}
		t := d / (an - bn)
		if t > hit.Alpha {
			continue
		}

		point := a.Lerp(b, t)
		dt := n.Cross(point)
		dtMin := n.Cross(verts[i])
		dtMax := n.Cross(verts[(i+1)%count])

		if dtMin <= dt && dt <= dtMax {
			hit.Point = point.Sub(n.Scale(r2))
			hit.Normal = n
			hit.Alpha = t
			found = true
		}
	}

	// Also check against the beveled vertexes
	if r2 > 0 {
		for i := 0; i < count; i++ {
			if circleSegmentQuery(verts[i], 0, a, b, r2, hit) {
				found = true
			}
		}
	}
	return found
}

// findMaxSeparation returns the edge of polygon 1 along which polygon 2 is
// farthest out, and that distance.
func findMaxSeparation(v1, n1, v2 []vec.Vec2) (int, float64) {
	best := 0
	maxSeparation := -infinity
	for i := range v1 {
		n := n1[i]
		si := infinity
		for _, p := range v2 {
			if sij := n.Dot(p.Sub(v1[i])); sij < si {
				si = sij
			}
		}
		if si > maxSeparation {
			maxSeparation = si
			best = i
		}
	}
	return best, maxSeparation
}

type clipVertex struct {
	v  vec.Vec2
	id uint32
}

func clipSegmentToLine(in [2]clipVertex, normal vec.Vec2, offset float64, id uint32) ([2]clipVertex, int) {
	var out [2]clipVertex
	count := 0

	d0 := normal.Dot(in[0].v) - offset
	d1 := normal.Dot(in[1].v) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}
	if d0*d1 < 0 && count < 2 {
		interp := d0 / (d0 - d1)
		out[count] = clipVertex{v: in[0].v.Lerp(in[1].v, interp), id: id}
		count++
	}
	return out, count
}

// polyContact collides two convex polygons with reference face clipping.
// The normal points from a to b.
func polyContact(va, na, vb, nb []vec.Vec2) (Manifold, bool) {
	if len(va) < 2 || len(vb) < 2 {
		return Manifold{}, false
	}
	edgeA, sepA := findMaxSeparation(va, na, vb)
	if sepA > 0 {
		return Manifold{}, false
	}
	edgeB, sepB := findMaxSeparation(vb, nb, va)
	if sepB > 0 {
		return Manifold{}, false
	}

	refV, refN, incV, incN := va, na, vb, nb
	edge := edgeA
	flip := false
	if sepB > sepA+magicEpsilon*100 {
		refV, refN, incV, incN = vb, nb, va, na
		edge = edgeB
		flip = true
	}
	var flipBit uint32
	if flip {
		flipBit = 1
	}

	n := refN[edge]
	inc := 0
	minDot := infinity
	for i := range incN {
		if d := n.Dot(incN[i]); d < minDot {
			minDot = d
			inc = i
		}
	}
	inc2 := (inc + 1) % len(incV)
	edge2 := (edge + 1) % len(refV)

	base := uint32(edge)<<16 | flipBit
	clip := [2]clipVertex{
		{v: incV[inc], id: base | uint32(inc)<<8},
		{v: incV[inc2], id: base | uint32(inc2)<<8},
	}

	v11 := refV[edge]
	v12 := refV[edge2]
	tangent := v12.Sub(v11).Unit()
	frontOffset := n.Dot(v11)

	clip1, np := clipSegmentToLine(clip, tangent.Neg(), -tangent.Dot(v11), base|0x80|uint32(edge)<<8)
	if np < 2 {
		return Manifold{}, false
	}
	clip2, np := clipSegmentToLine(clip1, tangent, tangent.Dot(v12), base|0x80|uint32(edge2)<<8)
	if np < 2 {
		return Manifold{}, false
	}

	m := Manifold{Normal: n}
	if flip {
		m.Normal = n.Neg()
	}
	for _, cv := range clip2 {
		separation := n.Dot(cv.v) - frontOffset
		if separation > 0 {
			continue
		}
		pInc := cv.v
		pRef := pInc.Sub(n.Scale(separation))
		cp := ContactPoint{A: pRef, B: pInc, Depth: -separation, ID: cv.id}
		if flip {
			cp.A, cp.B = pInc, pRef
		}
		m.Points[m.Count] = cp
		m.Count++
	}
	return m, m.Count > 0
}

// polyCircleContact collides a convex polygon (a) with a circle (b).
func polyCircleContact(verts, normals []vec.Vec2, c vec.Vec2, r float64) (Manifold, bool) {
	count := len(verts)
	if count < 2 {
		return Manifold{}, false
	}
	normalIndex := 0
	separation := -infinity
	for i := range verts {
		s := normals[i].Dot(c.Sub(verts[i]))
		if s > r {
			return Manifold{}, false
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := verts[normalIndex]
	v2 := verts[(normalIndex+1)%count]
	single := func(n, pa vec.Vec2, depth float64, id uint32) (Manifold, bool) {
		m := Manifold{Normal: n, Count: 1}
		m.Points[0] = ContactPoint{A: pa, B: c.Sub(n.Scale(r)), Depth: depth, ID: id}
		return m, true
	}

	if separation < magicEpsilon && count > 2 {
		n := normals[normalIndex]
		return single(n, c.Sub(n.Scale(separation)), r-separation, uint32(normalIndex))
	}

	u1 := c.Sub(v1).Dot(v2.Sub(v1))
	u2 := c.Sub(v2).Dot(v1.Sub(v2))
	switch {
	case u1 <= 0:
		dist := c.Distance(v1)
		if dist > r || dist < magicEpsilon {
			return Manifold{}, false
		}
		return single(c.Sub(v1).Scale(1/dist), v1, r-dist, 0x100|uint32(normalIndex))
	case u2 <= 0:
		dist := c.Distance(v2)
		if dist > r || dist < magicEpsilon {
			return Manifold{}, false
		}
		return single(c.Sub(v2).Scale(1/dist), v2, r-dist, 0x100|uint32((normalIndex+1)%count))
	}
	n := normals[normalIndex]
	s := c.Sub(v1).Dot(n)
	if s > r {
		return Manifold{}, false
	}
	return single(n, c.Sub(n.Scale(s)), r-s, uint32(normalIndex))
}
