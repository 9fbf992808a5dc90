package space2d

import "github.com/setanarut/vec"

// MomentForBox calculates the moment of inertia for a solid box.
func MomentForBox(mass, width, height float64) float64 {
	return mass * (width*width + height*height) / 12.0
}

// MomentForCircle calculates the moment of inertia for a circle.
//
// r1 and r2 are the inner and outer radii. A solid circle has an inner
// radius of 0. offset is the displacement of the circle's center from the
// axis of rotation.
func MomentForCircle(mass, r1, r2 float64, offset vec.Vec2) float64 {
	return mass * (0.5*(r1*r1+r2*r2) + offset.LengthSq())
}

// MomentForSegment calculates the moment of inertia for a line segment.
func MomentForSegment(mass float64, a, b vec.Vec2, radius float64) float64 {
	offset := a.Lerp(b, 0.5)
	length := b.Distance(a) + 2.0*radius
	return mass * ((length*length+4.0*radius*radius)/12.0 + offset.LengthSq())
}

// MomentForPoly calculates the moment of inertia for a solid polygon about
// the origin. The offset is added to each vertex.
func MomentForPoly(mass float64, verts []vec.Vec2, offset vec.Vec2, r float64) float64 {
	count := len(verts)
	if count == 2 {
		return MomentForSegment(mass, verts[0], verts[1], r)
	}

	var sum1 float64
	var sum2 float64
	for i := 0; i < count; i++ {
		v1 := verts[i].Add(offset)
		v2 := verts[(i+1)%count].Add(offset)

		a := v2.Cross(v1)
		b := v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2)

		sum1 += a * b
		sum2 += a
	}
	if sum2 == 0 {
		return 0
	}
	return (mass * sum1) / (6.0 * sum2)
}

// AreaForPoly calculates the signed area of a polygon. Counter-clockwise
// winding gives a positive area.
func AreaForPoly(verts []vec.Vec2) float64 {
	var area float64
	count := len(verts)
	for i := 0; i < count; i++ {
		area += verts[i].Cross(verts[(i+1)%count])
	}
	return area / 2.0
}
