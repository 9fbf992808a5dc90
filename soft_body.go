package space2d

import (
	"log"
	"math"

	"github.com/setanarut/vec"
)

type softPoint struct {
	position vec.Vec2
	previous vec.Vec2
	velocity vec.Vec2
	invMass  float64
	pinned   bool
}

type softLink struct {
	a, b int
	rest float64
}

// SoftBody is a set of point masses held together by distance links. Each
// point collides with rigid bodies as a small circle.
type SoftBody struct {
	CollisionObject

	points []softPoint
	links  []softLink

	totalMass           float64
	linearStiffness     float64
	dampingCoefficient  float64
	simulationPrecision int
	margin              float64

	pointShape *Shape
	bpID       broadPhaseID
	bounds     BB

	logger *log.Logger
}

func newSoftBody(logger *log.Logger) *SoftBody {
	sb := &SoftBody{
		totalMass:           1,
		linearStiffness:     0.5,
		dampingCoefficient:  0.01,
		simulationPrecision: 5,
		margin:              1,
		pointShape:          newShape(ShapeCircle),
		logger:              logger,
	}
	sb.init(ObjectSoftBody)
	sb.soft = sb
	sb.pointShape.setData(CircleData{Radius: sb.margin})
	return sb
}

// PointCount returns the number of points.
func (sb *SoftBody) PointCount() int { return len(sb.points) }

// PointPosition returns the world position of point i.
func (sb *SoftBody) PointPosition(i int) vec.Vec2 {
	if i < 0 || i >= len(sb.points) {
		return vec.Vec2{}
	}
	return sb.points[i].position
}

func (sb *SoftBody) setPoints(positions []vec.Vec2) {
	sb.points = make([]softPoint, len(positions))
	for i, p := range positions {
		sb.points[i] = softPoint{position: p, previous: p}
	}
	sb.links = nil
	sb.updateMasses()
	sb.updateBounds()
}

// addLink joins points a and b at their current distance.
func (sb *SoftBody) addLink(a, b int) bool {
	if a == b || a < 0 || b < 0 || a >= len(sb.points) || b >= len(sb.points) {
		return false
	}
	rest := sb.points[a].position.Distance(sb.points[b].position)
	sb.links = append(sb.links, softLink{a: a, b: b, rest: rest})
	return true
}

func (sb *SoftBody) setTotalMass(mass float64) {
	if mass <= 0 {
		mass = 1
	}
	sb.totalMass = mass
	sb.updateMasses()
}

func (sb *SoftBody) updateMasses() {
	free := 0
	for i := range sb.points {
		if !sb.points[i].pinned {
			free++
		}
	}
	for i := range sb.points {
		p := &sb.points[i]
		p.invMass = 0
		if !p.pinned && free > 0 {
			p.invMass = float64(free) / sb.totalMass
		}
	}
}

func (sb *SoftBody) pinPoint(i int, pinned bool) bool {
	if i < 0 || i >= len(sb.points) {
		return false
	}
	sb.points[i].pinned = pinned
	sb.points[i].velocity = vec.Vec2{}
	sb.updateMasses()
	return true
}

func (sb *SoftBody) movePoint(i int, p vec.Vec2) bool {
	if i < 0 || i >= len(sb.points) {
		return false
	}
	sb.points[i].position = p
	sb.points[i].previous = p
	sb.updateBounds()
	return true
}

func (sb *SoftBody) setCollisionMargin(margin float64) {
	if margin <= 0 {
		return
	}
	sb.margin = margin
	sb.pointShape.setData(CircleData{Radius: margin})
	sb.updateBounds()
}

func (sb *SoftBody) computeBounds() BB {
	if len(sb.points) == 0 {
		return BB{}
	}
	p := sb.points[0].position
	bb := NewBB(p.X, p.Y, p.X, p.Y)
	for i := 1; i < len(sb.points); i++ {
		bb = bb.Expand(sb.points[i].position)
	}
	return bb.Grow(sb.margin)
}

// updateBounds hands the box around every point to the broad phase.
func (sb *SoftBody) updateBounds() {
	sb.bounds = sb.computeBounds()
	if sb.space == nil {
		return
	}
	if len(sb.points) == 0 {
		sb.unregisterBounds()
		return
	}
	bp := sb.space.broadPhase
	if sb.bpID == 0 {
		sb.bpID = bp.Create(&sb.CollisionObject, 0, sb.bounds, false)
	} else {
		bp.Move(sb.bpID, sb.bounds)
	}
}

func (sb *SoftBody) unregisterBounds() {
	if sb.bpID != 0 && sb.space != nil {
		sb.space.broadPhase.Remove(sb.bpID)
	}
	sb.bpID = 0
}

func (sb *SoftBody) setSpace(space *Space) {
	if sb.space == space {
		return
	}
	sb.clearConstraints()
	if old := sb.space; old != nil {
		old.removeActive(&sb.CollisionObject)
	}
	sb.CollisionObject.setSpace(space)
	if space != nil {
		space.addActive(&sb.CollisionObject)
	}
}

// integrateForces applies the default area gravity and damping to free points.
func (sb *SoftBody) integrateForces(dt float64) {
	def := sb.space.defaultAreaOrNil()
	if def == nil {
		return
	}
	g := def.computeGravity(sb.bounds.Center())
	damp := math.Max(0, 1-dt*(def.linearDamp+sb.dampingCoefficient))
	for i := range sb.points {
		p := &sb.points[i]
		if p.invMass == 0 {
			continue
		}
		p.velocity = p.velocity.Scale(damp).Add(g.Scale(dt))
	}
}

// integrateVelocities moves the points, then relaxes the links and derives
// the velocities from the corrected motion.
func (sb *SoftBody) integrateVelocities(dt float64) {
	for i := range sb.points {
		p := &sb.points[i]
		p.previous = p.position
		if p.invMass == 0 {
			continue
		}
		p.position = p.position.Add(p.velocity.Scale(dt))
	}

	for iter := 0; iter < sb.simulationPrecision; iter++ {
		for _, l := range sb.links {
			pa, pb := &sb.points[l.a], &sb.points[l.b]
			w := pa.invMass + pb.invMass
			if w == 0 {
				continue
			}
			delta := pb.position.Sub(pa.position)
			dist := delta.Mag()
			if dist < magicEpsilon {
				continue
			}
			corr := delta.Scale((dist - l.rest) / dist * sb.linearStiffness / w)
			pa.position = pa.position.Add(corr.Scale(pa.invMass))
			pb.position = pb.position.Sub(corr.Scale(pb.invMass))
		}
	}

	for i := range sb.points {
		p := &sb.points[i]
		if p.invMass == 0 {
			continue
		}
		p.velocity = p.position.Sub(p.previous).Scale(1 / dt)
	}
	sb.updateBounds()
}
