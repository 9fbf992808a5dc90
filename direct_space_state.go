package space2d

import (
	"slices"

	"github.com/setanarut/vec"
)

// QueryFilter selects the objects a space query may report.
type QueryFilter struct {
	// CollisionMask is tested against the object collision layer.
	CollisionMask     uint32
	CollideWithBodies bool
	CollideWithAreas  bool
	Exclude           []Handle
}

// DefaultQueryFilter matches every body on any layer.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{CollisionMask: 0xffffffff, CollideWithBodies: true}
}

func (f *QueryFilter) accepts(co *CollisionObject, sub int) bool {
	if co.layer&f.CollisionMask == 0 || co.IsShapeDisabled(sub) {
		return false
	}
	switch co.kind {
	case ObjectArea:
		if !f.CollideWithAreas {
			return false
		}
	case ObjectBody:
		if !f.CollideWithBodies {
			return false
		}
	default:
		return false
	}
	return !slices.Contains(f.Exclude, co.handle)
}

// ShapeResult is one object shape found by a query.
type ShapeResult struct {
	Object     Handle
	InstanceID uint64
	Shape      int
}

// RayResult is the closest surface crossed by a ray.
type RayResult struct {
	Position   vec.Vec2
	Normal     vec.Vec2
	Object     Handle
	InstanceID uint64
	Shape      int
}

// DirectSpaceState runs queries against a space between ticks.
type DirectSpaceState struct {
	space *Space
	srv   *Server
}

// IntersectPoint returns the shapes containing p, at most maxResults of
// them when maxResults is positive. Only pickable objects are reported when
// pickOnly is set.
func (s *DirectSpaceState) IntersectPoint(p vec.Vec2, filter QueryFilter, pickOnly bool, maxResults int) []ShapeResult {
	var results []ShapeResult
	for _, hit := range s.space.broadPhase.CullPoint(p, nil) {
		co := hit.Object
		if !filter.accepts(co, hit.Subindex) || (pickOnly && !co.pickable) {
			continue
		}
		if !co.shapes[hit.Subindex].shape.containsPoint(co.shapeWorldTransform(hit.Subindex), p) {
			continue
		}
		results = append(results, ShapeResult{Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results
}

// IntersectRay returns the first surface crossed going from from to to.
// A ray starting inside a shape hits it at from with a zero normal when
// hitFromInside is set, and ignores that shape otherwise.
func (s *DirectSpaceState) IntersectRay(from, to vec.Vec2, filter QueryFilter, hitFromInside bool) (RayResult, bool) {
	best := RayResult{}
	bestAlpha := 2.0
	for _, hit := range s.space.broadPhase.CullSegment(from, to, nil) {
		co := hit.Object
		if !filter.accepts(co, hit.Subindex) {
			continue
		}
		shape := co.shapes[hit.Subindex].shape
		xf := co.shapeWorldTransform(hit.Subindex)
		if shape.containsPoint(xf, from) {
			if hitFromInside && bestAlpha > 0 {
				bestAlpha = 0
				best = RayResult{Position: from, Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex}
			}
			continue
		}
		h, ok := shape.segmentQuery(xf, from, to, 0)
		if !ok || h.Alpha >= bestAlpha {
			continue
		}
		bestAlpha = h.Alpha
		best = RayResult{Position: h.Point, Normal: h.Normal, Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex}
	}
	return best, bestAlpha <= 1
}

// IntersectAABB returns the shapes whose boxes overlap bb.
func (s *DirectSpaceState) IntersectAABB(bb BB, filter QueryFilter, maxResults int) []ShapeResult {
	var results []ShapeResult
	for _, hit := range s.space.broadPhase.CullAABB(bb, nil) {
		co := hit.Object
		if !filter.accepts(co, hit.Subindex) {
			continue
		}
		results = append(results, ShapeResult{Object: co.handle, InstanceID: co.instanceID, Shape: hit.Subindex})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results
}
