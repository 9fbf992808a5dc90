package space2d

import (
	"maps"
	"slices"

	"github.com/setanarut/vec"
)

// broadPhaseID identifies one (object, sub-shape) entry. Zero is never issued.
type broadPhaseID uint32

// BroadPhaseHit is a candidate returned by the cull queries.
type BroadPhaseHit struct {
	Object   *CollisionObject
	Subindex int
}

// PairCallback is told about a pair of entries whose boxes started or
// stopped overlapping. The entry created first is always passed first.
type PairCallback func(a *CollisionObject, subA int, b *CollisionObject, subB int)

type broadPhaseItem struct {
	owner    *CollisionObject
	subindex int
	aabb     BB // last box given to create or move
	fat      BB // box stored in the tree
	static   bool
	inStatic bool
	leaf     *bbNode
	pairs    map[broadPhaseID]struct{}
	dirty    bool
	live     bool
}

// BroadPhase keeps sub-shape boxes in two trees. Static entries only pair
// with dynamic ones, dynamic entries pair with both, so static-static
// overlaps are never reported.
//
// Create, Move, SetStatic and Remove are cheap. Tree placement and the
// pair/unpair notifications happen in Update, so a cull query never sees an
// entry whose pair callbacks have not fired yet.
type BroadPhase struct {
	items       []*broadPhaseItem
	freeIDs     []broadPhaseID
	staticTree  bbTree
	dynamicTree bbTree
	dirty       []broadPhaseID
	margin      float64
	pairCount   int

	pairCallback   PairCallback
	unpairCallback PairCallback
}

// NewBroadPhase returns an empty index. Boxes are stored grown by margin so
// small motions do not touch the trees.
func NewBroadPhase(margin float64) *BroadPhase {
	return &BroadPhase{margin: margin}
}

// SetPairCallback registers the function told about new overlaps.
func (bp *BroadPhase) SetPairCallback(f PairCallback) {
	bp.pairCallback = f
}

// SetUnpairCallback registers the function told about ended overlaps.
func (bp *BroadPhase) SetUnpairCallback(f PairCallback) {
	bp.unpairCallback = f
}

func (bp *BroadPhase) item(id broadPhaseID) *broadPhaseItem {
	if id == 0 || int(id) > len(bp.items) {
		return nil
	}
	it := bp.items[id-1]
	if !it.live {
		return nil
	}
	return it
}

func (bp *BroadPhase) tree(static bool) *bbTree {
	if static {
		return &bp.staticTree
	}
	return &bp.dynamicTree
}

func (bp *BroadPhase) markDirty(id broadPhaseID, it *broadPhaseItem) {
	if !it.dirty {
		it.dirty = true
		bp.dirty = append(bp.dirty, id)
	}
}

// Create adds an entry and returns its id.
func (bp *BroadPhase) Create(owner *CollisionObject, subindex int, aabb BB, static bool) broadPhaseID {
	var id broadPhaseID
	if n := len(bp.freeIDs); n > 0 {
		id = bp.freeIDs[n-1]
		bp.freeIDs = bp.freeIDs[:n-1]
	} else {
		bp.items = append(bp.items, &broadPhaseItem{})
		id = broadPhaseID(len(bp.items))
	}
	*bp.items[id-1] = broadPhaseItem{
		owner:    owner,
		subindex: subindex,
		aabb:     aabb,
		static:   static,
		pairs:    make(map[broadPhaseID]struct{}),
		live:     true,
	}
	bp.markDirty(id, bp.items[id-1])
	return id
}

// Move changes the box of an entry.
func (bp *BroadPhase) Move(id broadPhaseID, aabb BB) {
	it := bp.item(id)
	if it == nil {
		return
	}
	it.aabb = aabb
	if it.leaf == nil || !it.fat.Contains(aabb) {
		bp.markDirty(id, it)
	}
}

// SetStatic moves an entry between the static and dynamic groups.
func (bp *BroadPhase) SetStatic(id broadPhaseID, static bool) {
	it := bp.item(id)
	if it == nil || it.static == static {
		return
	}
	it.static = static
	bp.markDirty(id, it)
}

// IsStatic reports the group of an entry.
func (bp *BroadPhase) IsStatic(id broadPhaseID) bool {
	it := bp.item(id)
	return it != nil && it.static
}

// Object returns the owner and sub-shape index of an entry.
func (bp *BroadPhase) Object(id broadPhaseID) (*CollisionObject, int) {
	it := bp.item(id)
	if it == nil {
		return nil, -1
	}
	return it.owner, it.subindex
}

// Remove deletes an entry. Every pair it is part of is unpaired right away.
func (bp *BroadPhase) Remove(id broadPhaseID) {
	it := bp.item(id)
	if it == nil {
		return
	}
	if it.leaf != nil {
		bp.tree(it.inStatic).remove(it.leaf)
		it.leaf = nil
	}
	for _, other := range slices.Sorted(maps.Keys(it.pairs)) {
		bp.unpair(id, other)
	}
	if it.dirty {
		bp.dirty = slices.DeleteFunc(bp.dirty, func(d broadPhaseID) bool { return d == id })
	}
	*it = broadPhaseItem{}
	bp.freeIDs = append(bp.freeIDs, id)
}

// Update places moved entries in their trees and fires the pair and unpair
// callbacks for every overlap that started or ended since the last call.
func (bp *BroadPhase) Update() {
	if len(bp.dirty) == 0 {
		return
	}
	dirty := bp.dirty
	bp.dirty = nil
	slices.Sort(dirty)

	for _, id := range dirty {
		it := bp.item(id)
		if it == nil {
			continue
		}
		if it.leaf != nil {
			bp.tree(it.inStatic).remove(it.leaf)
		}
		it.fat = it.aabb.Grow(bp.margin)
		it.inStatic = it.static
		it.leaf = bp.tree(it.static).insert(id, it.fat)
	}

	var found []broadPhaseID
	for _, id := range dirty {
		it := bp.item(id)
		if it == nil {
			continue
		}
		it.dirty = false

		found = found[:0]
		collect := func(other broadPhaseID) {
			if other != id {
				found = append(found, other)
			}
		}
		bp.dynamicTree.query(it.fat, collect)
		if !it.static {
			bp.staticTree.query(it.fat, collect)
		}
		slices.Sort(found)

		for _, other := range slices.Sorted(maps.Keys(it.pairs)) {
			if _, ok := slices.BinarySearch(found, other); !ok {
				bp.unpair(id, other)
			}
		}
		for _, other := range found {
			if bp.item(id) == nil {
				break
			}
			if _, ok := it.pairs[other]; !ok && bp.item(other) != nil {
				bp.pair(id, other)
			}
		}
	}
}

func (bp *BroadPhase) ordered(a, b broadPhaseID) (*broadPhaseItem, *broadPhaseItem) {
	if a > b {
		a, b = b, a
	}
	return bp.items[a-1], bp.items[b-1]
}

func (bp *BroadPhase) pair(a, b broadPhaseID) {
	bp.items[a-1].pairs[b] = struct{}{}
	bp.items[b-1].pairs[a] = struct{}{}
	bp.pairCount++
	if bp.pairCallback != nil {
		x, y := bp.ordered(a, b)
		bp.pairCallback(x.owner, x.subindex, y.owner, y.subindex)
	}
}

func (bp *BroadPhase) unpair(a, b broadPhaseID) {
	delete(bp.items[a-1].pairs, b)
	delete(bp.items[b-1].pairs, a)
	bp.pairCount--
	if bp.unpairCallback != nil {
		x, y := bp.ordered(a, b)
		bp.unpairCallback(x.owner, x.subindex, y.owner, y.subindex)
	}
}

// PairCount returns the number of overlapping entry pairs.
func (bp *BroadPhase) PairCount() int {
	return bp.pairCount
}

func (bp *BroadPhase) hits(ids []broadPhaseID, results []BroadPhaseHit) []BroadPhaseHit {
	slices.Sort(ids)
	for _, id := range ids {
		it := bp.items[id-1]
		results = append(results, BroadPhaseHit{Object: it.owner, Subindex: it.subindex})
	}
	return results
}

// CullAABB appends the entries whose boxes intersect bb, in id order.
func (bp *BroadPhase) CullAABB(bb BB, results []BroadPhaseHit) []BroadPhaseHit {
	var ids []broadPhaseID
	collect := func(id broadPhaseID) {
		if bp.items[id-1].aabb.Intersects(bb) {
			ids = append(ids, id)
		}
	}
	bp.dynamicTree.query(bb, collect)
	bp.staticTree.query(bb, collect)
	return bp.hits(ids, results)
}

// CullPoint appends the entries whose boxes contain p.
func (bp *BroadPhase) CullPoint(p vec.Vec2, results []BroadPhaseHit) []BroadPhaseHit {
	return bp.CullAABB(NewBB(p.X, p.Y, p.X, p.Y), results)
}

// CullSegment appends the entries whose boxes the segment a-b crosses.
func (bp *BroadPhase) CullSegment(a, b vec.Vec2, results []BroadPhaseHit) []BroadPhaseHit {
	var ids []broadPhaseID
	collect := func(id broadPhaseID) float64 {
		if bp.items[id-1].aabb.IntersectsSegment(a, b) {
			ids = append(ids, id)
		}
		return 1
	}
	bp.dynamicTree.segmentQuery(a, b, 1, collect)
	bp.staticTree.segmentQuery(a, b, 1, collect)
	return bp.hits(ids, results)
}
