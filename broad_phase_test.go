package space2d

import (
	"slices"
	"testing"
)

type pairEvent struct {
	a, b       *CollisionObject
	subA, subB int
}

type pairRecorder struct {
	paired, unpaired []pairEvent
}

func newRecordedBroadPhase() (*BroadPhase, *pairRecorder) {
	bp := NewBroadPhase(0)
	r := &pairRecorder{}
	bp.SetPairCallback(func(a *CollisionObject, sa int, b *CollisionObject, sb int) {
		r.paired = append(r.paired, pairEvent{a, b, sa, sb})
	})
	bp.SetUnpairCallback(func(a *CollisionObject, sa int, b *CollisionObject, sb int) {
		r.unpaired = append(r.unpaired, pairEvent{a, b, sa, sb})
	})
	return bp, r
}

func newTestObject(kind CollisionObjectType) *CollisionObject {
	co := &CollisionObject{}
	co.init(kind)
	return co
}

func TestBroadPhasePairSymmetry(t *testing.T) {
	bp, r := newRecordedBroadPhase()
	a, b := newTestObject(ObjectBody), newTestObject(ObjectBody)

	idA := bp.Create(a, 0, NewBB(0, 0, 10, 10), false)
	idB := bp.Create(b, 2, NewBB(50, 0, 60, 10), false)
	bp.Update()
	if len(r.paired) != 0 {
		t.Fatalf("got %d pairs for separated boxes, want 0", len(r.paired))
	}

	bp.Move(idB, NewBB(5, 0, 15, 10))
	if hits := bp.CullAABB(NewBB(12, 2, 14, 4), nil); len(hits) != 0 {
		t.Errorf("cull saw a moved entry before Update: %v", hits)
	}
	bp.Update()
	if got, want := len(r.paired), 1; got != want {
		t.Fatalf("got [%v] pairs want [%v]", got, want)
	}
	if got := r.paired[0]; got.a != a || got.subA != 0 || got.b != b || got.subB != 2 {
		t.Errorf("pair callback got %+v, want the first created entry first", got)
	}
	if hits := bp.CullAABB(NewBB(12, 2, 14, 4), nil); len(hits) != 1 || hits[0].Object != b {
		t.Errorf("cull after Update got %v, want entry b", hits)
	}
	if got, want := bp.PairCount(), 1; got != want {
		t.Errorf("got [%v] pair count want [%v]", got, want)
	}

	bp.Move(idB, NewBB(7, 0, 17, 10))
	bp.Update()
	if got, want := len(r.paired), 1; got != want {
		t.Errorf("still overlapping: got [%v] pairs want [%v]", got, want)
	}

	bp.Move(idB, NewBB(50, 0, 60, 10))
	bp.Update()
	bp.Update()
	if got, want := len(r.unpaired), 1; got != want {
		t.Fatalf("got [%v] unpairs want [%v]", got, want)
	}
	if got := r.unpaired[0]; got.a != a || got.b != b {
		t.Errorf("unpair callback got %+v", got)
	}
	if got := bp.PairCount(); got != 0 {
		t.Errorf("got [%v] pair count want [0]", got)
	}
	_ = idA
}

func TestBroadPhaseStaticPairs(t *testing.T) {
	bp, r := newRecordedBroadPhase()
	a, b := newTestObject(ObjectBody), newTestObject(ObjectBody)

	bp.Create(a, 0, NewBB(0, 0, 10, 10), true)
	idB := bp.Create(b, 0, NewBB(5, 5, 15, 15), true)
	bp.Update()
	if len(r.paired) != 0 {
		t.Fatalf("static entries paired: %v", r.paired)
	}

	bp.SetStatic(idB, false)
	bp.Update()
	if got, want := len(r.paired), 1; got != want {
		t.Fatalf("got [%v] pairs want [%v]", got, want)
	}

	bp.SetStatic(idB, true)
	bp.Update()
	if got, want := len(r.unpaired), 1; got != want {
		t.Fatalf("got [%v] unpairs want [%v]", got, want)
	}
}

func TestBroadPhaseRoundTrip(t *testing.T) {
	bp, _ := newRecordedBroadPhase()
	objs := []*CollisionObject{newTestObject(ObjectBody), newTestObject(ObjectBody), newTestObject(ObjectArea)}
	boxes := []BB{NewBB(0, 0, 10, 10), NewBB(20, 0, 30, 10), NewBB(5, 5, 25, 8)}
	var ids []broadPhaseID
	for i, o := range objs {
		ids = append(ids, bp.Create(o, i, boxes[i], i == 2))
	}
	bp.Update()

	query := NewBB(-100, -100, 100, 100)
	before := bp.CullAABB(query, nil)
	beforeSeg := bp.CullSegment(vec2(-5, 6), vec2(40, 6), nil)

	bp.Move(ids[1], boxes[1])
	bp.Move(ids[1], NewBB(200, 200, 210, 210))
	bp.Move(ids[1], boxes[1])
	bp.Update()

	if after := bp.CullAABB(query, nil); !slices.Equal(before, after) {
		t.Errorf("got [%v] want [%v]", after, before)
	}
	if after := bp.CullSegment(vec2(-5, 6), vec2(40, 6), nil); !slices.Equal(beforeSeg, after) {
		t.Errorf("got [%v] want [%v]", after, beforeSeg)
	}
}

func TestBroadPhaseRemoveUnpairs(t *testing.T) {
	bp, r := newRecordedBroadPhase()
	a, b := newTestObject(ObjectBody), newTestObject(ObjectBody)
	bp.Create(a, 0, NewBB(0, 0, 10, 10), false)
	idB := bp.Create(b, 0, NewBB(5, 5, 15, 15), false)
	bp.Update()

	bp.Remove(idB)
	if got, want := len(r.unpaired), 1; got != want {
		t.Fatalf("got [%v] unpairs want [%v]", got, want)
	}
	if o, sub := bp.Object(idB); o != nil || sub != -1 {
		t.Errorf("removed entry still resolves to %v/%d", o, sub)
	}
	if hits := bp.CullPoint(vec2(12, 12), nil); len(hits) != 0 {
		t.Errorf("removed entry still culled: %v", hits)
	}

	// the id is reused by the next entry
	if id := bp.Create(b, 1, NewBB(0, 0, 1, 1), false); id != idB {
		t.Errorf("got id [%v] want [%v]", id, idB)
	}
}
