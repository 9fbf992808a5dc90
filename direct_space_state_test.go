package space2d

import (
	"errors"
	"io"
	"log"
	"math"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/setanarut/vec"
)

func near(a, b vec.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func objectsOf(results []ShapeResult) []Handle {
	var hs []Handle
	for _, r := range results {
		hs = append(hs, r.Object)
	}
	return hs
}

func TestDirectSpaceStateQueries(t *testing.T) {
	srv, sp := newTestServer(t)
	box := testBody(t, srv, sp, BodyModeRigid, RectangleData{HalfExtents: vec2(10, 10)}, vec2(0, 0))
	ball := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 5}, vec2(50, 0))
	area := srv.AreaCreate()
	must(t, srv.AreaAddShape(area, testShape(t, srv, CircleData{Radius: 10}), NewTransformTranslate(vec2(100, 0)), false))
	must(t, srv.AreaSetSpace(area, sp.handle))
	srv.Step(1.0 / 60)

	state, err := srv.SpaceGetDirectState(sp.handle)
	if err != nil {
		t.Fatal(err)
	}
	filter := DefaultQueryFilter()
	withAreas := filter
	withAreas.CollideWithAreas = true
	excludeBox := filter
	excludeBox.Exclude = []Handle{box.handle}

	t.Run("point", func(t *testing.T) {
		tests := []struct {
			name   string
			p      vec.Vec2
			filter QueryFilter
			want   []Handle
		}{
			{"inside box", vec2(1, 1), filter, []Handle{box.handle}},
			{"outside circle corner", vec2(54, 4), filter, nil},
			{"inside circle", vec2(52, 1), filter, []Handle{ball.handle}},
			{"excluded", vec2(1, 1), excludeBox, nil},
			{"area skipped", vec2(100, 0), filter, nil},
			{"area", vec2(100, 0), withAreas, []Handle{area}},
		}
		for _, tt := range tests {
			if got := objectsOf(state.IntersectPoint(tt.p, tt.filter, false, 0)); !slices.Equal(got, tt.want) {
				t.Errorf("%s: got [%v] want [%v]", tt.name, got, tt.want)
			}
		}
	})

	t.Run("pickable", func(t *testing.T) {
		must(t, srv.BodySetPickable(box.handle, false))
		defer srv.BodySetPickable(box.handle, true)
		if got := state.IntersectPoint(vec2(1, 1), filter, true, 0); len(got) != 0 {
			t.Errorf("got [%v] want no pickable hit", got)
		}
		if got := state.IntersectPoint(vec2(1, 1), filter, false, 0); len(got) != 1 {
			t.Errorf("got [%v] want one hit", got)
		}
	})

	t.Run("ray", func(t *testing.T) {
		hit, ok := state.IntersectRay(vec2(-50, 0), vec2(200, 0), filter, false)
		if !ok || hit.Object != box.handle {
			t.Fatalf("got [%v %v] want a hit on [%v]", hit, ok, box.handle)
		}
		if !near(hit.Position, vec2(-10, 0)) || !near(hit.Normal, vec2(-1, 0)) {
			t.Errorf("got [%v %v] want [(-10,0) (-1,0)]", hit.Position, hit.Normal)
		}

		hit, ok = state.IntersectRay(vec2(0, 0), vec2(200, 0), filter, false)
		if !ok || hit.Object != ball.handle || !near(hit.Position, vec2(45, 0)) {
			t.Errorf("got [%v %v] want the ball at (45,0)", hit, ok)
		}

		hit, ok = state.IntersectRay(vec2(0, 0), vec2(200, 0), filter, true)
		if !ok || hit.Object != box.handle || !near(hit.Position, vec2(0, 0)) || hit.Normal != (vec.Vec2{}) {
			t.Errorf("got [%v %v] want the box from inside", hit, ok)
		}

		if _, ok := state.IntersectRay(vec2(0, 50), vec2(200, 50), filter, false); ok {
			t.Error("ray above everything hit")
		}
	})

	t.Run("aabb", func(t *testing.T) {
		got := objectsOf(state.IntersectAABB(NewBB(40, -1, 60, 1), filter, 0))
		if want := []Handle{ball.handle}; !slices.Equal(got, want) {
			t.Errorf("got [%v] want [%v]", got, want)
		}
		if got := state.IntersectAABB(NewBB(-100, -100, 200, 100), withAreas, 2); len(got) != 2 {
			t.Errorf("got [%v] results want [2]", len(got))
		}
	})
}

func TestDirectStateLockedWhileStepping(t *testing.T) {
	srv, sp := newTestServer(t)
	box := RectangleData{HalfExtents: vec2(10, 10)}
	a := testBody(t, srv, sp, BodyModeRigid, box, vec2(0, 0))
	testBody(t, srv, sp, BodyModeRigid, box, vec2(15, 0))

	var calls, locked atomic.Int32
	must(t, srv.SpaceSetCollider(sp.handle, func(sa *Shape, xa Transform, sb *Shape, xb Transform) (Manifold, bool) {
		calls.Add(1)
		if _, err := srv.SpaceGetDirectState(sp.handle); errors.Is(err, ErrSpaceLocked) {
			locked.Add(1)
		}
		if _, err := srv.BodyGetDirectState(a.handle); errors.Is(err, ErrSpaceLocked) {
			locked.Add(1)
		}
		return DefaultCollider(sa, xa, sb, xb)
	}))
	srv.Step(1.0 / 60)

	if calls.Load() == 0 {
		t.Fatal("collider never ran")
	}
	if got, want := locked.Load(), 2*calls.Load(); got != want {
		t.Errorf("got [%v] locked errors want [%v]", got, want)
	}
	if _, err := srv.SpaceGetDirectState(sp.handle); err != nil {
		t.Errorf("got [%v] after the step want nil", err)
	}
	if _, err := srv.BodyGetDirectState(a.handle); err != nil {
		t.Errorf("got [%v] after the step want nil", err)
	}
}

func TestDirectBodyStateNeedsSyncOnThreadedHost(t *testing.T) {
	settings := DefaultSettings()
	settings.Logger = log.New(io.Discard, "", 0)
	settings.ThreadedHost = true
	srv := NewServer(settings)
	space := srv.SpaceCreate()
	must(t, srv.SpaceSetActive(space, true))
	b := testBody(t, srv, srv.SpaceGet(space), BodyModeRigid, CircleData{Radius: 5}, vec2(0, 0))
	srv.Step(1.0 / 60)

	if _, err := srv.BodyGetDirectState(b.handle); !errors.Is(err, ErrSpaceLocked) {
		t.Errorf("got [%v] outside sync want [%v]", err, ErrSpaceLocked)
	}
	srv.Sync()
	if _, err := srv.BodyGetDirectState(b.handle); err != nil {
		t.Errorf("got [%v] inside sync want nil", err)
	}
	srv.EndSync()
	if _, err := srv.BodyGetDirectState(b.handle); !errors.Is(err, ErrSpaceLocked) {
		t.Errorf("got [%v] after sync want [%v]", err, ErrSpaceLocked)
	}
}

func TestDirectSpaceStateShapeQueries(t *testing.T) {
	srv, sp := newTestServer(t)
	floor := testBody(t, srv, sp, BodyModeStatic, RectangleData{HalfExtents: vec2(100, 10)}, vec2(0, 10))
	ball := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 5}, vec2(50, -50))
	srv.Step(1.0 / 60)

	state, err := srv.SpaceGetDirectState(sp.handle)
	if err != nil {
		t.Fatal(err)
	}
	circle := testShape(t, srv, CircleData{Radius: 5})
	query := func(pos, motion vec.Vec2, margin float64) ShapeQueryParameters {
		return ShapeQueryParameters{
			Shape:     circle,
			Transform: NewTransformTranslate(pos),
			Motion:    motion,
			Margin:    margin,
			Filter:    DefaultQueryFilter(),
		}
	}

	t.Run("intersect", func(t *testing.T) {
		tests := []struct {
			name string
			p    ShapeQueryParameters
			want []Handle
		}{
			{"clear", query(vec2(0, -20), vec.Vec2{}, 0), nil},
			{"along motion", query(vec2(0, -20), vec2(0, 30), 0), []Handle{floor.handle}},
			{"ball", query(vec2(52, -50), vec.Vec2{}, 0), []Handle{ball.handle}},
			{"gap", query(vec2(0, -5.5), vec.Vec2{}, 0), nil},
			{"gap within margin", query(vec2(0, -5.5), vec.Vec2{}, 1), []Handle{floor.handle}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := state.IntersectShape(tt.p, 0)
				if err != nil {
					t.Fatal(err)
				}
				if !slices.Equal(objectsOf(got), tt.want) {
					t.Errorf("got [%v] want [%v]", objectsOf(got), tt.want)
				}
			})
		}
	})

	t.Run("cast", func(t *testing.T) {
		tests := []struct {
			name         string
			p            ShapeQueryParameters
			safe, unsafe float64
		}{
			{"onto floor", query(vec2(0, -50), vec2(0, 100), 0), 0.45, 0.45},
			{"free", query(vec2(-50, -50), vec2(0, -100), 0), 1, 1},
			{"stuck", query(vec2(0, 2), vec2(0, -100), 0), 0, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				safe, unsafe, err := state.CastMotion(tt.p)
				if err != nil {
					t.Fatal(err)
				}
				if math.Abs(safe-tt.safe) > 1e-3 || math.Abs(unsafe-tt.unsafe) > 1e-3 || safe > unsafe {
					t.Errorf("got [%v %v] want [%v %v]", safe, unsafe, tt.safe, tt.unsafe)
				}
			})
		}
	})

	t.Run("collide", func(t *testing.T) {
		points, err := state.CollideShape(query(vec2(0, -4), vec.Vec2{}, 0), 4)
		if err != nil {
			t.Fatal(err)
		}
		if len(points) == 0 || len(points)%2 != 0 {
			t.Fatalf("got [%v] want point pairs", points)
		}
		if b := points[1]; math.Abs(b.Y) > 1e-9 {
			t.Errorf("got [%v] want a point on the floor top", b)
		}
		if points, _ := state.CollideShape(query(vec2(0, -20), vec.Vec2{}, 0), 4); len(points) != 0 {
			t.Errorf("got [%v] want none", points)
		}
	})

	t.Run("rest", func(t *testing.T) {
		info, ok, err := state.RestInfo(query(vec2(0, -4), vec.Vec2{}, 0))
		if err != nil {
			t.Fatal(err)
		}
		if !ok || info.Object != floor.handle {
			t.Fatalf("got [%+v %v] want the floor", info, ok)
		}
		if !closeTo(info.Normal, vec2(0, -1), 1e-9) || math.Abs(info.Point.Y) > 1e-9 {
			t.Errorf("got normal [%v] point [%v] want (0,-1) on the floor top", info.Normal, info.Point)
		}
		if _, ok, _ := state.RestInfo(query(vec2(0, -20), vec.Vec2{}, 0)); ok {
			t.Error("got rest info away from everything")
		}
	})

	if _, err := state.IntersectShape(ShapeQueryParameters{Shape: floor.handle}, 0); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("got [%v] want [%v]", err, ErrInvalidHandle)
	}
}
