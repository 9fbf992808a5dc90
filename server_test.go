package space2d_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/setanarut/space2d"
	"github.com/setanarut/vec"
)

const dt = 1.0 / 60

type world struct {
	t     *testing.T
	srv   *space2d.Server
	space space2d.Handle
}

func newWorld(t *testing.T) *world {
	t.Helper()
	settings := space2d.DefaultSettings()
	settings.Logger = log.New(io.Discard, "", 0)
	settings.Debug = true
	srv := space2d.NewServer(settings)
	w := &world{t: t, srv: srv, space: srv.SpaceCreate()}
	w.ok(srv.SpaceSetActive(w.space, true))
	w.ok(srv.AreaSetParam(w.space, space2d.AreaParamGravity, 0.0))
	return w
}

func (w *world) ok(err error) {
	w.t.Helper()
	if err != nil {
		w.t.Fatal(err)
	}
}

func (w *world) shape(data space2d.ShapeData) space2d.Handle {
	w.t.Helper()
	h := w.srv.ShapeCreate(data.ShapeType())
	w.ok(w.srv.ShapeSetData(h, data))
	return h
}

func (w *world) body(radius float64, pos vec.Vec2) space2d.Handle {
	w.t.Helper()
	h := w.srv.BodyCreate()
	w.ok(w.srv.BodyAddShape(h, w.shape(space2d.CircleData{Radius: radius}), space2d.NewTransformIdentity(), false))
	w.ok(w.srv.BodySetTransform(h, space2d.NewTransformTranslate(pos)))
	w.ok(w.srv.BodySetSpace(h, w.space))
	return h
}

func (w *world) monitor(radius float64, pos vec.Vec2, f space2d.AreaMonitorFunc) space2d.Handle {
	w.t.Helper()
	h := w.srv.AreaCreate()
	w.ok(w.srv.AreaAddShape(h, w.shape(space2d.CircleData{Radius: radius}), space2d.NewTransformTranslate(pos), false))
	w.ok(w.srv.AreaSetMonitorCallback(h, f))
	w.ok(w.srv.AreaSetSpace(h, w.space))
	return h
}

func (w *world) tick() {
	w.srv.Step(dt)
	w.srv.Sync()
	w.srv.FlushQueries()
	w.srv.EndSync()
}

func TestServerInvalidHandles(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	b := w.body(5, vec.Vec2{})
	shape := srv.BodyGetShape(b, 0)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"zero handle", srv.BodySetSpace(0, w.space), space2d.ErrInvalidHandle},
		{"wrong kind", srv.BodySetSpace(shape, w.space), space2d.ErrInvalidHandle},
		{"space of wrong kind", srv.BodySetSpace(b, shape), space2d.ErrInvalidHandle},
		{"shape kind", srv.ShapeSetData(shape, space2d.RectangleData{HalfExtents: vec.Vec2{X: 1, Y: 1}}), space2d.ErrKindMismatch},
		{"shape index", srv.BodyRemoveShape(b, 3), space2d.ErrIndexOutOfRange},
		{"area param type", srv.AreaSetParam(w.space, space2d.AreaParamGravity, "down"), space2d.ErrKindMismatch},
		{"zero mass", srv.BodySetParam(b, space2d.BodyParamMass, -1), space2d.ErrInvalidState},
		{"default area", srv.Free(srv.SpaceGetDefaultArea(w.space)), space2d.ErrInvalidState},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: got [%v] want [%v]", tt.name, tt.err, tt.want)
		}
	}

	w.ok(srv.Free(b))
	if err := srv.BodySetLinearVelocity(b, vec.Vec2{X: 1}); !errors.Is(err, space2d.ErrInvalidHandle) {
		t.Errorf("stale handle: got [%v] want [%v]", err, space2d.ErrInvalidHandle)
	}
	if err := srv.Free(b); !errors.Is(err, space2d.ErrInvalidHandle) {
		t.Errorf("double free: got [%v] want [%v]", err, space2d.ErrInvalidHandle)
	}
	if reused := srv.BodyCreate(); reused == b {
		t.Errorf("reused slot issued the stale handle %v", b)
	}
}

func TestServerFreeShapeLeavesOwners(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	shape := w.shape(space2d.CircleData{Radius: 5})
	b := srv.BodyCreate()
	a := srv.AreaCreate()
	w.ok(srv.BodyAddShape(b, shape, space2d.NewTransformIdentity(), false))
	w.ok(srv.BodyAddShape(b, shape, space2d.NewTransformTranslate(vec.Vec2{X: 10}), false))
	w.ok(srv.AreaAddShape(a, shape, space2d.NewTransformIdentity(), false))
	w.ok(srv.BodySetSpace(b, w.space))
	w.tick()

	w.ok(srv.Free(shape))
	if got := srv.BodyGetShapeCount(b); got != 0 {
		t.Errorf("got [%v] body shapes want [0]", got)
	}
	if got := srv.AreaGetShapeCount(a); got != 0 {
		t.Errorf("got [%v] area shapes want [0]", got)
	}
	w.tick()
}

func TestServerFreeSpace(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	def := srv.SpaceGetDefaultArea(w.space)
	b := w.body(5, vec.Vec2{})
	var events []space2d.AreaMonitorEvent
	a := w.monitor(10, vec.Vec2{}, func(ev space2d.AreaMonitorEvent) { events = append(events, ev) })
	w.tick()
	if len(events) != 1 {
		t.Fatalf("got [%v] want one added event", events)
	}

	events = nil
	w.ok(srv.Free(w.space))
	if len(events) != 1 || events[0].Event != space2d.AreaEventRemoved || events[0].Object != b {
		t.Errorf("got [%v] want one removed event for %v", events, b)
	}
	if got := srv.BodyGetSpace(b); got != 0 {
		t.Errorf("got body space [%v] want none", got)
	}
	if got := srv.AreaGetSpace(a); got != 0 {
		t.Errorf("got area space [%v] want none", got)
	}
	if srv.AreaGet(def) != nil {
		t.Error("default area outlived its space")
	}
	if srv.SpaceIsActive(w.space) {
		t.Error("freed space is active")
	}
	srv.Step(dt)
	if got := srv.GetProcessInfo(space2d.ProcessInfoActiveObjects); got != 0 {
		t.Errorf("got [%v] active objects want [0]", got)
	}
}

func TestServerDefaultAreaStaysWithSpace(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	def := srv.SpaceGetDefaultArea(w.space)

	for name, err := range map[string]error{
		"detach":          srv.AreaSetSpace(def, 0),
		"detach by space": srv.AreaSetSpace(w.space, 0),
		"free":            srv.Free(def),
	} {
		if !errors.Is(err, space2d.ErrInvalidState) {
			t.Errorf("%s: got [%v] want [%v]", name, err, space2d.ErrInvalidState)
		}
	}
	if got := srv.AreaGetSpace(def); got != w.space {
		t.Fatalf("got [%v] want [%v]", got, w.space)
	}

	w.ok(srv.Free(w.space))
	if srv.SpaceGet(w.space) != nil {
		t.Error("freed space handle still resolves")
	}
	if srv.AreaGet(def) != nil {
		t.Error("default area outlived its space")
	}
}

func TestServerFreeAreaDeliversExit(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	b := w.body(2, vec.Vec2{X: 3})
	var events []space2d.AreaMonitorEvent
	a := w.monitor(10, vec.Vec2{}, func(ev space2d.AreaMonitorEvent) {
		if !srv.IsFlushingQueries() {
			t.Error("monitor event outside a flush")
		}
		events = append(events, ev)
	})
	w.ok(srv.BodyAttachObjectInstanceID(b, 42))
	w.tick()
	w.tick()
	if len(events) != 1 || events[0].Event != space2d.AreaEventAdded || events[0].InstanceID != 42 {
		t.Fatalf("got [%v] want one added event", events)
	}

	events = nil
	w.ok(srv.Free(a))
	if len(events) != 1 || events[0].Event != space2d.AreaEventRemoved || events[0].Object != b {
		t.Fatalf("got [%v] want one removed event for %v", events, b)
	}
	w.tick()
	if len(events) != 1 {
		t.Errorf("got [%v] events after the area was freed want [1]", len(events))
	}
	if srv.IsFlushingQueries() {
		t.Error("still flushing")
	}
}

func TestServerRejectsChangesWhileFlushing(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	b := w.body(2, vec.Vec2{})
	var errs []error
	var a space2d.Handle
	a = w.monitor(10, vec.Vec2{}, func(space2d.AreaMonitorEvent) {
		errs = append(errs,
			srv.BodySetSpace(b, 0),
			srv.BodySetMode(b, space2d.BodyModeStatic),
			srv.AreaSetSpace(a, 0),
			srv.Free(b),
			srv.Free(w.space),
		)
		// plain state changes stay allowed
		if err := srv.BodySetLinearVelocity(b, vec.Vec2{X: 1}); err != nil {
			t.Errorf("got [%v] want nil", err)
		}
	})
	w.tick()

	if len(errs) == 0 {
		t.Fatal("monitor callback never ran")
	}
	for i, err := range errs {
		if !errors.Is(err, space2d.ErrFlushingQueries) {
			t.Errorf("call %d: got [%v] want [%v]", i, err, space2d.ErrFlushingQueries)
		}
	}
	if got := srv.BodyGetSpace(b); got != w.space {
		t.Errorf("got body space [%v] want [%v]", got, w.space)
	}
	w.ok(srv.BodySetSpace(b, 0))
}

func TestServerCallbacks(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	b := w.body(2, vec.Vec2{})
	w.ok(srv.BodySetLinearVelocity(b, vec.Vec2{X: 60}))

	var synced []vec.Vec2
	w.ok(srv.BodySetStateSyncCallback(b, func(s *space2d.DirectBodyState) {
		synced = append(synced, s.Transform().Origin())
	}))
	var userData []any
	w.ok(srv.BodySetForceIntegrationCallback(b, func(s *space2d.DirectBodyState, data any) {
		userData = append(userData, data)
	}, "tag"))

	srv.Step(dt)
	if len(synced) != 0 {
		t.Fatal("callback ran before the flush")
	}
	srv.FlushQueries()
	if len(synced) != 1 || len(userData) != 1 || userData[0] != "tag" {
		t.Fatalf("got [%v %v] want one call of each callback", synced, userData)
	}
	if got := synced[0].X; got <= 0 {
		t.Errorf("got synced x [%v] want the moved position", got)
	}
	srv.FlushQueries()
	if len(synced) != 1 {
		t.Errorf("got [%v] calls want callbacks once per step", len(synced))
	}
}

func TestServerProcessInfo(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	w.body(5, vec.Vec2{})
	w.body(5, vec.Vec2{X: 8})
	w.body(5, vec.Vec2{X: 100})

	w.tick()
	tests := []struct {
		info space2d.ProcessInfo
		want int
	}{
		{space2d.ProcessInfoActiveObjects, 3},
		{space2d.ProcessInfoCollisionPairs, 1},
		{space2d.ProcessInfoIslandCount, 2},
	}
	for _, tt := range tests {
		if got := srv.GetProcessInfo(tt.info); got != tt.want {
			t.Errorf("info %d: got [%v] want [%v]", tt.info, got, tt.want)
		}
	}

	w.ok(srv.SpaceSetActive(w.space, false))
	srv.Step(dt)
	if got := srv.GetProcessInfo(space2d.ProcessInfoActiveObjects); got != 0 {
		t.Errorf("inactive space: got [%v] active objects want [0]", got)
	}

	srv.SetActive(false)
	w.ok(srv.SpaceSetActive(w.space, true))
	srv.Step(dt)
	if got := srv.GetProcessInfo(space2d.ProcessInfoActiveObjects); got != 0 {
		t.Errorf("inactive server: got [%v] active objects want [0]", got)
	}
}

func TestServerSpaceChange(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	other := srv.SpaceCreate()
	w.ok(srv.SpaceSetActive(other, true))
	a := w.body(5, vec.Vec2{})
	b := w.body(5, vec.Vec2{X: 8})
	w.tick()
	if got := srv.GetProcessInfo(space2d.ProcessInfoCollisionPairs); got != 1 {
		t.Fatalf("got [%v] pairs want [1]", got)
	}

	w.ok(srv.BodySetSpace(b, other))
	w.tick()
	if got := srv.GetProcessInfo(space2d.ProcessInfoCollisionPairs); got != 0 {
		t.Errorf("got [%v] pairs across spaces want [0]", got)
	}
	if got := srv.BodyGetSpace(a); got != w.space {
		t.Errorf("got [%v] want [%v]", got, w.space)
	}
	if got := srv.BodyGetSpace(b); got != other {
		t.Errorf("got [%v] want [%v]", got, other)
	}
}
