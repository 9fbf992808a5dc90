package space2d

import (
	"testing"
)

func TestConstraintPairCreatedAndProcessed(t *testing.T) {
	srv, sp := newTestServer(t)
	box := RectangleData{HalfExtents: vec2(10, 10)}
	a := testBody(t, srv, sp, BodyModeRigid, box, vec2(0, 0))
	b := testBody(t, srv, sp, BodyModeRigid, box, vec2(100, 0))
	srv.Step(1.0 / 60)
	if c := sp.Pair(&a.CollisionObject, 0, &b.CollisionObject, 0); c != nil {
		t.Fatal("separated bodies paired")
	}

	must(t, srv.BodySetTransform(b.handle, NewTransformTranslate(vec2(15, 0))))
	srv.Step(1.0 / 60)
	c := sp.Pair(&a.CollisionObject, 0, &b.CollisionObject, 0)
	if c == nil {
		t.Fatal("overlapping bodies not paired")
	}
	if !c.NeedsProcessing() {
		t.Error("overlapping pair does not need processing")
	}
	if !c.IsColliding() {
		t.Error("overlapping pair is not colliding")
	}
	if got, want := c.IslandStep(), sp.StepCount(); got != want {
		t.Errorf("got island step [%v] want [%v]", got, want)
	}
	if got := srv.BodyGetTransform(a.handle).Origin().X; got >= 0 {
		t.Errorf("got [%v] want a pushed toward -x", got)
	}
	if got := srv.BodyGetTransform(b.handle).Origin().X; got <= 15 {
		t.Errorf("got [%v] want b pushed toward +x", got)
	}
}

func TestConstraintBodyPairLatch(t *testing.T) {
	srv, sp := newTestServer(t)
	box := RectangleData{HalfExtents: vec2(10, 10)}
	a := testBody(t, srv, sp, BodyModeRigid, box, vec2(0, 0))
	b := testBody(t, srv, sp, BodyModeRigid, box, vec2(19, 0))
	srv.Step(1.0 / 60)
	c := sp.Pair(&a.CollisionObject, 0, &b.CollisionObject, 0)
	if c == nil || !c.IsColliding() {
		t.Fatalf("got [%v] want a colliding pair", c)
	}

	// still paired by the fat boxes but no longer touching
	must(t, srv.BodySetTransform(a.handle, NewTransformTranslate(vec2(-2, 0))))
	must(t, srv.BodySetTransform(b.handle, NewTransformTranslate(vec2(18.5, 0))))
	if c.setup(1.0 / 60) {
		t.Error("separated pair asked for processing")
	}
	if c.IsColliding() {
		t.Error("separated pair still colliding")
	}

	must(t, srv.BodySetTransform(b.handle, NewTransformTranslate(vec2(15, 0))))
	if !c.setup(1.0 / 60) {
		t.Error("touching pair not processed")
	}
	if !c.IsColliding() {
		t.Error("touching pair not colliding")
	}

	c.destroy()
	if c.IsColliding() {
		t.Error("destroyed pair still colliding")
	}
}

func TestConstraintAreaLatch(t *testing.T) {
	srv, sp := newTestServer(t)
	var events []AreaMonitorEvent
	area := srv.AreaCreate()
	must(t, srv.AreaAddShape(area, testShape(t, srv, CircleData{Radius: 10}), NewTransformIdentity(), false))
	must(t, srv.AreaSetMonitorCallback(area, func(ev AreaMonitorEvent) { events = append(events, ev) }))
	must(t, srv.AreaSetSpace(area, sp.handle))
	ar := srv.AreaGet(area)

	b := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 2}, vec2(3, 0))
	srv.Step(1.0 / 60)
	c := sp.Pair(&b.CollisionObject, 0, &ar.CollisionObject, 0)
	if c == nil {
		t.Fatal("no area pair")
	}

	// a latched pair reports nothing more however often it is processed
	for range 3 {
		if c.setup(1.0 / 60) {
			t.Error("latched pair asked for processing again")
		}
		c.preSolve(1.0 / 60)
	}
	srv.FlushQueries()
	if len(events) != 1 || events[0].Event != AreaEventAdded || events[0].Object != b.handle {
		t.Fatalf("got [%v] want one added event for %v", events, b.handle)
	}

	events = nil
	must(t, srv.BodySetTransform(b.handle, NewTransformTranslate(vec2(500, 0))))
	if !c.setup(1.0 / 60) {
		t.Error("leaving pair did not ask for processing")
	}
	c.preSolve(1.0 / 60)
	for range 3 {
		if c.setup(1.0 / 60) {
			t.Error("unlatched pair asked for processing again")
		}
		c.preSolve(1.0 / 60)
	}
	srv.Step(1.0 / 60)
	srv.FlushQueries()
	if len(events) != 1 || events[0].Event != AreaEventRemoved {
		t.Fatalf("got [%v] want one removed event", events)
	}
	if sp.Pair(&b.CollisionObject, 0, &ar.CollisionObject, 0) != nil {
		t.Error("pair survived separation")
	}
}

func TestConstraintAreaEnterExitCancel(t *testing.T) {
	srv, sp := newTestServer(t)
	var events []AreaMonitorEvent
	area := srv.AreaCreate()
	must(t, srv.AreaAddShape(area, testShape(t, srv, CircleData{Radius: 10}), NewTransformIdentity(), false))
	must(t, srv.AreaSetMonitorCallback(area, func(ev AreaMonitorEvent) { events = append(events, ev) }))
	must(t, srv.AreaSetSpace(area, sp.handle))

	testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 2}, vec2(3, 0))
	srv.Step(1.0 / 60)
	must(t, srv.Free(area))
	if len(events) != 0 {
		t.Errorf("got [%v] want an enter and exit in one tick to cancel", events)
	}
}
