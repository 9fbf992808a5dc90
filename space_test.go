package space2d

import (
	"io"
	"log"
	"testing"

	"github.com/setanarut/vec"
)

func vec2(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

// newTestServer returns a server with one active space without gravity.
func newTestServer(t *testing.T) (*Server, *Space) {
	t.Helper()
	settings := DefaultSettings()
	settings.Logger = log.New(io.Discard, "", 0)
	settings.Workers = 2
	settings.Debug = true
	srv := NewServer(settings)
	h := srv.SpaceCreate()
	if err := srv.SpaceSetActive(h, true); err != nil {
		t.Fatal(err)
	}
	if err := srv.AreaSetParam(h, AreaParamGravity, 0.0); err != nil {
		t.Fatal(err)
	}
	return srv, srv.SpaceGet(h)
}

func testShape(t *testing.T, srv *Server, data ShapeData) Handle {
	t.Helper()
	h := srv.ShapeCreate(data.ShapeType())
	if err := srv.ShapeSetData(h, data); err != nil {
		t.Fatal(err)
	}
	return h
}

func testBody(t *testing.T, srv *Server, sp *Space, mode BodyMode, shape ShapeData, pos vec.Vec2) *Body {
	t.Helper()
	h := srv.BodyCreate()
	must(t, srv.BodySetMode(h, mode))
	must(t, srv.BodyAddShape(h, testShape(t, srv, shape), NewTransformIdentity(), false))
	must(t, srv.BodySetTransform(h, NewTransformTranslate(pos)))
	must(t, srv.BodySetSpace(h, sp.handle))
	return srv.BodyGet(h)
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestSpacePairTableKinds(t *testing.T) {
	srv, sp := newTestServer(t)
	circle := CircleData{Radius: 5}
	a := testBody(t, srv, sp, BodyModeRigid, circle, vec2(0, 0))
	b := testBody(t, srv, sp, BodyModeRigid, circle, vec2(8, 0))
	floor := testBody(t, srv, sp, BodyModeStatic, RectangleData{HalfExtents: vec2(50, 5)}, vec2(0, 10))

	area := srv.AreaCreate()
	must(t, srv.AreaAddShape(area, testShape(t, srv, circle), NewTransformIdentity(), false))
	must(t, srv.AreaSetSpace(area, sp.handle))
	ar := srv.AreaGet(area)

	srv.Step(1.0 / 60)

	tests := []struct {
		name string
		x, y *CollisionObject
		want ConstraintKind
	}{
		{"body-body", &a.CollisionObject, &b.CollisionObject, ConstraintBodyPair},
		{"body-static", &floor.CollisionObject, &a.CollisionObject, ConstraintBodyPair},
		{"area-body", &a.CollisionObject, &ar.CollisionObject, ConstraintAreaPair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sp.Pair(tt.x, 0, tt.y, 0)
			if c == nil {
				t.Fatal("no pair")
			}
			if c != sp.Pair(tt.y, 0, tt.x, 0) {
				t.Error("pair lookup depends on argument order")
			}
			if got := c.Kind(); got != tt.want {
				t.Errorf("got [%v] want [%v]", got, tt.want)
			}
		})
	}
	if c := sp.Pair(&floor.CollisionObject, 0, &ar.CollisionObject, 0); c != nil {
		t.Errorf("static body and non monitoring area paired: %v", c.Kind())
	}
	if got, want := srv.GetProcessInfo(ProcessInfoCollisionPairs), sp.Pairs(); got != want {
		t.Errorf("got [%v] want [%v]", got, want)
	}
}

func TestSpaceLeavingEndsPairs(t *testing.T) {
	srv, sp := newTestServer(t)
	circle := CircleData{Radius: 5}
	a := testBody(t, srv, sp, BodyModeRigid, circle, vec2(0, 0))
	b := testBody(t, srv, sp, BodyModeRigid, circle, vec2(8, 0))
	srv.Step(1.0 / 60)
	c := sp.Pair(&a.CollisionObject, 0, &b.CollisionObject, 0)
	if c == nil {
		t.Fatal("no pair")
	}

	must(t, srv.BodySetSpace(b.handle, 0))
	if sp.Pairs() != 0 {
		t.Errorf("got [%v] pairs want [0]", sp.Pairs())
	}
	if len(a.Constraints()) != 0 || len(b.Constraints()) != 0 {
		t.Error("constraint still attached after its pair ended")
	}
}

func TestSpaceOwnsItsWorldBody(t *testing.T) {
	srv, sp := newTestServer(t)
	other := srv.SpaceGet(srv.SpaceCreate())
	if sp.worldBody == nil || sp.worldBody == other.worldBody {
		t.Fatal("spaces share a world body")
	}

	b := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 2}, vec2(10, 0))
	j := srv.JointCreate()
	must(t, srv.JointMakePin(j, vec2(0, 0), b.handle, 0))
	c := srv.JointGet(j).Constraint()
	if _, wb := jointBodies(c); wb != sp.worldBody {
		t.Errorf("got [%v] want the world body of the joint space", wb)
	}
	must(t, srv.BodySetLinearVelocity(b.handle, vec2(0, 50)))
	for range 30 {
		srv.Step(1.0 / 60)
	}
	if d := srv.BodyGetTransform(b.handle).Origin().Mag(); d < 9 || d > 11 {
		t.Errorf("got distance [%v] want [10]", d)
	}
	if sp.worldBody.linearVelocity != (vec.Vec2{}) || sp.worldBody.transform.Origin() != (vec.Vec2{}) {
		t.Error("world body moved")
	}
}
