package space2d

import (
	"errors"
	"math"
	"testing"

	"github.com/setanarut/vec"
)

func TestBodyContinuousCollision(t *testing.T) {
	tests := []struct {
		name    string
		mode    CCDMode
		tunnels bool
	}{
		{"disabled", CCDModeDisabled, true},
		{"cast ray", CCDModeCastRay, false},
		{"cast shape", CCDModeCastShape, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, sp := newTestServer(t)
			wall := testBody(t, srv, sp, BodyModeStatic, RectangleData{HalfExtents: vec2(0.5, 100)}, vec2(100, 0))
			bullet := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 2}, vec2(0, 0))
			must(t, srv.BodySetContinuousCollisionDetectionMode(bullet.handle, tt.mode))
			must(t, srv.BodySetLinearVelocity(bullet.handle, vec2(12000, 0)))

			srv.Step(1.0 / 60)
			x := srv.BodyGetTransform(bullet.handle).Origin().X
			if tunneled := x > 100.5; tunneled != tt.tunnels {
				t.Errorf("got x [%v] tunneled [%v] want [%v]", x, tunneled, tt.tunnels)
			}
			if tt.tunnels {
				return
			}

			// the swept hit becomes a contact on the next tick
			srv.Step(1.0 / 60)
			c := sp.Pair(&bullet.CollisionObject, 0, &wall.CollisionObject, 0)
			if c == nil {
				t.Fatal("no pair between bullet and wall")
			}
			if !c.IsColliding() || c.bodyPair.count == 0 {
				t.Errorf("got colliding [%v] contacts [%v] want a contact", c.IsColliding(), c.bodyPair.count)
			}
			if vx := srv.BodyGetLinearVelocity(bullet.handle).X; vx > 1e-3 {
				t.Errorf("got velocity into the wall [%v] want [0]", vx)
			}
			if x := srv.BodyGetTransform(bullet.handle).Origin().X; x >= 100 {
				t.Errorf("got x [%v] want the bullet on the near side", x)
			}
		})
	}
}

func TestBodyContactEviction(t *testing.T) {
	b := newBody(nil)
	b.setMaxContactsReported(2)

	b.addContact(Contact{Depth: 1, Collider: 1})
	b.addContact(Contact{Depth: 3, Collider: 2})
	b.addContact(Contact{Depth: 2, Collider: 3})
	if got := colliders(b); got != [2]Handle{3, 2} {
		t.Errorf("got [%v] want [%v]", got, [2]Handle{3, 2})
	}

	// not strictly deeper than the shallowest
	b.addContact(Contact{Depth: 2, Collider: 4})
	if got := colliders(b); got != [2]Handle{3, 2} {
		t.Errorf("got [%v] want [%v]", got, [2]Handle{3, 2})
	}

	// equal depths evict the lower shape index first
	b.setMaxContactsReported(2)
	b.addContact(Contact{Depth: 1, LocalShape: 1, Collider: 1})
	b.addContact(Contact{Depth: 1, LocalShape: 0, Collider: 2})
	b.addContact(Contact{Depth: 5, Collider: 3})
	if got := colliders(b); got != [2]Handle{1, 3} {
		t.Errorf("got [%v] want [%v]", got, [2]Handle{1, 3})
	}
}

func colliders(b *Body) [2]Handle {
	return [2]Handle{b.contacts[0].Collider, b.contacts[1].Collider}
}

func TestBodyReportsContacts(t *testing.T) {
	srv, sp := newTestServer(t)
	floor := testBody(t, srv, sp, BodyModeStatic, RectangleData{HalfExtents: vec2(100, 10)}, vec2(0, 10))
	ball := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 5}, vec2(0, -4))
	must(t, srv.BodySetMaxContactsReported(ball.handle, 4))

	srv.Step(1.0 / 60)
	var state *DirectBodyState
	var err error
	srv.Sync()
	state, err = srv.BodyGetDirectState(ball.handle)
	srv.EndSync()
	if err != nil {
		t.Fatal(err)
	}
	if state.ContactCount() == 0 {
		t.Fatal("no contact reported")
	}
	c, _ := state.Contact(0)
	if c.Collider != floor.handle {
		t.Errorf("got collider [%v] want [%v]", c.Collider, floor.handle)
	}
	if c.Depth <= 0 {
		t.Errorf("got depth [%v] want > 0", c.Depth)
	}
}

func TestBodyModeMass(t *testing.T) {
	srv, sp := newTestServer(t)
	b := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 5}, vec2(0, 0))
	must(t, srv.BodySetParam(b.handle, BodyParamMass, 4))
	if got, want := b.invMass, 0.25; got != want {
		t.Errorf("got [%v] want [%v]", got, want)
	}
	must(t, srv.BodySetMode(b.handle, BodyModeStatic))
	if b.invMass != 0 || b.invInertia != 0 {
		t.Errorf("static body has inverse mass %v and inertia %v", b.invMass, b.invInertia)
	}
	if !b.IsSleeping() {
		t.Error("static body is active")
	}
	must(t, srv.BodySetMode(b.handle, BodyModeRigid))
	if got, want := b.invMass, 0.25; got != want {
		t.Errorf("got [%v] want [%v]", got, want)
	}
	if err := srv.BodySetParam(b.handle, BodyParamMass, 0); err == nil {
		t.Error("zero mass accepted")
	}
}

func TestBodyTestMotion(t *testing.T) {
	srv, sp := newTestServer(t)
	floor := testBody(t, srv, sp, BodyModeStatic, RectangleData{HalfExtents: vec2(100, 10)}, vec2(0, 10))
	mover := testBody(t, srv, sp, BodyModeRigidLinear, CircleData{Radius: 5}, vec2(0, -50))

	t.Run("onto floor", func(t *testing.T) {
		r, collided, err := srv.BodyTestMotion(mover.handle, MotionParameters{
			From:   NewTransformTranslate(vec2(0, -50)),
			Motion: vec2(0, 100),
			Margin: 0.08,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !collided {
			t.Fatal("got no collision want the floor")
		}
		if r.Collider != floor.handle || r.ColliderShape != 0 || r.CollisionLocalShape != 0 {
			t.Errorf("got collider [%v] shape [%v] local [%v] want the floor", r.Collider, r.ColliderShape, r.CollisionLocalShape)
		}
		if math.Abs(r.Travel.Y-45) > 0.05 || math.Abs(r.Travel.X) > 1e-9 {
			t.Errorf("got travel [%v] want [(0,45)]", r.Travel)
		}
		if got := r.Travel.Add(r.Remainder); !closeTo(got, vec2(0, 100), 1e-9) {
			t.Errorf("got travel+remainder [%v] want the motion", got)
		}
		if !closeTo(r.CollisionNormal, vec2(0, -1), 1e-6) || math.Abs(r.CollisionPoint.Y) > 0.2 {
			t.Errorf("got normal [%v] point [%v] want (0,-1) on the floor top", r.CollisionNormal, r.CollisionPoint)
		}
		if r.CollisionSafeFraction > r.CollisionUnsafeFraction || math.Abs(r.CollisionSafeFraction-0.45) > 1e-3 {
			t.Errorf("got fractions [%v %v] want about 0.45", r.CollisionSafeFraction, r.CollisionUnsafeFraction)
		}
		if got := srv.BodyGetTransform(mover.handle).Origin(); got != vec2(0, -50) {
			t.Errorf("got body moved to [%v]", got)
		}
	})

	t.Run("free", func(t *testing.T) {
		r, collided, err := srv.BodyTestMotion(mover.handle, MotionParameters{
			From:   NewTransformTranslate(vec2(0, -50)),
			Motion: vec2(0, -100),
			Margin: 0.08,
		})
		if err != nil || collided {
			t.Fatalf("got [%v %v] want a free motion", collided, err)
		}
		if r.Travel != vec2(0, -100) || r.Remainder != (vec.Vec2{}) {
			t.Errorf("got travel [%v] remainder [%v]", r.Travel, r.Remainder)
		}
	})

	t.Run("excluded", func(t *testing.T) {
		_, collided, _ := srv.BodyTestMotion(mover.handle, MotionParameters{
			From:          NewTransformTranslate(vec2(0, -50)),
			Motion:        vec2(0, 100),
			ExcludeBodies: []Handle{floor.handle},
		})
		if collided {
			t.Error("got a collision with an excluded body")
		}
	})

	pushOut := func(t *testing.T, priority float64) vec.Vec2 {
		t.Helper()
		must(t, srv.BodySetCollisionPriority(floor.handle, priority))
		r, collided, err := srv.BodyTestMotion(mover.handle, MotionParameters{
			From:                NewTransformTranslate(vec2(0, -3)),
			Margin:              0.08,
			RecoveryAsCollision: true,
		})
		if err != nil || !collided {
			t.Fatalf("got [%v %v] want the overlap reported", collided, err)
		}
		return r.Travel
	}
	t.Run("recovery", func(t *testing.T) {
		low := pushOut(t, 1)
		high := pushOut(t, 2)
		if low.Y >= 0 {
			t.Errorf("got travel [%v] want pushed up out of the floor", low)
		}
		if high.Y >= low.Y {
			t.Errorf("got [%v] with priority 2 want further out than [%v]", high, low)
		}
		if got := srv.BodyGetCollisionPriority(floor.handle); got != 2 {
			t.Errorf("got priority [%v] want [2]", got)
		}
	})

	if err := srv.BodySetCollisionPriority(floor.handle, 0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("got [%v] want [%v]", err, ErrInvalidValue)
	}
	loose := srv.BodyCreate()
	if _, _, err := srv.BodyTestMotion(loose, MotionParameters{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("got [%v] want [%v]", err, ErrInvalidState)
	}
}

func TestBodyCapsuleRestsOnConcaveFloor(t *testing.T) {
	srv, sp := newTestServer(t)
	must(t, srv.AreaSetParam(sp.handle, AreaParamGravity, 100.0))
	testBody(t, srv, sp, BodyModeStatic, ConcavePolygonData{Segments: []vec.Vec2{
		vec2(-100, 0), vec2(0, 0),
		vec2(0, 0), vec2(100, 0),
	}}, vec2(0, 0))
	capsule := testBody(t, srv, sp, BodyModeRigidLinear, CapsuleData{Height: 40, Radius: 10}, vec2(50, -60))

	for range 180 {
		srv.Step(1.0 / 60)
	}
	pos := srv.BodyGetTransform(capsule.handle).Origin()
	if math.Abs(pos.Y+20) > 1 {
		t.Errorf("got [%v] want the capsule standing on the floor at y -20", pos)
	}
	if vy := srv.BodyGetLinearVelocity(capsule.handle).Y; math.Abs(vy) > 1 {
		t.Errorf("got vertical velocity [%v] want rest", vy)
	}
}

func TestBodyCollideShape(t *testing.T) {
	srv, sp := newTestServer(t)
	ball := testBody(t, srv, sp, BodyModeRigid, CircleData{Radius: 5}, vec2(0, 0))
	box := testShape(t, srv, RectangleData{HalfExtents: vec2(5, 5)})

	points, err := srv.BodyCollideShape(ball.handle, 0, box, NewTransformTranslate(vec2(8, 0)), vec.Vec2{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 || math.Abs(points[0].X-5) > 1e-9 || math.Abs(points[1].X-3) > 1e-9 {
		t.Errorf("got [%v] want the pair (5,0) (3,0)", points)
	}
	if points, _ := srv.BodyCollideShape(ball.handle, 0, box, NewTransformTranslate(vec2(30, 0)), vec.Vec2{}, 2); points != nil {
		t.Errorf("got [%v] want none", points)
	}
	if _, err := srv.BodyCollideShape(ball.handle, 3, box, NewTransformIdentity(), vec.Vec2{}, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("got [%v] want [%v]", err, ErrIndexOutOfRange)
	}

	a := testShape(t, srv, CircleData{Radius: 5})
	points, err = srv.ShapeCollide(a, NewTransformIdentity(), vec.Vec2{}, a, NewTransformTranslate(vec2(20, 0)), vec2(-20, 0), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 || math.Abs(points[0].X-5) > 1e-9 {
		t.Errorf("got [%v] want the circles meeting at x 5", points)
	}
	if points, _ := srv.ShapeCollide(a, NewTransformIdentity(), vec.Vec2{}, a, NewTransformTranslate(vec2(20, 0)), vec.Vec2{}, 0); points != nil {
		t.Errorf("got [%v] want none without motion", points)
	}
}
