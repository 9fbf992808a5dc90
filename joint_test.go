package space2d_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/setanarut/space2d"
	"github.com/setanarut/vec"
)

func TestJointPinToWorld(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	w.ok(srv.AreaSetParam(w.space, space2d.AreaParamGravity, 100.0))
	b := w.body(2, vec.Vec2{X: 50})

	j := srv.JointCreate()
	if got := srv.JointGetType(j); got != space2d.JointTypeNone {
		t.Fatalf("got [%v] want [%v]", got, space2d.JointTypeNone)
	}
	w.ok(srv.JointMakePin(j, vec.Vec2{}, b, 0))
	if got := srv.JointGetType(j); got != space2d.JointTypePin {
		t.Fatalf("got [%v] want [%v]", got, space2d.JointTypePin)
	}

	for range 120 {
		w.tick()
	}
	pos := srv.BodyGetTransform(b).Origin()
	if d := pos.Mag(); math.Abs(d-50) > 1 {
		t.Errorf("got distance [%v] want [50]", d)
	}
	if pos.Y <= 0 {
		t.Errorf("got [%v] want the body to swing down", pos)
	}
}

func TestJointTypedParams(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	a := w.body(2, vec.Vec2{})
	b := w.body(2, vec.Vec2{X: 30})
	j := srv.JointCreate()

	if err := srv.JointMakeDampedSpring(j, vec.Vec2{}, vec.Vec2{X: 30}, a, a); !errors.Is(err, space2d.ErrInvalidState) {
		t.Errorf("got [%v] want [%v]", err, space2d.ErrInvalidState)
	}
	w.ok(srv.JointMakeDampedSpring(j, vec.Vec2{}, vec.Vec2{X: 30}, a, b))
	if got := srv.DampedSpringGetParam(j, space2d.DampedSpringRestLength); got != 30 {
		t.Errorf("got rest length [%v] want [30]", got)
	}
	w.ok(srv.DampedSpringSetParam(j, space2d.DampedSpringRestLength, 10))
	if got := srv.DampedSpringGetParam(j, space2d.DampedSpringRestLength); got != 10 {
		t.Errorf("got rest length [%v] want [10]", got)
	}
	if err := srv.PinJointSetParam(j, space2d.PinJointSoftness, 1); !errors.Is(err, space2d.ErrKindMismatch) {
		t.Errorf("got [%v] want [%v]", err, space2d.ErrKindMismatch)
	}

	w.ok(srv.JointSetParam(j, space2d.JointParamMaxForce, 5))
	if got := srv.JointGetParam(j, space2d.JointParamMaxForce); got != 5 {
		t.Errorf("got max force [%v] want [5]", got)
	}

	for range 60 {
		w.tick()
	}
	pa := srv.BodyGetTransform(a).Origin()
	pb := srv.BodyGetTransform(b).Origin()
	if d := pa.Distance(pb); d >= 30 {
		t.Errorf("got distance [%v] want the spring to pull the bodies together", d)
	}

	w.ok(srv.JointClear(j))
	if got := srv.JointGetType(j); got != space2d.JointTypeNone {
		t.Errorf("got [%v] want [%v]", got, space2d.JointTypeNone)
	}
	if c := srv.BodyGet(a).Constraints(); len(c) != 0 {
		t.Errorf("got [%v] constraints on a cleared joint body", len(c))
	}
}

func TestJointDisablesCollisions(t *testing.T) {
	w := newWorld(t)
	srv := w.srv
	a := w.body(5, vec.Vec2{})
	b := w.body(5, vec.Vec2{X: 8})
	j := srv.JointCreate()
	w.ok(srv.JointDisableCollisionsBetweenBodies(j, true))
	w.ok(srv.JointMakePin(j, vec.Vec2{X: 4}, a, b))

	if !slices.Contains(srv.BodyGetCollisionExceptions(a), b) || !slices.Contains(srv.BodyGetCollisionExceptions(b), a) {
		t.Fatal("joint bodies do not except each other")
	}
	w.tick()
	if got := srv.BodyGetTransform(a).Origin(); got.Mag() > 1e-6 {
		t.Errorf("got [%v] want a untouched by b", got)
	}

	w.ok(srv.JointDisableCollisionsBetweenBodies(j, false))
	if len(srv.BodyGetCollisionExceptions(a)) != 0 || len(srv.BodyGetCollisionExceptions(b)) != 0 {
		t.Error("exceptions survived re-enabling collisions")
	}
	if srv.JointIsDisabledCollisionsBetweenBodies(j) {
		t.Error("joint still disables collisions")
	}

	w.ok(srv.Free(a))
	if got := srv.JointGetType(j); got != space2d.JointTypeNone {
		t.Errorf("got [%v] after freeing a body want [%v]", got, space2d.JointTypeNone)
	}
}

func TestJointPinMotorAndLimit(t *testing.T) {
	t.Run("motor", func(t *testing.T) {
		w := newWorld(t)
		srv := w.srv
		b := w.body(2, vec.Vec2{})
		j := srv.JointCreate()
		w.ok(srv.JointMakePin(j, vec.Vec2{}, b, 0))
		w.ok(srv.PinJointSetFlag(j, space2d.PinJointFlagMotorEnabled, true))
		w.ok(srv.PinJointSetParam(j, space2d.PinJointMotorTargetVelocity, 2))
		if !srv.PinJointGetFlag(j, space2d.PinJointFlagMotorEnabled) {
			t.Fatal("got motor off want on")
		}

		for range 30 {
			w.tick()
		}
		// the world turns at 2 relative to the body, so the body turns at -2
		if got := srv.BodyGetAngularVelocity(b); math.Abs(got+2) > 0.05 {
			t.Errorf("got angular velocity [%v] want [-2]", got)
		}
		if p := srv.BodyGetTransform(b).Origin(); p.Mag() > 0.1 {
			t.Errorf("got [%v] want the body held on the pin", p)
		}
	})

	t.Run("limit", func(t *testing.T) {
		w := newWorld(t)
		srv := w.srv
		b := w.body(2, vec.Vec2{})
		j := srv.JointCreate()
		w.ok(srv.JointMakePin(j, vec.Vec2{}, b, 0))
		w.ok(srv.PinJointSetParam(j, space2d.PinJointLimitLower, -0.5))
		w.ok(srv.PinJointSetParam(j, space2d.PinJointLimitUpper, 0.5))
		w.ok(srv.PinJointSetFlag(j, space2d.PinJointFlagAngularLimitEnabled, true))
		w.ok(srv.BodySetAngularVelocity(b, 10))

		for range 60 {
			w.tick()
		}
		rot := srv.BodyGetTransform(b).Rotation()
		if math.Abs(rot) > 0.6 || math.Abs(rot) < 0.3 {
			t.Errorf("got rotation [%v] want it stopped near the 0.5 limit", rot)
		}
		if got := srv.PinJointGetParam(j, space2d.PinJointLimitUpper); got != 0.5 {
			t.Errorf("got upper limit [%v] want [0.5]", got)
		}
	})

	w := newWorld(t)
	j := w.srv.JointCreate()
	if err := w.srv.PinJointSetFlag(j, space2d.PinJointFlagMotorEnabled, true); !errors.Is(err, space2d.ErrKindMismatch) {
		t.Errorf("got [%v] want [%v]", err, space2d.ErrKindMismatch)
	}
}
