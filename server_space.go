package space2d

import (
	"fmt"
	"slices"
	"time"
)

// SpaceCreate makes an inactive space with its default area. The default
// area has priority -1 and takes gravity and damping from the settings.
func (s *Server) SpaceCreate() Handle {
	sp := newSpace(s.settings)
	sp.handle = s.spaces.make(sp)

	a := newArea(s.logger)
	a.handle = s.areas.make(a)
	a.gravity = s.settings.Gravity
	a.gravityVector = s.settings.GravityVector
	a.linearDamp = s.settings.LinearDamp
	a.angularDamp = s.settings.AngularDamp
	sp.defaultArea = a
	a.defaultOf = sp
	a.setSpace(sp)
	a.setPriority(-1)
	return sp.handle
}

func (s *Server) setSpaceActive(sp *Space, active bool) {
	sp.active = active
	i := slices.Index(s.activeSpaces, sp)
	switch {
	case active && i < 0:
		s.activeSpaces = append(s.activeSpaces, sp)
	case !active && i >= 0:
		s.activeSpaces = slices.Delete(s.activeSpaces, i, i+1)
	}
}

// SpaceSetActive adds the space to or removes it from the spaces Step advances.
func (s *Server) SpaceSetActive(space Handle, active bool) error {
	sp, err := lookup(s, s.spaces, "space_set_active", space)
	if err != nil {
		return err
	}
	s.setSpaceActive(sp, active)
	return nil
}

// SpaceIsActive reports whether Step advances the space.
func (s *Server) SpaceIsActive(space Handle) bool {
	sp, err := lookup(s, s.spaces, "space_is_active", space)
	if err != nil {
		return false
	}
	return sp.active
}

// SpaceSetParam sets a solver or sleep parameter of the space.
func (s *Server) SpaceSetParam(space Handle, param SpaceParameter, value float64) error {
	sp, err := lookup(s, s.spaces, "space_set_param", space)
	if err != nil {
		return err
	}
	sp.setParam(param, value)
	return nil
}

// SpaceGetParam returns a solver or sleep parameter of the space.
func (s *Server) SpaceGetParam(space Handle, param SpaceParameter) float64 {
	sp, err := lookup(s, s.spaces, "space_get_param", space)
	if err != nil {
		return 0
	}
	return sp.param(param)
}

// SpaceGetDefaultArea returns the handle of the space default area.
func (s *Server) SpaceGetDefaultArea(space Handle) Handle {
	sp, err := lookup(s, s.spaces, "space_get_default_area", space)
	if err != nil || sp.defaultArea == nil {
		return 0
	}
	return sp.defaultArea.handle
}

// SpaceSetCollider replaces the narrow phase of the space. Nil restores DefaultCollider.
func (s *Server) SpaceSetCollider(space Handle, c Collider) error {
	sp, err := lookup(s, s.spaces, "space_set_collider", space)
	if err != nil {
		return err
	}
	sp.SetCollider(c)
	return nil
}

// SpaceGetElapsedTime returns how long a phase of the last tick took.
func (s *Server) SpaceGetElapsedTime(space Handle, e ElapsedTime) time.Duration {
	sp, err := lookup(s, s.spaces, "space_get_elapsed_time", space)
	if err != nil {
		return 0
	}
	return sp.ElapsedTime(e)
}

// SpaceGetDirectState returns the query interface of the space. It fails
// with ErrSpaceLocked while the space is stepping.
func (s *Server) SpaceGetDirectState(space Handle) (*DirectSpaceState, error) {
	const op = "space_get_direct_state"
	sp, err := lookup(s, s.spaces, op, space)
	if err != nil {
		return nil, err
	}
	if sp.locked {
		return nil, s.fail(op, fmt.Errorf("%v: %w", space, ErrSpaceLocked))
	}
	return &DirectSpaceState{space: sp, srv: s}, nil
}

// SpaceGet returns the space behind a handle, nil if the handle is invalid.
func (s *Server) SpaceGet(space Handle) *Space {
	return s.spaces.get(space)
}
