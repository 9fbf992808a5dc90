package space2d

import (
	"fmt"
	"log"
	"slices"
)

// ProcessInfo names a statistic summed over the active spaces of the last Step.
type ProcessInfo uint8

const (
	ProcessInfoActiveObjects ProcessInfo = iota
	ProcessInfoCollisionPairs
	ProcessInfoIslandCount
)

// Server owns every shape, space, body, area, joint and soft body and hands
// out handles to them. It is not safe for concurrent use: Step spreads the
// solver over Settings.Workers goroutines internally and returns when done.
type Server struct {
	settings Settings
	logger   *log.Logger

	shapes     *handleTable[Shape]
	spaces     *handleTable[Space]
	bodies     *handleTable[Body]
	areas      *handleTable[Area]
	joints     *handleTable[Joint]
	softBodies *handleTable[SoftBody]

	active       bool
	flushing     bool
	doingSync    bool
	activeSpaces []*Space

	activeObjects  int
	collisionPairs int
	islandCount    int
}

// NewServer returns a server using settings. Zero fields that have no
// sensible zero value take their DefaultSettings value.
func NewServer(settings Settings) *Server {
	settings = settings.withDefaults()
	return &Server{
		settings:   settings,
		logger:     settings.Logger,
		shapes:     newHandleTable[Shape](HandleShape),
		spaces:     newHandleTable[Space](HandleSpace),
		bodies:     newHandleTable[Body](HandleBody),
		areas:      newHandleTable[Area](HandleArea),
		joints:     newHandleTable[Joint](HandleJoint),
		softBodies: newHandleTable[SoftBody](HandleSoftBody),
		active:     true,
	}
}

// Settings returns the settings the server was created with.
func (s *Server) Settings() Settings { return s.settings }

// fail logs err with the operation name and returns it wrapped.
func (s *Server) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	s.logger.Print(err)
	return err
}

func lookup[T any](s *Server, t *handleTable[T], op string, h Handle) (*T, error) {
	v := t.get(h)
	if v == nil {
		return nil, s.fail(op, fmt.Errorf("%v: %w", h, ErrInvalidHandle))
	}
	return v, nil
}

// checkFlush rejects structural changes to an object in a space while
// queries are flushed.
func (s *Server) checkFlush(op string, co *CollisionObject) error {
	if s.flushing && co.space != nil {
		return s.fail(op, fmt.Errorf("%v: %w", co.handle, ErrFlushingQueries))
	}
	return nil
}

// optionalSpace resolves a space handle where the zero handle means no space.
func (s *Server) optionalSpace(op string, h Handle) (*Space, error) {
	if h == 0 {
		return nil, nil
	}
	return lookup(s, s.spaces, op, h)
}

// Init starts the server. NewServer returns a started server, so Init is
// only needed after Finish.
func (s *Server) Init() {
	s.active = true
	s.flushing = false
	s.doingSync = false
}

// Finish stops the server. Objects stay allocated until freed.
func (s *Server) Finish() {
	s.active = false
}

// SetActive pauses or resumes Step and FlushQueries.
func (s *Server) SetActive(active bool) {
	s.active = active
}

// IsFlushingQueries reports whether callbacks are being delivered.
func (s *Server) IsFlushingQueries() bool { return s.flushing }

// Step advances every active space by dt, in the order they were activated.
func (s *Server) Step(dt float64) {
	if !s.active {
		return
	}
	s.activeObjects = 0
	s.collisionPairs = 0
	s.islandCount = 0
	for _, sp := range s.activeSpaces {
		sp.step(dt)
		s.activeObjects += sp.activeObjects
		s.collisionPairs += sp.collisionPairs
		s.islandCount += sp.islandCount
	}
}

// Sync opens the window in which direct states may be used.
func (s *Server) Sync() {
	s.doingSync = true
}

// FlushQueries runs the force integration and state sync callbacks and
// delivers area monitor events for every active space. Structural changes
// are rejected with ErrFlushingQueries until it returns.
func (s *Server) FlushQueries() {
	if !s.active {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()
	for _, sp := range slices.Clone(s.activeSpaces) {
		sp.callQueries()
	}
}

// EndSync closes the window opened by Sync.
func (s *Server) EndSync() {
	s.doingSync = false
}

// GetProcessInfo returns a statistic of the last Step.
func (s *Server) GetProcessInfo(info ProcessInfo) int {
	switch info {
	case ProcessInfoActiveObjects:
		return s.activeObjects
	case ProcessInfoCollisionPairs:
		return s.collisionPairs
	case ProcessInfoIslandCount:
		return s.islandCount
	}
	return 0
}

// deliverArea runs the monitor events still pending on an area that left
// its space. They would otherwise be lost with the space's monitor list.
func (s *Server) deliverArea(a *Area) {
	prev := s.flushing
	s.flushing = true
	defer func() { s.flushing = prev }()
	a.callQueries()
}

// freeArea takes a out of its space, delivers its exit events and releases it.
func (s *Server) freeArea(a *Area) {
	a.setSpace(nil)
	s.deliverArea(a)
	a.clearShapes()
	s.areas.free(a.handle)
}

// Free releases the object behind h along with what it owns: a shape leaves
// every object using it, a body loses its joints, an area delivers the exit
// events caused by leaving its space, and a space frees its default area
// after taking every object out.
func (s *Server) Free(h Handle) error {
	const op = "free"
	switch h.Kind() {
	case HandleShape:
		shape, err := lookup(s, s.shapes, op, h)
		if err != nil {
			return err
		}
		owners := shape.sortedOwners()
		for _, o := range owners {
			if err := s.checkFlush(op, o); err != nil {
				return err
			}
		}
		for _, o := range owners {
			o.removeShape(shape)
		}
		s.shapes.free(h)

	case HandleBody:
		b, err := lookup(s, s.bodies, op, h)
		if err != nil {
			return err
		}
		if err := s.checkFlush(op, &b.CollisionObject); err != nil {
			return err
		}
		b.clearJoints()
		b.setSpace(nil)
		b.clearShapes()
		s.bodies.free(h)

	case HandleArea:
		a, err := lookup(s, s.areas, op, h)
		if err != nil {
			return err
		}
		if a.defaultOf != nil {
			return s.fail(op, fmt.Errorf("%v is the default area of %v: %w", h, a.defaultOf.handle, ErrInvalidState))
		}
		if err := s.checkFlush(op, &a.CollisionObject); err != nil {
			return err
		}
		s.freeArea(a)

	case HandleSoftBody:
		sb, err := lookup(s, s.softBodies, op, h)
		if err != nil {
			return err
		}
		if err := s.checkFlush(op, &sb.CollisionObject); err != nil {
			return err
		}
		sb.setSpace(nil)
		s.softBodies.free(h)

	case HandleSpace:
		sp, err := lookup(s, s.spaces, op, h)
		if err != nil {
			return err
		}
		if s.flushing {
			return s.fail(op, fmt.Errorf("%v: %w", h, ErrFlushingQueries))
		}
		for _, co := range slices.Clone(sp.objects) {
			switch {
			case co.body != nil:
				co.body.setSpace(nil)
			case co.area != nil:
				co.area.setSpace(nil)
				s.deliverArea(co.area)
			case co.soft != nil:
				co.soft.setSpace(nil)
			}
		}
		s.setSpaceActive(sp, false)
		if def := sp.defaultArea; def != nil {
			sp.defaultArea = nil
			def.defaultOf = nil
			s.freeArea(def)
		}
		s.spaces.free(h)

	case HandleJoint:
		j, err := lookup(s, s.joints, op, h)
		if err != nil {
			return err
		}
		j.clear()
		s.joints.free(h)

	default:
		return s.fail(op, fmt.Errorf("%v: %w", h, ErrInvalidHandle))
	}
	return nil
}
