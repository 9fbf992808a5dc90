package space2d

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"time"
)

// SpaceParameter is a solver or sleep parameter of a space.
type SpaceParameter uint8

const (
	SpaceParamContactRecycleRadius SpaceParameter = iota
	SpaceParamContactMaxAllowedPenetration
	SpaceParamContactDefaultBias
	SpaceParamBodyLinearVelocitySleepThreshold
	SpaceParamBodyAngularVelocitySleepThreshold
	SpaceParamBodyTimeToSleep
	SpaceParamConstraintDefaultBias
	SpaceParamSolverIterations
)

// ElapsedTime names a phase of the tick whose duration the space records.
type ElapsedTime uint8

const (
	ElapsedIntegrateForces ElapsedTime = iota
	ElapsedGenerateIslands
	ElapsedSetupConstraints
	ElapsedSolveConstraints
	ElapsedIntegrateVelocities
	elapsedTimeCount
)

var elapsedTimeNames = [elapsedTimeCount]string{
	"integrate_forces", "generate_islands", "setup_constraints", "solve_constraints", "integrate_velocities",
}

func (e ElapsedTime) String() string {
	if e < elapsedTimeCount {
		return elapsedTimeNames[e]
	}
	return fmt.Sprintf("ElapsedTime(%d)", uint8(e))
}

// pairKey is the unordered identity of two sub-shape entries.
type pairKey struct {
	a, b       Handle
	subA, subB int
}

func comparePairEnds(a *CollisionObject, sa int, b *CollisionObject, sb int) int {
	return cmp.Or(
		cmp.Compare(a.kind, b.kind),
		cmp.Compare(a.handle, b.handle),
		cmp.Compare(sa, sb),
	)
}

func makePairKey(a *CollisionObject, sa int, b *CollisionObject, sb int) pairKey {
	if comparePairEnds(a, sa, b, sb) > 0 {
		a, sa, b, sb = b, sb, a, sa
	}
	return pairKey{a: a.handle, b: b.handle, subA: sa, subB: sb}
}

// Space is a simulation world: its objects only ever interact with each
// other. It owns the broad phase, the pairs it creates and the default area.
type Space struct {
	handle Handle

	broadPhase *BroadPhase
	collider   Collider
	workers    int
	logger     *log.Logger
	debug      bool

	active      bool
	locked      bool
	defaultArea *Area
	worldBody   *Body

	objects             []*CollisionObject
	activeList          []*CollisionObject
	pairs               map[pairKey]*Constraint
	pendingShapeUpdates []*CollisionObject
	stateQueryList      []*Body
	monitorQueryList    []*Area

	contactRecycleRadius         float64
	contactMaxAllowedPenetration float64
	contactDefaultBias           float64
	linearSleepThreshold         float64
	angularSleepThreshold        float64
	timeToSleep                  float64
	constraintDefaultBias        float64
	solverIterations             int

	stepCount      uint64
	islands        []*island
	activeObjects  int
	collisionPairs int
	islandCount    int
	elapsed        [elapsedTimeCount]time.Duration
}

func newSpace(settings Settings) *Space {
	sp := &Space{
		broadPhase:                   NewBroadPhase(broadPhaseMargin),
		collider:                     DefaultCollider,
		workers:                      settings.Workers,
		logger:                       settings.Logger,
		debug:                        settings.Debug,
		pairs:                        make(map[pairKey]*Constraint),
		contactRecycleRadius:         settings.ContactRecycleRadius,
		contactMaxAllowedPenetration: settings.ContactMaxAllowedPenetration,
		contactDefaultBias:           settings.ContactDefaultBias,
		linearSleepThreshold:         settings.SleepLinearThreshold,
		angularSleepThreshold:        settings.SleepAngularThreshold,
		timeToSleep:                  settings.TimeBeforeSleep,
		constraintDefaultBias:        settings.ConstraintDefaultBias,
		solverIterations:             settings.SolverIterations,
		worldBody:                    newWorldBody(),
	}
	sp.broadPhase.SetPairCallback(sp.pairCallback)
	sp.broadPhase.SetUnpairCallback(sp.unpairCallback)
	return sp
}

// Handle returns the server handle of the space.
func (sp *Space) Handle() Handle { return sp.handle }

// IsActive reports whether the server steps the space.
func (sp *Space) IsActive() bool { return sp.active }

// IsLocked reports whether the space is inside a tick.
func (sp *Space) IsLocked() bool { return sp.locked }

// DefaultArea returns the area that holds the space-wide gravity and damping.
func (sp *Space) DefaultArea() *Area { return sp.defaultArea }

func (sp *Space) defaultAreaOrNil() *Area {
	if sp == nil {
		return nil
	}
	return sp.defaultArea
}

// BroadPhase returns the index of every shape in the space.
func (sp *Space) BroadPhase() *BroadPhase { return sp.broadPhase }

// Objects returns every object in the space in insertion order.
func (sp *Space) Objects() []*CollisionObject { return sp.objects }

// ActiveObjects returns the awake objects in the order they woke up.
func (sp *Space) ActiveObjects() []*CollisionObject { return sp.activeList }

// Pairs returns the number of live collision pairs.
func (sp *Space) Pairs() int { return len(sp.pairs) }

// Pair returns the constraint between sub-shape sa of a and sb of b, if any.
func (sp *Space) Pair(a *CollisionObject, sa int, b *CollisionObject, sb int) *Constraint {
	return sp.pairs[makePairKey(a, sa, b, sb)]
}

// StepCount returns the number of ticks the space has run.
func (sp *Space) StepCount() uint64 { return sp.stepCount }

// ElapsedTime returns how long the phase took in the last tick.
func (sp *Space) ElapsedTime(e ElapsedTime) time.Duration {
	if e >= elapsedTimeCount {
		return 0
	}
	return sp.elapsed[e]
}

// SetCollider replaces the narrow phase. Nil restores DefaultCollider.
func (sp *Space) SetCollider(c Collider) {
	if c == nil {
		c = DefaultCollider
	}
	sp.collider = c
}

func (sp *Space) setParam(param SpaceParameter, value float64) {
	switch param {
	case SpaceParamContactRecycleRadius:
		sp.contactRecycleRadius = value
	case SpaceParamContactMaxAllowedPenetration:
		sp.contactMaxAllowedPenetration = value
	case SpaceParamContactDefaultBias:
		sp.contactDefaultBias = value
	case SpaceParamBodyLinearVelocitySleepThreshold:
		sp.linearSleepThreshold = value
	case SpaceParamBodyAngularVelocitySleepThreshold:
		sp.angularSleepThreshold = value
	case SpaceParamBodyTimeToSleep:
		sp.timeToSleep = value
	case SpaceParamConstraintDefaultBias:
		sp.constraintDefaultBias = value
	case SpaceParamSolverIterations:
		sp.solverIterations = max(1, int(value))
	}
}

func (sp *Space) param(param SpaceParameter) float64 {
	switch param {
	case SpaceParamContactRecycleRadius:
		return sp.contactRecycleRadius
	case SpaceParamContactMaxAllowedPenetration:
		return sp.contactMaxAllowedPenetration
	case SpaceParamContactDefaultBias:
		return sp.contactDefaultBias
	case SpaceParamBodyLinearVelocitySleepThreshold:
		return sp.linearSleepThreshold
	case SpaceParamBodyAngularVelocitySleepThreshold:
		return sp.angularSleepThreshold
	case SpaceParamBodyTimeToSleep:
		return sp.timeToSleep
	case SpaceParamConstraintDefaultBias:
		return sp.constraintDefaultBias
	case SpaceParamSolverIterations:
		return float64(sp.solverIterations)
	}
	return 0
}

func (sp *Space) addObject(co *CollisionObject) {
	sp.objects = append(sp.objects, co)
}

func (sp *Space) removeObject(co *CollisionObject) {
	if i := slices.Index(sp.objects, co); i >= 0 {
		sp.objects = slices.Delete(sp.objects, i, i+1)
	}
}

func (sp *Space) addActive(co *CollisionObject) {
	if !slices.Contains(sp.activeList, co) {
		sp.activeList = append(sp.activeList, co)
	}
}

func (sp *Space) removeActive(co *CollisionObject) {
	if i := slices.Index(sp.activeList, co); i >= 0 {
		sp.activeList = slices.Delete(sp.activeList, i, i+1)
	}
}

func (sp *Space) addStateQuery(b *Body) {
	if b.inStateQuery {
		return
	}
	b.inStateQuery = true
	sp.stateQueryList = append(sp.stateQueryList, b)
}

func (sp *Space) removeStateQuery(b *Body) {
	if !b.inStateQuery {
		return
	}
	b.inStateQuery = false
	if i := slices.Index(sp.stateQueryList, b); i >= 0 {
		sp.stateQueryList = slices.Delete(sp.stateQueryList, i, i+1)
	}
}

func (sp *Space) removeMonitorQuery(a *Area) {
	if i := slices.Index(sp.monitorQueryList, a); i >= 0 {
		sp.monitorQueryList = slices.Delete(sp.monitorQueryList, i, i+1)
	}
}

func (sp *Space) removePendingShapeUpdate(co *CollisionObject) {
	co.pendingShapeUpdate = false
	if i := slices.Index(sp.pendingShapeUpdates, co); i >= 0 {
		sp.pendingShapeUpdates = slices.Delete(sp.pendingShapeUpdates, i, i+1)
	}
}

// flushShapeUpdates hands every changed shape to the broad phase.
func (sp *Space) flushShapeUpdates() {
	for len(sp.pendingShapeUpdates) > 0 {
		pending := sp.pendingShapeUpdates
		sp.pendingShapeUpdates = nil
		for _, co := range pending {
			co.pendingShapeUpdate = false
			co.updateShapes()
		}
	}
}

// pairCallback creates the constraint matching the kinds of the two entries.
// Areas come first, then bodies, then soft bodies.
func (sp *Space) pairCallback(a *CollisionObject, sa int, b *CollisionObject, sb int) {
	if a == b {
		return
	}
	if a.kind > b.kind {
		a, sa, b, sb = b, sb, a, sa
	}
	if !a.interactsWith(b) {
		return
	}
	key := makePairKey(a, sa, b, sb)
	if _, ok := sp.pairs[key]; ok {
		return
	}

	var c *Constraint
	switch {
	case a.area != nil && b.area != nil:
		c = newArea2Pair(sp, a.area, sa, b.area, sb)
	case a.area != nil && b.body != nil:
		c = newAreaPair(sp, b.body, sb, a.area, sa)
	case a.body != nil && b.body != nil:
		c = newBodyPair(sp, a.body, sa, b.body, sb)
	case a.body != nil && b.soft != nil:
		c = newSoftBodyPair(sp, a.body, sa, b.soft)
	default:
		return
	}
	sp.pairs[key] = c
}

func (sp *Space) unpairCallback(a *CollisionObject, sa int, b *CollisionObject, sb int) {
	key := makePairKey(a, sa, b, sb)
	c, ok := sp.pairs[key]
	if !ok {
		return
	}
	delete(sp.pairs, key)
	c.destroy()
}

// destroyPair ends a pair before the broad phase separates its entries.
func (sp *Space) destroyPair(c *Constraint) {
	key := makePairKey(c.objects[0], c.shapes[0], c.objects[1], c.shapes[1])
	if sp.pairs[key] == c {
		delete(sp.pairs, key)
	}
	c.destroy()
}

// invariantf reports a broken internal invariant. Debug spaces panic.
func (sp *Space) invariantf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if sp.debug {
		sp.logger.Panicln("internal error:", msg)
	}
	sp.logger.Printf("internal error: %s", msg)
}

// callQueries runs the body callbacks and delivers the area monitor events
// gathered since the last call. State queries go first.
func (sp *Space) callQueries() {
	for len(sp.stateQueryList) > 0 {
		b := sp.stateQueryList[0]
		sp.stateQueryList = sp.stateQueryList[1:]
		b.inStateQuery = false
		if b.space == sp {
			b.callQueries()
		}
	}
	for len(sp.monitorQueryList) > 0 {
		a := sp.monitorQueryList[0]
		sp.monitorQueryList = sp.monitorQueryList[1:]
		a.callQueries()
	}
}
