package space2d

import (
	"log"
	"maps"
	"slices"

	"github.com/setanarut/vec"
)

// AreaOverrideMode tells how an area gravity or damping combines with the
// areas under it and the space default.
type AreaOverrideMode uint8

const (
	AreaOverrideDisabled AreaOverrideMode = iota
	// AreaOverrideCombine adds to what lower priority areas give.
	AreaOverrideCombine
	// AreaOverrideCombineReplace adds, then ignores lower priority areas.
	AreaOverrideCombineReplace
	// AreaOverrideReplace replaces and ignores lower priority areas.
	AreaOverrideReplace
	// AreaOverrideReplaceCombine replaces what higher priority areas gave and keeps going.
	AreaOverrideReplaceCombine
)

// AreaParameter names an area parameter.
type AreaParameter uint8

const (
	AreaParamGravityOverrideMode AreaParameter = iota
	AreaParamGravity
	AreaParamGravityVector
	AreaParamGravityIsPoint
	AreaParamGravityPointUnitDistance
	AreaParamLinearDampOverrideMode
	AreaParamLinearDamp
	AreaParamAngularDampOverrideMode
	AreaParamAngularDamp
	AreaParamPriority
)

// AreaEvent is the kind of a monitor notification.
type AreaEvent uint8

const (
	AreaEventAdded AreaEvent = iota
	AreaEventRemoved
)

func (e AreaEvent) String() string {
	if e == AreaEventAdded {
		return "added"
	}
	return "removed"
}

// AreaMonitorEvent is delivered to monitor callbacks while queries are flushed.
type AreaMonitorEvent struct {
	Event      AreaEvent
	Object     Handle
	InstanceID uint64
	// ObjectShape is the shape index on the entering or leaving object.
	ObjectShape int
	// AreaShape is the shape index on the monitoring area.
	AreaShape int
}

// AreaMonitorFunc receives enter and exit notifications.
type AreaMonitorFunc func(AreaMonitorEvent)

type monitorKey struct {
	handle      Handle
	instanceID  uint64
	objectShape int
	areaShape   int
}

func compareMonitorKeys(a, b monitorKey) int {
	switch {
	case a.handle != b.handle:
		if a.handle < b.handle {
			return -1
		}
		return 1
	case a.objectShape != b.objectShape:
		return a.objectShape - b.objectShape
	}
	return a.areaShape - b.areaShape
}

// Area is a collision object that never collides. It overrides gravity and
// damping of the bodies inside it and reports objects entering and leaving.
type Area struct {
	CollisionObject

	gravityOverrideMode     AreaOverrideMode
	linearDampOverrideMode  AreaOverrideMode
	angularDampOverrideMode AreaOverrideMode

	gravity                  float64
	gravityVector            vec.Vec2
	gravityIsPoint           bool
	gravityPointUnitDistance float64
	linearDamp               float64
	angularDamp              float64
	priority                 int

	// defaultOf is the space this area is the default area of.
	defaultOf *Space

	monitorable         bool
	monitorCallback     AreaMonitorFunc
	areaMonitorCallback AreaMonitorFunc

	monitoredBodies map[monitorKey]int
	monitoredAreas  map[monitorKey]int
	monitorQueued   bool

	logger *log.Logger
}

func newArea(logger *log.Logger) *Area {
	a := &Area{
		gravity:         980,
		gravityVector:   vec.Vec2{X: 0, Y: 1},
		linearDamp:      0.1,
		angularDamp:     1,
		monitoredBodies: make(map[monitorKey]int),
		monitoredAreas:  make(map[monitorKey]int),
		logger:          logger,
	}
	a.init(ObjectArea)
	a.area = a
	a.static = true
	return a
}

// Priority returns the order the area is applied in. Higher goes first.
func (a *Area) Priority() int { return a.priority }

func (a *Area) hasAnySpaceOverride() bool {
	return a.gravityOverrideMode != AreaOverrideDisabled ||
		a.linearDampOverrideMode != AreaOverrideDisabled ||
		a.angularDampOverrideMode != AreaOverrideDisabled
}

func (a *Area) hasMonitorCallback() bool { return a.monitorCallback != nil }

func (a *Area) hasAreaMonitorCallback() bool { return a.areaMonitorCallback != nil }

// computeGravity returns the gravity the area applies at p.
func (a *Area) computeGravity(p vec.Vec2) vec.Vec2 {
	if !a.gravityIsPoint {
		return a.gravityVector.Scale(a.gravity)
	}
	v := a.transform.Apply(a.gravityVector).Sub(p)
	if a.gravityPointUnitDistance > 0 {
		lsq := v.LengthSq()
		if lsq == 0 {
			return vec.Vec2{}
		}
		strength := a.gravity * a.gravityPointUnitDistance * a.gravityPointUnitDistance / lsq
		return v.Unit().Scale(strength)
	}
	if v.LengthSq() == 0 {
		return vec.Vec2{}
	}
	return v.Unit().Scale(a.gravity)
}

func (a *Area) setParam(param AreaParameter, value any) bool {
	switch param {
	case AreaParamGravityOverrideMode:
		m, ok := value.(AreaOverrideMode)
		if !ok {
			return false
		}
		a.gravityOverrideMode = m
	case AreaParamLinearDampOverrideMode:
		m, ok := value.(AreaOverrideMode)
		if !ok {
			return false
		}
		a.linearDampOverrideMode = m
	case AreaParamAngularDampOverrideMode:
		m, ok := value.(AreaOverrideMode)
		if !ok {
			return false
		}
		a.angularDampOverrideMode = m
	case AreaParamGravityVector:
		v, ok := value.(vec.Vec2)
		if !ok {
			return false
		}
		a.gravityVector = v
	case AreaParamGravityIsPoint:
		v, ok := value.(bool)
		if !ok {
			return false
		}
		a.gravityIsPoint = v
	case AreaParamPriority:
		v, ok := value.(int)
		if !ok {
			return false
		}
		a.setPriority(v)
	default:
		v, ok := value.(float64)
		if !ok {
			return false
		}
		switch param {
		case AreaParamGravity:
			a.gravity = v
		case AreaParamGravityPointUnitDistance:
			a.gravityPointUnitDistance = v
		case AreaParamLinearDamp:
			a.linearDamp = v
		case AreaParamAngularDamp:
			a.angularDamp = v
		default:
			return false
		}
	}
	return true
}

func (a *Area) param(param AreaParameter) any {
	switch param {
	case AreaParamGravityOverrideMode:
		return a.gravityOverrideMode
	case AreaParamGravity:
		return a.gravity
	case AreaParamGravityVector:
		return a.gravityVector
	case AreaParamGravityIsPoint:
		return a.gravityIsPoint
	case AreaParamGravityPointUnitDistance:
		return a.gravityPointUnitDistance
	case AreaParamLinearDampOverrideMode:
		return a.linearDampOverrideMode
	case AreaParamLinearDamp:
		return a.linearDamp
	case AreaParamAngularDampOverrideMode:
		return a.angularDampOverrideMode
	case AreaParamAngularDamp:
		return a.angularDamp
	case AreaParamPriority:
		return a.priority
	}
	return nil
}

func (a *Area) setPriority(priority int) {
	a.priority = priority
	for _, c := range a.constraints {
		for _, o := range c.objects {
			if o != nil && o.body != nil {
				o.body.resortAreas()
			}
		}
	}
}

// updateStatic keeps areas that watch nothing and are not watched in the
// static group, so they only pair with moving objects.
func (a *Area) updateStatic() {
	a.setStatic(a.monitorCallback == nil && a.areaMonitorCallback == nil && !a.monitorable)
}

func (a *Area) setMonitorable(monitorable bool) {
	if a.monitorable == monitorable {
		return
	}
	a.monitorable = monitorable
	a.updateStatic()
}

// setMonitorCallback replaces the body monitor. Current overlaps are
// reported again to the new callback.
func (a *Area) setMonitorCallback(f AreaMonitorFunc) {
	a.unregisterShapes()
	a.monitorCallback = f
	clear(a.monitoredBodies)
	clear(a.monitoredAreas)
	a.queueShapeUpdate()
	a.updateStatic()
}

func (a *Area) setAreaMonitorCallback(f AreaMonitorFunc) {
	a.unregisterShapes()
	a.areaMonitorCallback = f
	clear(a.monitoredBodies)
	clear(a.monitoredAreas)
	a.queueShapeUpdate()
	a.updateStatic()
}

func (a *Area) queueMonitorUpdate() {
	if a.space != nil && !a.monitorQueued {
		a.monitorQueued = true
		a.space.monitorQueryList = append(a.space.monitorQueryList, a)
	}
}

func monitorKeyFor(o *CollisionObject, objectShape, areaShape int) monitorKey {
	return monitorKey{handle: o.handle, instanceID: o.instanceID, objectShape: objectShape, areaShape: areaShape}
}

func (a *Area) addBodyToQuery(o *CollisionObject, objectShape, areaShape int) {
	a.monitoredBodies[monitorKeyFor(o, objectShape, areaShape)]++
	a.queueMonitorUpdate()
}

func (a *Area) removeBodyFromQuery(o *CollisionObject, objectShape, areaShape int) {
	a.monitoredBodies[monitorKeyFor(o, objectShape, areaShape)]--
	a.queueMonitorUpdate()
}

func (a *Area) addAreaToQuery(o *CollisionObject, objectShape, areaShape int) {
	a.monitoredAreas[monitorKeyFor(o, objectShape, areaShape)]++
	a.queueMonitorUpdate()
}

func (a *Area) removeAreaFromQuery(o *CollisionObject, objectShape, areaShape int) {
	a.monitoredAreas[monitorKeyFor(o, objectShape, areaShape)]--
	a.queueMonitorUpdate()
}

// callQueries delivers the net enter and exit events gathered since the
// last call, in handle order. An enter and an exit of the same pair within
// one tick cancel out.
func (a *Area) callQueries() {
	a.monitorQueued = false
	deliver := func(monitored map[monitorKey]int, f AreaMonitorFunc) {
		if len(monitored) == 0 {
			return
		}
		keys := slices.SortedFunc(maps.Keys(monitored), compareMonitorKeys)
		counts := maps.Clone(monitored)
		clear(monitored)
		if f == nil {
			return
		}
		for _, k := range keys {
			state := counts[k]
			if state == 0 {
				continue
			}
			ev := AreaMonitorEvent{
				Event:       AreaEventAdded,
				Object:      k.handle,
				InstanceID:  k.instanceID,
				ObjectShape: k.objectShape,
				AreaShape:   k.areaShape,
			}
			if state < 0 {
				ev.Event = AreaEventRemoved
			}
			f(ev)
		}
	}
	deliver(a.monitoredBodies, a.monitorCallback)
	deliver(a.monitoredAreas, a.areaMonitorCallback)
}

// setSpace moves the area. Overlaps ended by leaving the old space stay
// pending on the area and the caller delivers them with callQueries.
func (a *Area) setSpace(space *Space) {
	if a.space == space {
		return
	}
	old := a.space
	a.clearConstraints()
	if old != nil {
		old.removeMonitorQuery(a)
		a.monitorQueued = false
	}
	a.CollisionObject.setSpace(space)
}
