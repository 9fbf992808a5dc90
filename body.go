package space2d

import (
	"log"
	"math"
	"slices"

	"github.com/setanarut/vec"
)

// BodyMode selects how a body moves.
type BodyMode uint8

const (
	// BodyModeStatic bodies never move on their own and only pair with moving objects.
	BodyModeStatic BodyMode = iota
	// BodyModeKinematic bodies are moved by setting their transform. Their
	// velocity is derived from the motion and they push rigid bodies.
	BodyModeKinematic
	// BodyModeRigid bodies are fully simulated.
	BodyModeRigid
	// BodyModeRigidLinear bodies are simulated with rotation locked (characters).
	BodyModeRigidLinear
)

// BodyParameter names a scalar body parameter.
type BodyParameter uint8

const (
	BodyParamBounce BodyParameter = iota
	BodyParamFriction
	BodyParamMass
	// BodyParamInertia set to zero or less makes the inertia follow the shapes.
	BodyParamInertia
	BodyParamGravityScale
	BodyParamLinearDampMode
	BodyParamAngularDampMode
	BodyParamLinearDamp
	BodyParamAngularDamp
)

// DampMode tells how a body damping combines with the area damping.
type DampMode uint8

const (
	DampModeCombine DampMode = iota
	DampModeReplace
)

// CCDMode selects continuous collision detection for fast bodies.
type CCDMode uint8

const (
	CCDModeDisabled CCDMode = iota
	// CCDModeCastRay sweeps the body center.
	CCDModeCastRay
	// CCDModeCastShape sweeps a circle inscribed in the first shape.
	CCDModeCastShape
)

// Contact is one contact reported to a body with a non zero contact report limit.
// Positions are world space offsets from the body origin.
type Contact struct {
	LocalPosition              vec.Vec2
	LocalNormal                vec.Vec2
	Depth                      float64
	LocalShape                 int
	ColliderPosition           vec.Vec2
	ColliderShape              int
	ColliderInstanceID         uint64
	Collider                   Handle
	ColliderVelocityAtPosition vec.Vec2
	Impulse                    vec.Vec2
}

// less orders contacts for eviction: shallowest first, then by shape indices
// and collider handle.
func (c *Contact) less(o *Contact) bool {
	if c.Depth != o.Depth {
		return c.Depth < o.Depth
	}
	if c.LocalShape != o.LocalShape {
		return c.LocalShape < o.LocalShape
	}
	if c.ColliderShape != o.ColliderShape {
		return c.ColliderShape < o.ColliderShape
	}
	return c.Collider < o.Collider
}

// ForceIntegrationFunc replaces or extends the force integration of a body.
// It runs while queries are flushed, after the tick the body moved in.
type ForceIntegrationFunc func(state *DirectBodyState, userData any)

// StateSyncFunc receives the body state after every tick the body moved in.
type StateSyncFunc func(state *DirectBodyState)

type bodyArea struct {
	area     *Area
	refCount int
}

// ccdHit is a swept contact found while integrating. It becomes a contact of
// the matching body pair on the next tick if the narrow phase misses it.
type ccdHit struct {
	ownShape   int
	other      *CollisionObject
	otherShape int
	point      vec.Vec2
	normal     vec.Vec2 // out of other, towards the body
}

// Body is a collision object that moves: static, kinematic, rigid or rigid-linear.
type Body struct {
	CollisionObject

	mode      BodyMode
	active    bool
	canSleep  bool
	stillTime float64

	mass              float64
	inertia           float64
	calculateInertia  bool
	invMass           float64
	invInertia        float64
	centerOfMassLocal vec.Vec2
	centerOfMass      vec.Vec2
	calculateCOM      bool

	bounce, friction float64
	gravityScale     float64
	linearDamp       float64
	angularDamp      float64
	linearDampMode   DampMode
	angularDampMode  DampMode

	totalGravity     vec.Vec2
	totalLinearDamp  float64
	totalAngularDamp float64

	linearVelocity        vec.Vec2
	angularVelocity       float64
	biasedLinearVelocity  vec.Vec2
	biasedAngularVelocity float64

	appliedForce   vec.Vec2
	appliedTorque  float64
	constantForce  vec.Vec2
	constantTorque float64

	newTransform    Transform
	kinematicPlaced bool

	ccdMode              CCDMode
	ccdHits              []ccdHit
	omitForceIntegration bool

	exceptions []Handle
	areas      []bodyArea

	// collisionPriority scales how hard motion tests push out of this body.
	collisionPriority float64

	maxContactsReported int
	contacts            []Contact
	contactCount        int

	forceIntegration     ForceIntegrationFunc
	forceIntegrationData any
	stateSync            StateSyncFunc
	inStateQuery         bool

	directState *DirectBodyState
	logger      *log.Logger
}

func newBody(logger *log.Logger) *Body {
	b := &Body{
		mode:             BodyModeRigid,
		active:           true,
		canSleep:         true,
		mass:             1,
		calculateInertia: true,
		calculateCOM:     true,
		friction:         1,
		gravityScale:     1,
		logger:           logger,

		collisionPriority: 1,
	}
	b.init(ObjectBody)
	b.body = b
	b.newTransform = b.transform
	b.updateMassProperties()
	return b
}

// Mode returns the motion mode.
func (b *Body) Mode() BodyMode { return b.mode }

// IsSleeping reports whether the body is left out of the simulation until woken.
func (b *Body) IsSleeping() bool { return !b.active }

// LinearVelocity returns the velocity of the body origin.
func (b *Body) LinearVelocity() vec.Vec2 { return b.linearVelocity }

// AngularVelocity returns the angular velocity in radians per second.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

func (b *Body) isDynamic() bool {
	return b.mode >= BodyModeRigid
}

func (b *Body) setMode(mode BodyMode) {
	prev := b.mode
	b.mode = mode
	switch mode {
	case BodyModeStatic, BodyModeKinematic:
		b.setStatic(mode == BodyModeStatic)
		if mode == BodyModeStatic {
			b.linearVelocity = vec.Vec2{}
			b.angularVelocity = 0
		}
		b.newTransform = b.transform
		b.kinematicPlaced = false
		b.setActive(mode == BodyModeKinematic && b.maxContactsReported > 0)
	case BodyModeRigid, BodyModeRigidLinear:
		b.setStatic(false)
		if mode == BodyModeRigidLinear {
			b.angularVelocity = 0
		}
		b.setActive(true)
	}
	b.updateMassProperties()
	if prev >= BodyModeRigid && mode < BodyModeRigid {
		b.wakeupNeighbours()
	}
}

// updateMassProperties splits the mass over the shapes by box area.
func (b *Body) updateMassProperties() {
	switch b.mode {
	case BodyModeStatic, BodyModeKinematic:
		b.invMass = 0
		b.invInertia = 0
	default:
		totalArea := 0.0
		for i := range b.shapes {
			if b.shapes[i].disabled {
				continue
			}
			totalArea += b.shapes[i].shape.aabb(b.shapes[i].xform).Area()
		}

		if b.calculateCOM {
			b.centerOfMassLocal = vec.Vec2{}
			if totalArea > 0 {
				for i := range b.shapes {
					if b.shapes[i].disabled {
						continue
					}
					area := b.shapes[i].shape.aabb(b.shapes[i].xform).Area()
					b.centerOfMassLocal = b.centerOfMassLocal.Add(b.shapes[i].xform.Origin().Scale(area / totalArea))
				}
			}
		}

		if b.calculateInertia {
			b.inertia = 0
			for i := range b.shapes {
				s := &b.shapes[i]
				if s.disabled {
					continue
				}
				area := s.shape.aabb(s.xform).Area()
				if area == 0 || totalArea == 0 {
					continue
				}
				m := area * b.mass / totalArea
				offset := s.xform.Origin().Sub(b.centerOfMassLocal)
				b.inertia += s.shape.momentOfInertia(m) + m*offset.LengthSq()
			}
		}

		b.invMass = 0
		if b.mass > 0 {
			b.invMass = 1 / b.mass
		}
		b.invInertia = 0
		if b.inertia > 0 && b.mode == BodyModeRigid {
			b.invInertia = 1 / b.inertia
		}
	}
	b.updateTransformDependent()
}

func (b *Body) updateTransformDependent() {
	b.centerOfMass = b.transform.ApplyVector(b.centerOfMassLocal)
}

func (b *Body) setParam(param BodyParameter, value float64) {
	switch param {
	case BodyParamBounce:
		b.bounce = value
	case BodyParamFriction:
		b.friction = value
	case BodyParamMass:
		if value <= 0 {
			b.logger.Printf("body %v: mass must be positive, got %v", b.handle, value)
			return
		}
		b.mass = value
		b.updateMassProperties()
	case BodyParamInertia:
		if value <= 0 {
			b.calculateInertia = true
		} else {
			b.calculateInertia = false
			b.inertia = value
		}
		b.updateMassProperties()
	case BodyParamGravityScale:
		b.gravityScale = value
	case BodyParamLinearDampMode:
		b.linearDampMode = DampMode(value)
	case BodyParamAngularDampMode:
		b.angularDampMode = DampMode(value)
	case BodyParamLinearDamp:
		b.linearDamp = value
	case BodyParamAngularDamp:
		b.angularDamp = value
	}
}

func (b *Body) param(param BodyParameter) float64 {
	switch param {
	case BodyParamBounce:
		return b.bounce
	case BodyParamFriction:
		return b.friction
	case BodyParamMass:
		return b.mass
	case BodyParamInertia:
		return b.inertia
	case BodyParamGravityScale:
		return b.gravityScale
	case BodyParamLinearDampMode:
		return float64(b.linearDampMode)
	case BodyParamAngularDampMode:
		return float64(b.angularDampMode)
	case BodyParamLinearDamp:
		return b.linearDamp
	case BodyParamAngularDamp:
		return b.angularDamp
	}
	return 0
}

func (b *Body) setCenterOfMass(local vec.Vec2) {
	b.calculateCOM = false
	b.centerOfMassLocal = local
	b.updateMassProperties()
}

func (b *Body) resetMassProperties() {
	b.calculateCOM = true
	b.calculateInertia = true
	b.updateMassProperties()
}

func (b *Body) setActive(active bool) {
	if b.active == active {
		return
	}
	if active && b.mode == BodyModeStatic {
		return
	}
	b.active = active
	if b.space == nil {
		return
	}
	if active {
		b.space.addActive(&b.CollisionObject)
	} else {
		b.space.removeActive(&b.CollisionObject)
	}
}

func (b *Body) wakeup() {
	if b.space == nil || b.mode < BodyModeRigid {
		return
	}
	b.stillTime = 0
	b.setActive(true)
}

// wakeupNeighbours wakes every sleeping rigid body sharing a constraint.
func (b *Body) wakeupNeighbours() {
	for _, c := range b.constraints {
		for _, o := range c.objects {
			if o == nil || o.body == nil || o.body == b {
				continue
			}
			if o.body.mode >= BodyModeRigid && !o.body.active {
				o.body.wakeup()
			}
		}
	}
}

func (b *Body) setSpace(space *Space) {
	if b.space == space {
		return
	}
	b.clearConstraints()
	if old := b.space; old != nil {
		if b.active {
			old.removeActive(&b.CollisionObject)
		}
		old.removeStateQuery(b)
	}
	b.areas = nil
	b.ccdHits = nil
	b.CollisionObject.setSpace(space)
	if space != nil && b.active {
		space.addActive(&b.CollisionObject)
	}
}

func (b *Body) setTransformState(xf Transform) {
	switch b.mode {
	case BodyModeKinematic:
		b.newTransform = xf
		b.setActive(true)
		if !b.kinematicPlaced {
			b.setTransform(xf, true)
			b.updateTransformDependent()
			b.kinematicPlaced = true
		}
	case BodyModeStatic:
		b.setTransform(xf, true)
		b.updateTransformDependent()
		b.newTransform = xf
		b.wakeupNeighbours()
	default:
		b.setTransform(xf, true)
		b.updateTransformDependent()
		b.newTransform = xf
		b.wakeup()
	}
}

func (b *Body) setLinearVelocity(v vec.Vec2) {
	if b.mode == BodyModeStatic {
		return
	}
	b.linearVelocity = v
	b.wakeup()
}

func (b *Body) setAngularVelocity(w float64) {
	if b.mode == BodyModeStatic || b.mode == BodyModeRigidLinear {
		return
	}
	b.angularVelocity = w
	b.wakeup()
}

func (b *Body) setSleeping(sleeping bool) {
	if b.mode < BodyModeRigid {
		return
	}
	if sleeping {
		b.linearVelocity = vec.Vec2{}
		b.angularVelocity = 0
		b.setActive(false)
	} else {
		b.wakeup()
	}
}

func (b *Body) setCanSleep(canSleep bool) {
	b.canSleep = canSleep
	if b.mode >= BodyModeRigid && !b.active && !canSleep {
		b.wakeup()
	}
}

// velocityAtLocalPoint returns the velocity of the point at world offset rel
// from the body origin.
func (b *Body) velocityAtLocalPoint(rel vec.Vec2) vec.Vec2 {
	r := rel.Sub(b.centerOfMass)
	return b.linearVelocity.Add(r.Perp().Scale(b.angularVelocity))
}

func (b *Body) applyCentralImpulse(j vec.Vec2) {
	b.linearVelocity = b.linearVelocity.Add(j.Scale(b.invMass))
	b.wakeup()
}

func (b *Body) applyImpulse(j, pos vec.Vec2) {
	b.linearVelocity = b.linearVelocity.Add(j.Scale(b.invMass))
	b.angularVelocity += b.invInertia * pos.Sub(b.centerOfMass).Cross(j)
	b.wakeup()
}

func (b *Body) applyTorqueImpulse(t float64) {
	b.angularVelocity += b.invInertia * t
	b.wakeup()
}

func (b *Body) applyCentralForce(f vec.Vec2) {
	b.appliedForce = b.appliedForce.Add(f)
	b.wakeup()
}

func (b *Body) applyForce(f, pos vec.Vec2) {
	b.appliedForce = b.appliedForce.Add(f)
	b.appliedTorque += pos.Sub(b.centerOfMass).Cross(f)
	b.wakeup()
}

func (b *Body) applyTorque(t float64) {
	b.appliedTorque += t
	b.wakeup()
}

func (b *Body) addConstantCentralForce(f vec.Vec2) {
	b.constantForce = b.constantForce.Add(f)
	b.wakeup()
}

func (b *Body) addConstantForce(f, pos vec.Vec2) {
	b.constantForce = b.constantForce.Add(f)
	b.constantTorque += pos.Sub(b.centerOfMass).Cross(f)
	b.wakeup()
}

func (b *Body) addConstantTorque(t float64) {
	b.constantTorque += t
	b.wakeup()
}

func (b *Body) setConstantForce(f vec.Vec2) {
	b.constantForce = f
	b.wakeup()
}

func (b *Body) setConstantTorque(t float64) {
	b.constantTorque = t
	b.wakeup()
}

// setAxisVelocity replaces the velocity component along axis.
func (b *Body) setAxisVelocity(axis vec.Vec2) {
	n := axis.Unit()
	v := b.linearVelocity
	v = v.Sub(n.Scale(n.Dot(v)))
	b.linearVelocity = v.Add(axis)
	b.wakeup()
}

func (b *Body) addException(h Handle) {
	if !slices.Contains(b.exceptions, h) {
		b.exceptions = append(b.exceptions, h)
	}
}

func (b *Body) removeException(h Handle) {
	if i := slices.Index(b.exceptions, h); i >= 0 {
		b.exceptions = slices.Delete(b.exceptions, i, i+1)
	}
}

func (b *Body) hasException(h Handle) bool {
	return slices.Contains(b.exceptions, h)
}

func compareAreas(a, b *Area) int {
	if a.priority != b.priority {
		return a.priority - b.priority
	}
	switch {
	case a.handle < b.handle:
		return -1
	case a.handle > b.handle:
		return 1
	}
	return 0
}

func (b *Body) addArea(a *Area) {
	i, found := slices.BinarySearchFunc(b.areas, a, func(e bodyArea, t *Area) int {
		return compareAreas(e.area, t)
	})
	if found {
		b.areas[i].refCount++
		return
	}
	b.areas = slices.Insert(b.areas, i, bodyArea{area: a, refCount: 1})
}

func (b *Body) removeArea(a *Area) {
	i := slices.IndexFunc(b.areas, func(e bodyArea) bool { return e.area == a })
	if i < 0 {
		return
	}
	b.areas[i].refCount--
	if b.areas[i].refCount <= 0 {
		b.areas = slices.Delete(b.areas, i, i+1)
	}
}

// resortAreas restores priority order after an area priority changed.
func (b *Body) resortAreas() {
	slices.SortFunc(b.areas, func(x, y bodyArea) int { return compareAreas(x.area, y.area) })
}

func (b *Body) setMaxContactsReported(n int) {
	if n < 0 {
		n = 0
	}
	b.maxContactsReported = n
	b.contacts = make([]Contact, n)
	b.contactCount = 0
	if b.mode == BodyModeKinematic && n > 0 {
		b.setActive(true)
	}
}

// addContact records a contact. When the buffer is full the least deep
// contact (ties broken by Contact.less) is replaced by a strictly deeper one.
func (b *Body) addContact(c Contact) {
	if b.maxContactsReported == 0 {
		return
	}
	if b.contactCount < b.maxContactsReported {
		b.contacts[b.contactCount] = c
		b.contactCount++
		return
	}
	least := 0
	for i := 1; i < b.contactCount; i++ {
		if b.contacts[i].less(&b.contacts[least]) {
			least = i
		}
	}
	if c.Depth > b.contacts[least].Depth {
		b.contacts[least] = c
	}
}

// computeAreaGravityAndDamping folds the overlapping areas, highest priority
// first, then the default area, into the totals used by integrateForces.
func (b *Body) computeAreaGravityAndDamping() {
	gravityDone, linearDone, angularDone := false, false, false
	gravity := vec.Vec2{}
	b.totalLinearDamp = 0
	b.totalAngularDamp = 0
	origin := b.transform.Origin()

	stopped := false
	for i := len(b.areas) - 1; i >= 0 && !stopped; i-- {
		a := b.areas[i].area
		if !gravityDone {
			mode := a.gravityOverrideMode
			if mode != AreaOverrideDisabled {
				g := a.computeGravity(origin)
				switch mode {
				case AreaOverrideCombine, AreaOverrideCombineReplace:
					gravity = gravity.Add(g)
					gravityDone = mode == AreaOverrideCombineReplace
				case AreaOverrideReplace, AreaOverrideReplaceCombine:
					gravity = g
					gravityDone = mode == AreaOverrideReplace
				}
			}
		}
		if !linearDone {
			b.totalLinearDamp, linearDone = overrideDamp(a.linearDampOverrideMode, b.totalLinearDamp, a.linearDamp)
		}
		if !angularDone {
			b.totalAngularDamp, angularDone = overrideDamp(a.angularDampOverrideMode, b.totalAngularDamp, a.angularDamp)
		}
		stopped = gravityDone && linearDone && angularDone
	}

	if def := b.space.defaultAreaOrNil(); !stopped && def != nil {
		if !gravityDone {
			gravity = gravity.Add(def.computeGravity(origin))
		}
		if !linearDone {
			b.totalLinearDamp += def.linearDamp
		}
		if !angularDone {
			b.totalAngularDamp += def.angularDamp
		}
	}

	switch b.linearDampMode {
	case DampModeCombine:
		b.totalLinearDamp += b.linearDamp
	case DampModeReplace:
		b.totalLinearDamp = b.linearDamp
	}
	switch b.angularDampMode {
	case DampModeCombine:
		b.totalAngularDamp += b.angularDamp
	case DampModeReplace:
		b.totalAngularDamp = b.angularDamp
	}

	b.totalGravity = gravity.Scale(b.gravityScale)
}

func overrideDamp(mode AreaOverrideMode, total, damp float64) (float64, bool) {
	switch mode {
	case AreaOverrideCombine, AreaOverrideCombineReplace:
		return total + damp, mode == AreaOverrideCombineReplace
	case AreaOverrideReplace, AreaOverrideReplaceCombine:
		return damp, mode == AreaOverrideReplace
	}
	return total, false
}

// integrateForces applies gravity, damping and accumulated forces to the
// velocities. Kinematic bodies derive their velocity from the pending move.
func (b *Body) integrateForces(dt float64) {
	b.contactCount = 0
	b.biasedLinearVelocity = vec.Vec2{}
	b.biasedAngularVelocity = 0

	if b.mode == BodyModeKinematic {
		motion := b.newTransform.Origin().Sub(b.transform.Origin())
		b.linearVelocity = motion.Scale(1 / dt)
		rot := wrapAngle(b.newTransform.Rotation() - b.transform.Rotation())
		b.angularVelocity = rot / dt
		return
	}

	b.computeAreaGravityAndDamping()

	if !b.omitForceIntegration {
		force := b.totalGravity.Scale(b.mass).Add(b.appliedForce).Add(b.constantForce)
		torque := b.appliedTorque + b.constantTorque

		damp := math.Max(0, 1-dt*b.totalLinearDamp)
		angularDamp := math.Max(0, 1-dt*b.totalAngularDamp)

		b.linearVelocity = b.linearVelocity.Scale(damp)
		b.angularVelocity *= angularDamp

		b.linearVelocity = b.linearVelocity.Add(force.Scale(b.invMass * dt))
		b.angularVelocity += b.invInertia * torque * dt
	}

	if b.mode == BodyModeRigidLinear {
		b.angularVelocity = 0
	}
	b.appliedForce = vec.Vec2{}
	b.appliedTorque = 0
}

// integrateVelocities moves the body by its velocity. Swept bodies stop at
// the first surface crossed and keep the hit for the next tick.
func (b *Body) integrateVelocities(dt float64) {
	if b.mode == BodyModeStatic {
		return
	}
	if b.space != nil && (b.forceIntegration != nil || b.stateSync != nil) {
		b.space.addStateQuery(b)
	}

	if b.mode == BodyModeKinematic {
		b.setTransform(b.newTransform, true)
		b.updateTransformDependent()
		if b.maxContactsReported == 0 && b.linearVelocity == (vec.Vec2{}) && b.angularVelocity == 0 {
			b.setActive(false)
		}
		return
	}

	totalAngular := b.angularVelocity + b.biasedAngularVelocity
	totalLinear := b.linearVelocity.Add(b.biasedLinearVelocity)

	angleDelta := totalAngular * dt
	angle := b.transform.Rotation() + angleDelta
	pos := b.transform.Origin()
	if b.centerOfMass.LengthSq() > magicEpsilon*magicEpsilon {
		pos = pos.Add(b.centerOfMass.Sub(b.centerOfMass.RotateComplex(vec.ForAngle(angleDelta))))
	}

	motion := totalLinear.Scale(dt)
	b.ccdHits = b.ccdHits[:0]
	if b.ccdMode != CCDModeDisabled {
		motion = b.sweep(motion)
	}
	pos = pos.Add(motion)

	b.setTransform(NewTransformRigid(pos, angle), true)
	b.newTransform = b.transform
	b.updateTransformDependent()
	b.biasedLinearVelocity = vec.Vec2{}
	b.biasedAngularVelocity = 0
}

// sweep casts the body center along motion against every solid it may
// collide with. On a hit it records it and returns the motion cut at the surface.
func (b *Body) sweep(motion vec.Vec2) vec.Vec2 {
	ownShape, radius := b.ccdShape()
	if ownShape < 0 || b.space == nil {
		return motion
	}
	if motion.Mag() <= radius {
		return motion
	}

	from := b.transform.Origin().Add(b.centerOfMass)
	to := from.Add(motion)
	box := NewBB(from.X, from.Y, from.X, from.Y).Expand(to).Grow(radius)

	best := segmentHit{Alpha: 1}
	var bestHit *ccdHit
	for _, cand := range b.space.broadPhase.CullAABB(box, nil) {
		other := cand.Object
		if other == &b.CollisionObject || other.body == nil {
			continue
		}
		ob := other.body
		if !b.interactsWith(other) || b.hasException(other.handle) || ob.hasException(b.handle) {
			continue
		}
		os := &other.shapes[cand.Subindex]
		if os.disabled || os.oneWay {
			continue
		}
		hit, ok := os.shape.segmentQuery(other.shapeWorldTransform(cand.Subindex), from, to, radius)
		if !ok || hit.Alpha >= best.Alpha {
			continue
		}
		best = hit
		bestHit = &ccdHit{
			ownShape:   ownShape,
			other:      other,
			otherShape: cand.Subindex,
			point:      hit.Point,
			normal:     hit.Normal,
		}
	}
	if bestHit == nil {
		return motion
	}
	b.ccdHits = append(b.ccdHits, *bestHit)
	return motion.Scale(best.Alpha)
}

// ccdShape returns the first enabled shape and the radius cast for it.
func (b *Body) ccdShape() (int, float64) {
	for i := range b.shapes {
		s := &b.shapes[i]
		if s.disabled || !s.shape.configured {
			continue
		}
		if b.ccdMode == CCDModeCastRay {
			return i, 0
		}
		ext := s.shape.aabb(s.xform).Extents()
		return i, math.Min(ext.X, ext.Y)
	}
	return -1, 0
}

func (b *Body) takeCCDHit(other *CollisionObject, ownShape, otherShape int) (ccdHit, bool) {
	for _, h := range b.ccdHits {
		if h.other == other && h.ownShape == ownShape && h.otherShape == otherShape {
			return h, true
		}
	}
	return ccdHit{}, false
}

// sleepTest accumulates still time. It reports whether the body may sleep.
func (b *Body) sleepTest(dt float64) bool {
	switch b.mode {
	case BodyModeStatic:
		return true
	case BodyModeKinematic:
		// A moving kinematic body keeps everything it touches awake.
		return b.linearVelocity == (vec.Vec2{}) && b.angularVelocity == 0
	}
	if !b.canSleep || b.space == nil {
		return false
	}
	sp := b.space
	if b.linearVelocity.Mag() < sp.linearSleepThreshold && math.Abs(b.angularVelocity) < sp.angularSleepThreshold {
		b.stillTime += dt
		return b.stillTime > sp.timeToSleep
	}
	b.stillTime = 0
	return false
}

// callQueries runs the host callbacks registered on the body.
func (b *Body) callQueries() {
	state := b.state()
	if b.forceIntegration != nil {
		b.forceIntegration(state, b.forceIntegrationData)
	}
	if b.stateSync != nil {
		b.stateSync(state)
	}
}

// state returns the direct state view of the body.
func (b *Body) state() *DirectBodyState {
	if b.directState == nil {
		b.directState = &DirectBodyState{body: b}
	}
	return b.directState
}
