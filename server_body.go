package space2d

import (
	"fmt"
	"slices"

	"github.com/setanarut/vec"
)

// BodyCreate makes a rigid body outside any space.
func (s *Server) BodyCreate() Handle {
	b := newBody(s.logger)
	b.handle = s.bodies.make(b)
	return b.handle
}

func (s *Server) body(op string, h Handle) (*Body, error) {
	return lookup(s, s.bodies, op, h)
}

// BodyGet returns the body behind a handle, nil if the handle is invalid.
func (s *Server) BodyGet(body Handle) *Body {
	return s.bodies.get(body)
}

// BodySetSpace moves the body to space, or out of every space when space is
// zero. Pairs of the body end. Joints stay and resume once both bodies
// share a space again.
func (s *Server) BodySetSpace(body, space Handle) error {
	const op = "body_set_space"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	sp, err := s.optionalSpace(op, space)
	if err != nil {
		return err
	}
	if b.space == sp {
		return nil
	}
	if err := s.checkFlush(op, &b.CollisionObject); err != nil {
		return err
	}
	b.setSpace(sp)
	return nil
}

// BodyGetSpace returns the space of the body, zero when it is in none.
func (s *Server) BodyGetSpace(body Handle) Handle {
	b, err := s.body("body_get_space", body)
	if err != nil {
		return 0
	}
	return spaceHandle(b.space)
}

// BodySetMode switches between static, kinematic, rigid and character motion.
func (s *Server) BodySetMode(body Handle, mode BodyMode) error {
	const op = "body_set_mode"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if mode > BodyModeRigidLinear {
		return s.fail(op, fmt.Errorf("mode %d: %w", mode, ErrInvalidState))
	}
	if err := s.checkFlush(op, &b.CollisionObject); err != nil {
		return err
	}
	b.setMode(mode)
	return nil
}

// BodyGetMode returns the motion mode.
func (s *Server) BodyGetMode(body Handle) BodyMode {
	b, err := s.body("body_get_mode", body)
	if err != nil {
		return BodyModeStatic
	}
	return b.mode
}

// BodyAddShape appends shape at xform relative to the body.
func (s *Server) BodyAddShape(body, shape Handle, xform Transform, disabled bool) error {
	const op = "body_add_shape"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.addShape(op, &b.CollisionObject, shape, xform, disabled)
}

// BodySetShape replaces the shape at index.
func (s *Server) BodySetShape(body Handle, index int, shape Handle) error {
	const op = "body_set_shape"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.setShape(op, &b.CollisionObject, index, shape)
}

// BodySetShapeTransform moves the shape at index relative to the body.
func (s *Server) BodySetShapeTransform(body Handle, index int, xform Transform) error {
	const op = "body_set_shape_transform"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.setShapeTransform(op, &b.CollisionObject, index, xform)
}

// BodySetShapeDisabled turns collisions of the shape at index off or on.
func (s *Server) BodySetShapeDisabled(body Handle, index int, disabled bool) error {
	const op = "body_set_shape_disabled"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.setShapeDisabled(op, &b.CollisionObject, index, disabled)
}

// BodySetShapeAsOneWayCollision makes shape index block only bodies that
// approach it against its local +Y axis. Contacts deeper than margin are
// let through when margin is positive.
func (s *Server) BodySetShapeAsOneWayCollision(body Handle, index int, enabled bool, margin float64) error {
	const op = "body_set_shape_as_one_way_collision"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if err := s.shapeIndex(op, &b.CollisionObject, index); err != nil {
		return err
	}
	if err := s.checkFlush(op, &b.CollisionObject); err != nil {
		return err
	}
	b.setShapeOneWay(index, enabled, margin)
	return nil
}

// BodyRemoveShape drops the shape at index. Later shapes move down one index.
func (s *Server) BodyRemoveShape(body Handle, index int) error {
	const op = "body_remove_shape"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.removeShape(op, &b.CollisionObject, index)
}

// BodyClearShapes drops every shape.
func (s *Server) BodyClearShapes(body Handle) error {
	const op = "body_clear_shapes"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	return s.clearShapes(op, &b.CollisionObject)
}

// BodyGetShapeCount returns the number of shapes.
func (s *Server) BodyGetShapeCount(body Handle) int {
	b, err := s.body("body_get_shape_count", body)
	if err != nil {
		return 0
	}
	return len(b.shapes)
}

// BodyGetShape returns the shape at index, zero if there is none.
func (s *Server) BodyGetShape(body Handle, index int) Handle {
	b, err := s.body("body_get_shape", body)
	if err != nil {
		return 0
	}
	return b.shapeHandle(index)
}

// BodyGetShapeTransform returns the local transform of the shape at index.
func (s *Server) BodyGetShapeTransform(body Handle, index int) Transform {
	b, err := s.body("body_get_shape_transform", body)
	if err != nil {
		return NewTransformIdentity()
	}
	return b.ShapeTransform(index)
}

// BodyAttachObjectInstanceID stores the host object id reported in contacts and monitor events.
func (s *Server) BodyAttachObjectInstanceID(body Handle, id uint64) error {
	b, err := s.body("body_attach_object_instance_id", body)
	if err != nil {
		return err
	}
	b.instanceID = id
	return nil
}

// BodyGetObjectInstanceID returns the host id attached to the body.
func (s *Server) BodyGetObjectInstanceID(body Handle) uint64 {
	b, err := s.body("body_get_object_instance_id", body)
	if err != nil {
		return 0
	}
	return b.instanceID
}

// BodySetCollisionLayer sets the layers the body is found in.
func (s *Server) BodySetCollisionLayer(body Handle, layer uint32) error {
	const op = "body_set_collision_layer"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if err := s.setCollisionLayer(op, &b.CollisionObject, layer); err != nil {
		return err
	}
	b.wakeup()
	return nil
}

// BodyGetCollisionLayer returns the layers the body is found in.
func (s *Server) BodyGetCollisionLayer(body Handle) uint32 {
	b, err := s.body("body_get_collision_layer", body)
	if err != nil {
		return 0
	}
	return b.layer
}

// BodySetCollisionMask sets the layers the body looks for.
func (s *Server) BodySetCollisionMask(body Handle, mask uint32) error {
	const op = "body_set_collision_mask"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if err := s.setCollisionMask(op, &b.CollisionObject, mask); err != nil {
		return err
	}
	b.wakeup()
	return nil
}

// BodyGetCollisionMask returns the layers the body looks for.
func (s *Server) BodyGetCollisionMask(body Handle) uint32 {
	b, err := s.body("body_get_collision_mask", body)
	if err != nil {
		return 0
	}
	return b.mask
}

// BodySetPickable includes or excludes the body from pickable point queries.
func (s *Server) BodySetPickable(body Handle, pickable bool) error {
	b, err := s.body("body_set_pickable", body)
	if err != nil {
		return err
	}
	b.pickable = pickable
	return nil
}

// BodySetParam sets a physical parameter. Mass must be positive.
func (s *Server) BodySetParam(body Handle, param BodyParameter, value float64) error {
	const op = "body_set_param"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if param == BodyParamMass && value <= 0 {
		return s.fail(op, fmt.Errorf("mass %v: %w", value, ErrInvalidState))
	}
	b.setParam(param, value)
	return nil
}

// BodyGetParam returns a physical parameter.
func (s *Server) BodyGetParam(body Handle, param BodyParameter) float64 {
	b, err := s.body("body_get_param", body)
	if err != nil {
		return 0
	}
	return b.param(param)
}

// BodySetCenterOfMass fixes the center of mass in the body frame. Shapes no
// longer move it until BodyResetMassProperties.
func (s *Server) BodySetCenterOfMass(body Handle, local vec.Vec2) error {
	b, err := s.body("body_set_center_of_mass", body)
	if err != nil {
		return err
	}
	b.setCenterOfMass(local)
	return nil
}

// BodyGetCenterOfMass returns the center of mass relative to the body origin.
func (s *Server) BodyGetCenterOfMass(body Handle) vec.Vec2 {
	b, err := s.body("body_get_center_of_mass", body)
	if err != nil {
		return vec.Vec2{}
	}
	return b.centerOfMassLocal
}

// BodyResetMassProperties derives inertia and center of mass from the shapes again.
func (s *Server) BodyResetMassProperties(body Handle) error {
	b, err := s.body("body_reset_mass_properties", body)
	if err != nil {
		return err
	}
	b.resetMassProperties()
	return nil
}

// BodySetTransform places the body. A kinematic body moves there during
// the next tick and takes the velocity of that motion.
func (s *Server) BodySetTransform(body Handle, xform Transform) error {
	b, err := s.body("body_set_transform", body)
	if err != nil {
		return err
	}
	b.setTransformState(xform)
	return nil
}

// BodyGetTransform returns the transform of the body.
func (s *Server) BodyGetTransform(body Handle) Transform {
	b, err := s.body("body_get_transform", body)
	if err != nil {
		return NewTransformIdentity()
	}
	return b.transform
}

// BodySetLinearVelocity sets the linear velocity and wakes the body.
func (s *Server) BodySetLinearVelocity(body Handle, v vec.Vec2) error {
	b, err := s.body("body_set_linear_velocity", body)
	if err != nil {
		return err
	}
	b.setLinearVelocity(v)
	return nil
}

// BodyGetLinearVelocity returns the linear velocity.
func (s *Server) BodyGetLinearVelocity(body Handle) vec.Vec2 {
	b, err := s.body("body_get_linear_velocity", body)
	if err != nil {
		return vec.Vec2{}
	}
	return b.linearVelocity
}

// BodySetAngularVelocity sets the angular velocity and wakes the body.
func (s *Server) BodySetAngularVelocity(body Handle, w float64) error {
	b, err := s.body("body_set_angular_velocity", body)
	if err != nil {
		return err
	}
	b.setAngularVelocity(w)
	return nil
}

// BodyGetAngularVelocity returns the angular velocity.
func (s *Server) BodyGetAngularVelocity(body Handle) float64 {
	b, err := s.body("body_get_angular_velocity", body)
	if err != nil {
		return 0
	}
	return b.angularVelocity
}

// BodySetSleeping puts a rigid body to sleep with zero velocity or wakes it.
func (s *Server) BodySetSleeping(body Handle, sleeping bool) error {
	b, err := s.body("body_set_sleeping", body)
	if err != nil {
		return err
	}
	b.setSleeping(sleeping)
	return nil
}

// BodyIsSleeping reports whether the body is asleep.
func (s *Server) BodyIsSleeping(body Handle) bool {
	b, err := s.body("body_is_sleeping", body)
	if err != nil {
		return false
	}
	return !b.active
}

// BodySetCanSleep allows the body and its island to sleep, or keeps them awake.
func (s *Server) BodySetCanSleep(body Handle, canSleep bool) error {
	b, err := s.body("body_set_can_sleep", body)
	if err != nil {
		return err
	}
	b.setCanSleep(canSleep)
	return nil
}

// BodyApplyCentralImpulse changes the linear velocity by j over the mass.
func (s *Server) BodyApplyCentralImpulse(body Handle, j vec.Vec2) error {
	b, err := s.body("body_apply_central_impulse", body)
	if err != nil {
		return err
	}
	b.applyCentralImpulse(j)
	return nil
}

// BodyApplyImpulse applies j at the world space offset pos from the body origin.
func (s *Server) BodyApplyImpulse(body Handle, j, pos vec.Vec2) error {
	b, err := s.body("body_apply_impulse", body)
	if err != nil {
		return err
	}
	b.applyImpulse(j, pos)
	return nil
}

// BodyApplyTorqueImpulse changes the angular velocity by t over the inertia.
func (s *Server) BodyApplyTorqueImpulse(body Handle, t float64) error {
	b, err := s.body("body_apply_torque_impulse", body)
	if err != nil {
		return err
	}
	b.applyTorqueImpulse(t)
	return nil
}

// BodyApplyCentralForce adds f for the next tick only.
func (s *Server) BodyApplyCentralForce(body Handle, f vec.Vec2) error {
	b, err := s.body("body_apply_central_force", body)
	if err != nil {
		return err
	}
	b.applyCentralForce(f)
	return nil
}

// BodyApplyForce adds f at pos, relative to the body origin, for the next tick.
func (s *Server) BodyApplyForce(body Handle, f, pos vec.Vec2) error {
	b, err := s.body("body_apply_force", body)
	if err != nil {
		return err
	}
	b.applyForce(f, pos)
	return nil
}

// BodyApplyTorque adds t for the next tick.
func (s *Server) BodyApplyTorque(body Handle, t float64) error {
	b, err := s.body("body_apply_torque", body)
	if err != nil {
		return err
	}
	b.applyTorque(t)
	return nil
}

// BodyAddConstantCentralForce adds f to the force applied on every tick.
func (s *Server) BodyAddConstantCentralForce(body Handle, f vec.Vec2) error {
	b, err := s.body("body_add_constant_central_force", body)
	if err != nil {
		return err
	}
	b.addConstantCentralForce(f)
	return nil
}

// BodyAddConstantForce adds f at pos to the force applied every tick.
func (s *Server) BodyAddConstantForce(body Handle, f, pos vec.Vec2) error {
	b, err := s.body("body_add_constant_force", body)
	if err != nil {
		return err
	}
	b.addConstantForce(f, pos)
	return nil
}

// BodyAddConstantTorque adds t to the torque applied every tick.
func (s *Server) BodyAddConstantTorque(body Handle, t float64) error {
	b, err := s.body("body_add_constant_torque", body)
	if err != nil {
		return err
	}
	b.addConstantTorque(t)
	return nil
}

// BodySetConstantForce sets the force applied every tick.
func (s *Server) BodySetConstantForce(body Handle, f vec.Vec2) error {
	b, err := s.body("body_set_constant_force", body)
	if err != nil {
		return err
	}
	b.setConstantForce(f)
	return nil
}

// BodyGetConstantForce returns the force applied every tick.
func (s *Server) BodyGetConstantForce(body Handle) vec.Vec2 {
	b, err := s.body("body_get_constant_force", body)
	if err != nil {
		return vec.Vec2{}
	}
	return b.constantForce
}

// BodySetConstantTorque sets the torque applied every tick.
func (s *Server) BodySetConstantTorque(body Handle, t float64) error {
	b, err := s.body("body_set_constant_torque", body)
	if err != nil {
		return err
	}
	b.setConstantTorque(t)
	return nil
}

// BodyGetConstantTorque returns the torque applied every tick.
func (s *Server) BodyGetConstantTorque(body Handle) float64 {
	b, err := s.body("body_get_constant_torque", body)
	if err != nil {
		return 0
	}
	return b.constantTorque
}

// BodySetAxisVelocity replaces the velocity component along axis by axis itself.
func (s *Server) BodySetAxisVelocity(body Handle, axis vec.Vec2) error {
	b, err := s.body("body_set_axis_velocity", body)
	if err != nil {
		return err
	}
	b.setAxisVelocity(axis)
	return nil
}

// BodyAddCollisionException makes the body ignore other. Pairs are
// filtered on both sides, so one exception is enough.
func (s *Server) BodyAddCollisionException(body, other Handle) error {
	b, err := s.body("body_add_collision_exception", body)
	if err != nil {
		return err
	}
	b.addException(other)
	b.wakeup()
	return nil
}

// BodyRemoveCollisionException lets the body collide with other again.
func (s *Server) BodyRemoveCollisionException(body, other Handle) error {
	b, err := s.body("body_remove_collision_exception", body)
	if err != nil {
		return err
	}
	b.removeException(other)
	b.wakeup()
	return nil
}

// BodyGetCollisionExceptions returns the bodies ignored by the body.
func (s *Server) BodyGetCollisionExceptions(body Handle) []Handle {
	b, err := s.body("body_get_collision_exceptions", body)
	if err != nil {
		return nil
	}
	return slices.Clone(b.exceptions)
}

// BodySetMaxContactsReported sizes the contact buffer read through the direct state.
func (s *Server) BodySetMaxContactsReported(body Handle, n int) error {
	b, err := s.body("body_set_max_contacts_reported", body)
	if err != nil {
		return err
	}
	b.setMaxContactsReported(n)
	return nil
}

// BodyGetMaxContactsReported returns the size of the contact buffer.
func (s *Server) BodyGetMaxContactsReported(body Handle) int {
	b, err := s.body("body_get_max_contacts_reported", body)
	if err != nil {
		return 0
	}
	return b.maxContactsReported
}

// BodySetOmitForceIntegration leaves gravity, damping and forces to the
// force integration callback.
func (s *Server) BodySetOmitForceIntegration(body Handle, omit bool) error {
	b, err := s.body("body_set_omit_force_integration", body)
	if err != nil {
		return err
	}
	b.omitForceIntegration = omit
	return nil
}

// BodyIsOmittingForceIntegration reports whether gravity and damping are skipped.
func (s *Server) BodyIsOmittingForceIntegration(body Handle) bool {
	b, err := s.body("body_is_omitting_force_integration", body)
	if err != nil {
		return false
	}
	return b.omitForceIntegration
}

// BodySetContinuousCollisionDetectionMode selects how fast motion is swept.
func (s *Server) BodySetContinuousCollisionDetectionMode(body Handle, mode CCDMode) error {
	b, err := s.body("body_set_continuous_collision_detection_mode", body)
	if err != nil {
		return err
	}
	b.ccdMode = mode
	return nil
}

// BodyGetContinuousCollisionDetectionMode returns how fast motion is swept.
func (s *Server) BodyGetContinuousCollisionDetectionMode(body Handle) CCDMode {
	b, err := s.body("body_get_continuous_collision_detection_mode", body)
	if err != nil {
		return CCDModeDisabled
	}
	return b.ccdMode
}

// BodySetForceIntegrationCallback registers f to run with userData during
// FlushQueries after every tick the body moved in. Nil removes it.
func (s *Server) BodySetForceIntegrationCallback(body Handle, f ForceIntegrationFunc, userData any) error {
	b, err := s.body("body_set_force_integration_callback", body)
	if err != nil {
		return err
	}
	b.forceIntegration = f
	b.forceIntegrationData = userData
	return nil
}

// BodySetStateSyncCallback registers f to run during FlushQueries after
// every tick the body moved in. Nil removes it.
func (s *Server) BodySetStateSyncCallback(body Handle, f StateSyncFunc) error {
	b, err := s.body("body_set_state_sync_callback", body)
	if err != nil {
		return err
	}
	b.stateSync = f
	return nil
}

// BodyGetDirectState returns the direct state of a body in a space. It
// fails with ErrSpaceLocked while the space is stepping, and for a threaded
// host also outside Sync and EndSync.
func (s *Server) BodyGetDirectState(body Handle) (*DirectBodyState, error) {
	const op = "body_get_direct_state"
	b, err := s.body(op, body)
	if err != nil {
		return nil, err
	}
	if b.space == nil {
		return nil, s.fail(op, fmt.Errorf("%v is in no space: %w", body, ErrInvalidState))
	}
	if b.space.locked {
		return nil, s.fail(op, fmt.Errorf("%v: %w", body, ErrSpaceLocked))
	}
	if s.settings.ThreadedHost && !s.doingSync && !s.flushing {
		return nil, s.fail(op, fmt.Errorf("%v outside sync: %w", body, ErrSpaceLocked))
	}
	return b.state(), nil
}

// BodySetCollisionPriority sets how hard motion tests push out of the body.
// The priority must be positive, 1 is the default.
func (s *Server) BodySetCollisionPriority(body Handle, priority float64) error {
	const op = "body_set_collision_priority"
	b, err := s.body(op, body)
	if err != nil {
		return err
	}
	if priority <= 0 {
		return s.fail(op, fmt.Errorf("priority %v: %w", priority, ErrInvalidValue))
	}
	b.collisionPriority = priority
	return nil
}

// BodyGetCollisionPriority returns the collision priority of the body.
func (s *Server) BodyGetCollisionPriority(body Handle) float64 {
	b, err := s.body("body_get_collision_priority", body)
	if err != nil {
		return 0
	}
	return b.collisionPriority
}

// BodyTestMotion reports whether moving the body from p.From by p.Motion
// would collide, and where it would stop. The body does not move. It fails
// with ErrSpaceLocked while the space is stepping.
func (s *Server) BodyTestMotion(body Handle, p MotionParameters) (MotionResult, bool, error) {
	const op = "body_test_motion"
	b, err := s.body(op, body)
	if err != nil {
		return MotionResult{}, false, err
	}
	if b.space == nil {
		return MotionResult{}, false, s.fail(op, fmt.Errorf("%v is in no space: %w", body, ErrInvalidState))
	}
	if b.space.locked {
		return MotionResult{}, false, s.fail(op, fmt.Errorf("%v: %w", body, ErrSpaceLocked))
	}
	b.space.flushShapeUpdates()
	r, collided := b.testMotion(&p)
	return r, collided, nil
}

// BodyCollideShape returns contact point pairs between the body shape at
// index bodyShape and shape placed by xf and moving by motion. A lies on
// the body shape and B on the other.
func (s *Server) BodyCollideShape(body Handle, bodyShape int, shape Handle, xf Transform, motion vec.Vec2, maxPairs int) ([]vec.Vec2, error) {
	const op = "body_collide_shape"
	b, err := s.body(op, body)
	if err != nil {
		return nil, err
	}
	if !b.validIndex(bodyShape) {
		return nil, s.fail(op, fmt.Errorf("shape %d of %v: %w", bodyShape, body, ErrIndexOutOfRange))
	}
	sh, err := lookup(s, s.shapes, op, shape)
	if err != nil {
		return nil, err
	}
	return collidePoints(b.shapes[bodyShape].shape, b.shapeWorldTransform(bodyShape), vec.Vec2{}, sh, xf, motion, maxPairs), nil
}
