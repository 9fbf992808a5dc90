package space2d

import (
	"slices"
	"time"
)

// step advances the space by dt. The space is locked for the whole tick.
//
// Setup runs concurrently over every constraint and solve concurrently over
// islands. Everything else, including each preSolve, runs on the calling
// goroutine.
func (sp *Space) step(dt float64) {
	sp.locked = true
	defer func() { sp.locked = false }()

	sp.stepCount++
	clear(sp.elapsed[:])

	sp.flushShapeUpdates()
	sp.broadPhase.Update()

	start := time.Now()
	for _, co := range slices.Clone(sp.activeList) {
		switch {
		case co.body != nil:
			co.body.integrateForces(dt)
		case co.soft != nil:
			co.soft.integrateForces(dt)
		}
	}
	sp.elapsed[ElapsedIntegrateForces] = time.Since(start)

	start = time.Now()
	islands := sp.buildIslands()
	if sp.debug {
		sp.checkIslands(islands)
	}
	sp.elapsed[ElapsedGenerateIslands] = time.Since(start)

	start = time.Now()
	var constraints []*Constraint
	for _, is := range islands {
		constraints = append(constraints, is.constraints...)
	}
	task(sp.workers, constraints, func(c *Constraint) {
		c.setup(dt)
	})
	for _, is := range islands {
		is.solve = is.solve[:0]
		for _, c := range is.constraints {
			if c.needsProcessing && c.preSolve(dt) {
				is.solve = append(is.solve, c)
			}
		}
	}
	sp.elapsed[ElapsedSetupConstraints] = time.Since(start)

	start = time.Now()
	iterations := sp.solverIterations
	task(sp.workers, islands, func(is *island) {
		for range iterations {
			for _, c := range is.solve {
				c.solve(dt)
			}
		}
	})
	sp.elapsed[ElapsedSolveConstraints] = time.Since(start)

	start = time.Now()
	for _, co := range slices.Clone(sp.activeList) {
		switch {
		case co.body != nil:
			co.body.integrateVelocities(dt)
		case co.soft != nil:
			co.soft.integrateVelocities(dt)
		}
	}
	for _, is := range islands {
		if !is.areas {
			sp.checkSuspend(is, dt)
		}
	}
	sp.elapsed[ElapsedIntegrateVelocities] = time.Since(start)

	sp.broadPhase.Update()

	sp.islandCount = 0
	for _, is := range islands {
		if !is.areas {
			sp.islandCount++
		}
	}
	sp.activeObjects = len(sp.activeList)
	sp.collisionPairs = len(sp.pairs)
}

// checkSuspend puts every rigid body of the island to sleep when all of
// them have been still long enough, and wakes them all otherwise.
func (sp *Space) checkSuspend(is *island, dt float64) {
	canSleep := true
	for _, o := range is.objects {
		switch {
		case o.body != nil:
			if !o.body.sleepTest(dt) {
				canSleep = false
			}
		case o.soft != nil:
			canSleep = false
		}
	}

	for _, o := range is.objects {
		b := o.body
		if b == nil || b.mode < BodyModeRigid {
			continue
		}
		switch {
		case canSleep && b.active:
			b.setSleeping(true)
		case !canSleep && !b.active:
			b.wakeup()
		}
	}
}
