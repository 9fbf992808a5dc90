// Command falling drops a column of boxes on a floor and prints the server
// statistics until everything sleeps.
package main

import (
	"fmt"
	"log"

	"github.com/setanarut/space2d"
	"github.com/setanarut/vec"
)

func main() {
	settings := space2d.DefaultSettings()
	srv := space2d.NewServer(settings)

	space := srv.SpaceCreate()
	must(srv.SpaceSetActive(space, true))

	floorShape := srv.ShapeCreate(space2d.ShapeWorldBoundary)
	must(srv.ShapeSetData(floorShape, space2d.WorldBoundaryData{Normal: vec.Vec2{X: 0, Y: -1}, Distance: 0}))
	floor := srv.BodyCreate()
	must(srv.BodySetMode(floor, space2d.BodyModeStatic))
	must(srv.BodyAddShape(floor, floorShape, space2d.NewTransformIdentity(), false))
	must(srv.BodySetSpace(floor, space))

	box := srv.ShapeCreate(space2d.ShapeRectangle)
	must(srv.ShapeSetData(box, space2d.RectangleData{HalfExtents: vec.Vec2{X: 10, Y: 10}}))

	var boxes []space2d.Handle
	for i := range 10 {
		b := srv.BodyCreate()
		must(srv.BodyAddShape(b, box, space2d.NewTransformIdentity(), false))
		must(srv.BodySetTransform(b, space2d.NewTransformTranslate(vec.Vec2{X: 0, Y: -15 - float64(i)*21})))
		must(srv.BodySetSpace(b, space))
		boxes = append(boxes, b)
	}

	watch := srv.AreaCreate()
	zone := srv.ShapeCreate(space2d.ShapeCircle)
	must(srv.ShapeSetData(zone, space2d.CircleData{Radius: 40}))
	must(srv.AreaAddShape(watch, zone, space2d.NewTransformTranslate(vec.Vec2{X: 0, Y: -40}), false))
	must(srv.AreaSetMonitorCallback(watch, func(ev space2d.AreaMonitorEvent) {
		fmt.Printf("area: %v %v\n", ev.Event, ev.Object)
	}))
	must(srv.AreaSetSpace(watch, space))

	const dt = 1.0 / 60
	for tick := range 600 {
		srv.Step(dt)
		srv.Sync()
		srv.FlushQueries()
		srv.EndSync()

		if tick%60 == 0 {
			top := srv.BodyGetTransform(boxes[len(boxes)-1]).Origin()
			fmt.Printf("t=%.1fs active=%d pairs=%d islands=%d top=(%.1f, %.1f)\n",
				float64(tick)*dt,
				srv.GetProcessInfo(space2d.ProcessInfoActiveObjects),
				srv.GetProcessInfo(space2d.ProcessInfoCollisionPairs),
				srv.GetProcessInfo(space2d.ProcessInfoIslandCount),
				top.X, top.Y)
		}
		if srv.GetProcessInfo(space2d.ProcessInfoActiveObjects) == 0 {
			fmt.Printf("everything asleep after %d ticks\n", tick+1)
			break
		}
	}

	must(srv.Free(space))
}

func must(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}
