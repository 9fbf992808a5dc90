package space2d

import "testing"

func TestHandleTableGenerations(t *testing.T) {
	table := newHandleTable[Shape](HandleShape)
	first := table.make(newShape(ShapeCircle))
	if !first.IsValid() || first.Kind() != HandleShape {
		t.Fatalf("got %v, want a valid shape handle", first)
	}
	if !table.free(first) {
		t.Fatal("free of a live handle failed")
	}
	if table.free(first) {
		t.Error("double free succeeded")
	}

	second := table.make(newShape(ShapeSegment))
	if got, want := second.index(), first.index(); got != want {
		t.Errorf("got index [%v] want reused [%v]", got, want)
	}
	if second == first {
		t.Fatal("reused slot kept its generation")
	}
	if table.get(first) != nil {
		t.Error("stale handle resolved after its slot was reused")
	}
	if table.get(second) == nil {
		t.Error("live handle did not resolve")
	}
}

func TestHandleTableRejectsOtherKinds(t *testing.T) {
	shapes := newHandleTable[Shape](HandleShape)
	bodies := newHandleTable[Body](HandleBody)
	h := shapes.make(newShape(ShapeCircle))
	if bodies.owns(h) {
		t.Error("body table owns a shape handle")
	}
	if shapes.owns(0) {
		t.Error("zero handle resolved")
	}
	if Handle(0).IsValid() {
		t.Error("zero handle is valid")
	}
}

func TestHandleTableEach(t *testing.T) {
	table := newHandleTable[Shape](HandleShape)
	a := table.make(newShape(ShapeCircle))
	b := table.make(newShape(ShapeCircle))
	c := table.make(newShape(ShapeCircle))
	table.free(b)

	var seen []Handle
	table.each(func(h Handle, _ *Shape) { seen = append(seen, h) })
	if len(seen) != 2 || seen[0] != a || seen[1] != c {
		t.Errorf("got [%v] want [%v %v]", seen, a, c)
	}
}
