package space2d

import "fmt"

// HandleKind tells which object table a Handle belongs to.
type HandleKind uint8

const (
	HandleNone HandleKind = iota
	HandleShape
	HandleSpace
	HandleBody
	HandleArea
	HandleJoint
	HandleSoftBody
)

var handleKindNames = [...]string{"none", "shape", "space", "body", "area", "joint", "soft_body"}

func (k HandleKind) String() string {
	if int(k) < len(handleKindNames) {
		return handleKindNames[k]
	}
	return fmt.Sprintf("HandleKind(%d)", uint8(k))
}

// Handle is an opaque reference to a server object. It packs the table kind,
// the slot index and the slot generation, so a handle to a freed object
// stays invalid after the slot is reused. The zero Handle is never valid.
type Handle uint64

func makeHandle(kind HandleKind, index, generation uint32) Handle {
	return Handle(uint64(kind)<<56 | uint64(generation&0xffffff)<<32 | uint64(index))
}

// Kind returns the table the handle was issued by.
func (h Handle) Kind() HandleKind {
	return HandleKind(h >> 56)
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(h>>32) & 0xffffff
}

// IsValid reports whether h was ever issued. It does not check liveness.
func (h Handle) IsValid() bool {
	return h.Kind() != HandleNone && h.generation() != 0
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "Handle(nil)"
	}
	return fmt.Sprintf("%v#%d.%d", h.Kind(), h.index(), h.generation())
}

type tableSlot[T any] struct {
	generation uint32
	value      *T
}

// handleTable is an arena of objects addressed by generation checked handles.
type handleTable[T any] struct {
	kind     HandleKind
	slots    []tableSlot[T]
	freeList []uint32
	count    int
}

func newHandleTable[T any](kind HandleKind) *handleTable[T] {
	return &handleTable[T]{kind: kind}
}

func (t *handleTable[T]) make(value *T) Handle {
	var index uint32
	if n := len(t.freeList); n > 0 {
		index = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, tableSlot[T]{})
	}
	slot := &t.slots[index]
	slot.generation = (slot.generation + 1) & 0xffffff
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.value = value
	t.count++
	return makeHandle(t.kind, index, slot.generation)
}

func (t *handleTable[T]) get(h Handle) *T {
	if h.Kind() != t.kind {
		return nil
	}
	index := h.index()
	if int(index) >= len(t.slots) {
		return nil
	}
	slot := &t.slots[index]
	if slot.value == nil || slot.generation != h.generation() {
		return nil
	}
	return slot.value
}

func (t *handleTable[T]) owns(h Handle) bool {
	return t.get(h) != nil
}

func (t *handleTable[T]) free(h Handle) bool {
	if !t.owns(h) {
		return false
	}
	index := h.index()
	t.slots[index].value = nil
	t.freeList = append(t.freeList, index)
	t.count--
	return true
}

// each visits live objects in slot order.
func (t *handleTable[T]) each(fn func(Handle, *T)) {
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.value != nil {
			fn(makeHandle(t.kind, uint32(i), slot.generation), slot.value)
		}
	}
}
