package drag

import "testing"

func TestBusSubscribeAndRemove(t *testing.T) {
	bus := NewBus()
	var a, b int
	ha := bus.Subscribe(func() { a++ })
	bus.Subscribe(func() { b++ })

	bus.Publish()
	if a != 1 || b != 1 {
		t.Fatalf("after publish a=%d b=%d, want 1 1", a, b)
	}

	ha.Remove()
	ha.Remove()
	if bus.Len() != 1 {
		t.Errorf("Len() = %d, want 1", bus.Len())
	}

	bus.Publish()
	if a != 1 || b != 2 {
		t.Errorf("after remove a=%d b=%d, want 1 2", a, b)
	}
}

func TestBusHandlerRemovesItself(t *testing.T) {
	bus := NewBus()
	calls := 0
	var h Handle
	h = bus.Subscribe(func() {
		calls++
		h.Remove()
	})
	other := 0
	bus.Subscribe(func() { other++ })

	bus.Publish()
	bus.Publish()
	if calls != 1 {
		t.Errorf("self-removing handler ran %d times, want 1", calls)
	}
	if other != 2 {
		t.Errorf("other handler ran %d times, want 2", other)
	}
}

func TestZeroHandleRemove(t *testing.T) {
	var h Handle
	h.Remove()
}
