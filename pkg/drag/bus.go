package drag

// Bus delivers document-wide pointer-up notifications to whoever currently
// holds a subscription. The controller subscribes only while a drag is
// active, so Len is zero whenever no slot is being dragged.
type Bus struct {
	handlers []busHandler
	nextID   uint32
}

type busHandler struct {
	id uint32
	fn func()
}

// Handle removes a Bus subscription.
type Handle struct {
	id  uint32
	bus *Bus
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn to run on every Publish until the returned handle
// is removed.
func (b *Bus) Subscribe(fn func()) Handle {
	b.nextID++
	b.handlers = append(b.handlers, busHandler{id: b.nextID, fn: fn})
	return Handle{id: b.nextID, bus: b}
}

// Publish runs every subscribed handler. Handlers may remove themselves.
func (b *Bus) Publish() {
	// Iterate over a copy so a handler removing itself does not shift the
	// slice under us.
	handlers := append([]busHandler(nil), b.handlers...)
	for _, h := range handlers {
		h.fn()
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	return len(b.handlers)
}

// Remove unregisters the subscription. Removing twice is a no-op.
func (h Handle) Remove() {
	if h.bus == nil {
		return
	}
	s := h.bus.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = busHandler{}
			h.bus.handlers = s[:len(s)-1]
			return
		}
	}
}
