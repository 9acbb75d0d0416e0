package event

// Handler processes specific event types
// Collaborators (HUD, audio, metrics) implement this interface to receive notifications
type Handler interface {
	// HandleEvent processes a single event
	// Called synchronously from inside the mutation that produced it
	HandleEvent(ev GameEvent)

	// EventTypes returns the event types this handler processes
	// The bus uses this for registration
	EventTypes() []EventType
}

type funcHandler struct {
	fn    func(GameEvent)
	types []EventType
}

func (h funcHandler) HandleEvent(ev GameEvent) { h.fn(ev) }
func (h funcHandler) EventTypes() []EventType { return h.types }

// Bus dispatches events to registered handlers
//
// Architecture:
//   - Synchronous dispatch, Emit returns after every handler ran
//   - Multiple handlers can register for the same event type
//   - Handlers are invoked in registration order
//   - A handler may Emit again (nested dispatch) and may Register new handlers;
//     handlers registered during an Emit see only later events
type Bus struct {
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Register adds a handler for its declared event types
func (b *Bus) Register(handler Handler) {
	for _, t := range handler.EventTypes() {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Subscribe registers a plain function for the given types
func (b *Bus) Subscribe(fn func(GameEvent), types ...EventType) {
	b.Register(funcHandler{fn: fn, types: types})
}

// Emit delivers ev to every handler registered for its type
func (b *Bus) Emit(ev GameEvent) {
	hs := b.handlers[ev.Type]
	if len(hs) == 0 {
		return
	}
	// Slice header is captured, appends during dispatch do not reach this pass
	for _, h := range hs[:len(hs):len(hs)] {
		h.HandleEvent(ev)
	}
}

// HasHandlers returns true if any handlers are registered for the given type
func (b *Bus) HasHandlers(t EventType) bool {
	return len(b.handlers[t]) > 0
}

// HandlerCount returns the number of handlers registered for the given type
func (b *Bus) HandlerCount(t EventType) int {
	return len(b.handlers[t])
}
