package events

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (RPC streams,
// indexers, audit sinks).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events.
// It is the default for components that expose events optionally.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Collector retains every emitted event in order. Test helper.
type Collector struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (c *Collector) Emit(evt Event) {
	c.Events = append(c.Events, evt)
}
