package network

import "log"

// EventType defines the type of a network event
type EventType string

const (
	EventNodeCreated  EventType = "node:created"
	EventNodeUpdated  EventType = "node:updated"
	EventNodeRemoved  EventType = "node:removed"
	EventHyphaCreated EventType = "hypha:created"
	EventHyphaUpdated EventType = "hypha:updated"
	EventHyphaRemoved EventType = "hypha:removed"

	EventSignalEmitted    EventType = "signal:emitted"
	EventSignalPropagated EventType = "signal:propagated"
	EventSignalExpired    EventType = "signal:expired"

	EventResonanceDetected EventType = "resonance:detected"
	EventResonanceUpdated  EventType = "resonance:updated"
	EventResonanceFaded    EventType = "resonance:faded"

	EventStatsUpdated EventType = "network:stats-updated"
)

// Event represents a mutation that occurred in the network
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Listener receives events synchronously, in the mutating call's own
// goroutine. Listeners must not call back into the manager's mutation
// methods; a panicking listener is recovered per-listener so one failing
// subscriber cannot break propagation or the other subscribers.
type Listener func(Event)

// On registers a listener and returns its unsubscribe function.
// Subscribing and unsubscribing from inside a listener is allowed.
func (m *Manager) On(fn Listener) func() {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		delete(m.listeners, id)
	}
}

// emit dispatches an event to every registered listener
func (m *Manager) emit(eventType EventType, payload any) {
	m.listenersMu.Lock()
	ids := make([]int, 0, len(m.listeners))
	fns := make([]Listener, 0, len(m.listeners))
	for id, fn := range m.listeners {
		ids = append(ids, id)
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for i, fn := range fns {
		m.dispatch(ids[i], fn, Event{Type: eventType, Payload: payload})
	}
}

func (m *Manager) dispatch(id int, fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("network: listener %d panicked on %s: %v", id, ev.Type, r)
		}
	}()
	fn(ev)
}
