package network

import (
	"testing"

	"mycelia/internal/propagation"
)

func TestOnAndUnsubscribe(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	var got []EventType
	unsubscribe := m.On(func(event Event) {
		got = append(got, event.Type)
	})

	m.CreateNode(NodeParams{ID: "a"})
	if len(got) != 1 || got[0] != EventNodeCreated {
		t.Fatalf("events = %v, want [node:created]", got)
	}

	unsubscribe()
	m.CreateNode(NodeParams{ID: "b"})
	if len(got) != 1 {
		t.Errorf("unsubscribed listener still received events: %v", got)
	}
}

func TestListenerPanicIsolation(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.On(func(Event) { panic("bad listener") })

	var delivered int
	m.On(func(Event) { delivered++ })

	// The panicking listener must not break the mutation or its peers
	node := m.CreateNode(NodeParams{ID: "a"})
	if node == nil {
		t.Fatal("CreateNode() = nil after listener panic")
	}
	if delivered != 1 {
		t.Errorf("healthy listener received %d events, want 1", delivered)
	}
}

func TestEmitOrdering(t *testing.T) {
	m, _ := newTestManager(lineConfig())
	buildLine(m, "a", "b")

	var got []EventType
	m.On(func(event Event) {
		got = append(got, event.Type)
	})

	m.EmitSignal("a", "", propagation.EmissionConfig{InitialStrength: 1.0})

	want := []EventType{EventSignalEmitted, EventSignalPropagated}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
