package engine

import (
	"testing"
)

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	bus.Subscribe(func(evt Event) {
		got = append(got, evt.Type)
	})

	bus.Emit(Event{Type: EventMissionQueued})
	bus.Emit(Event{Type: EventRobotConnected})

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[0] != EventMissionQueued || got[1] != EventRobotConnected {
		t.Errorf("received %v, want [%v %v]", got, EventMissionQueued, EventRobotConnected)
	}
}

func TestEventBusSubscribeTypesFilters(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	bus.SubscribeTypes(func(evt Event) {
		got = append(got, evt.Type)
	}, EventMissionFailed, EventMissionCancelled)

	bus.Emit(Event{Type: EventMissionQueued})
	bus.Emit(Event{Type: EventMissionFailed})
	bus.Emit(Event{Type: EventMissionCancelled})

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[0] != EventMissionFailed || got[1] != EventMissionCancelled {
		t.Errorf("received %v", got)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	count := 0
	id := bus.Subscribe(func(Event) { count++ })

	bus.Emit(Event{Type: EventMissionQueued})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventMissionQueued})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestEventBusTimestampDefaulted(t *testing.T) {
	bus := NewEventBus()
	var got Event
	bus.Subscribe(func(evt Event) { got = evt })

	bus.Emit(Event{Type: EventMissionStarted})
	if got.Timestamp.IsZero() {
		t.Error("emitted event has zero timestamp")
	}
}
