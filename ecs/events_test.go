package ecs

import "testing"

func TestEventBusEmit(t *testing.T) {
	cases := []struct {
		name   string
		kind   EventKind
		emit   EventKind
		expect int
	}{
		{"matching_kind", EventJumped, EventJumped, 1},
		{"other_kind", EventJumped, EventLanded, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var bus EventBus
			got := 0
			bus.Subscribe(c.kind, func(Event) { got++ })
			bus.Emit(Event{Kind: c.emit})
			if got != c.expect {
				t.Fatalf("expected %d deliveries, got %d", c.expect, got)
			}
		})
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var bus EventBus
	var order []int
	bus.Subscribe(EventRotated, func(Event) { order = append(order, 1) })
	cancel := bus.Subscribe(EventRotated, func(Event) { order = append(order, 2) })
	bus.Subscribe(EventRotated, func(Event) { order = append(order, 3) })

	cancel()
	bus.Emit(Event{Kind: EventRotated})

	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Fatalf("expected [1 3], got %v", order)
	}
}

func TestEventBusQueueFlush(t *testing.T) {
	var bus EventBus
	var steps []float64
	bus.Subscribe(EventRotating, func(e Event) {
		steps = append(steps, e.Step)
		if e.Step < 1 {
			bus.Queue(Event{Kind: EventRotating, Step: 1})
		}
	})

	bus.Queue(Event{Kind: EventRotating, Step: 0.5})
	if len(steps) != 0 {
		t.Fatalf("expected no delivery before flush, got %v", steps)
	}
	bus.Flush()

	if len(steps) != 2 || steps[1] != 1 {
		t.Fatalf("expected [0.5 1], got %v", steps)
	}
	if bus.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", bus.Pending())
	}
}

type countingSystem struct {
	calls *[]string
	name  string
	queue EventKind
}

func (s countingSystem) Update(w *World) {
	*s.calls = append(*s.calls, s.name)
	if s.queue != EventNone {
		w.Events().Queue(Event{Kind: s.queue})
	}
}

func TestSchedulerRunsInOrderThenFlushes(t *testing.T) {
	w := NewWorld()
	var calls []string
	w.Events().Subscribe(EventLanded, func(Event) { calls = append(calls, "landed") })

	s := NewScheduler(
		countingSystem{calls: &calls, name: "a", queue: EventLanded},
		nil,
		countingSystem{calls: &calls, name: "b"},
	)
	if len(s.Systems()) != 2 {
		t.Fatalf("expected nil systems to be dropped, got %d", len(s.Systems()))
	}
	s.Update(w)

	expect := []string{"a", "b", "landed"}
	if len(calls) != len(expect) {
		t.Fatalf("expected %v, got %v", expect, calls)
	}
	for i := range expect {
		if calls[i] != expect[i] {
			t.Fatalf("expected %v, got %v", expect, calls)
		}
	}
}
