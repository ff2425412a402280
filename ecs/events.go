package ecs

// EventKind identifies gameplay events.
type EventKind int

const (
	EventNone EventKind = iota

	// Action signals.
	EventEnteredDoor
	EventJumped
	EventClimbedLadder
	EventClimbedVine
	EventLookedAround
	EventLiftedObject
	EventThrewObject
	EventOpenedMenuCube
	EventReadHeard
	EventGrabbedLedge
	EventDroppedObject
	EventDroppedLedge
	EventHoisted
	EventClimbedOverLadder
	EventDroppedFromLadder
	EventCollectedSmallCube
	EventCollectedBigCube
	EventOpenedTreasure
	EventCollectedAntiCube
	EventLanded
	EventEnterFirstPersonMode
	EventExitFirstPersonMode
	EventWalkedTo

	// Camera.
	EventPreRotate
	EventRotating
	EventRotated

	// Level.
	EventLevelChanged
	EventPuzzleResolved

	// Characters.
	EventNpcSpoke
	EventCodeEntered

	eventKindCount
)

var eventNames = [eventKindCount]string{
	"none",
	"entered_door", "jumped", "climbed_ladder", "climbed_vine", "looked_around",
	"lifted_object", "threw_object", "opened_menu_cube", "read_heard",
	"grabbed_ledge", "dropped_object", "dropped_ledge", "hoisted",
	"climbed_over_ladder", "dropped_from_ladder", "collected_small_cube",
	"collected_big_cube", "opened_treasure", "collected_anti_cube", "landed",
	"enter_first_person_mode", "exit_first_person_mode", "walked_to",
	"pre_rotate", "rotating", "rotated",
	"level_changed", "puzzle_resolved",
	"npc_spoke", "code_entered",
}

func (k EventKind) String() string {
	if k < 0 || k >= eventKindCount {
		return "invalid"
	}
	return eventNames[k]
}

// Event is a gameplay event. Step carries the tween progress of
// EventRotating; Name carries level or puzzle names, or the line an
// npc says.
type Event struct {
	Kind   EventKind
	Entity Entity
	Step   float64
	Name   string
}

type subscriber struct {
	id int
	fn func(Event)
}

// EventBus delivers events to subscribers. Emit is synchronous; Queue
// defers delivery until Flush, which the scheduler calls after every tick.
type EventBus struct {
	subs    map[EventKind][]subscriber
	nextID  int
	pending []Event
}

// Subscribe registers fn for kind and returns a function that removes it.
func (b *EventBus) Subscribe(kind EventKind, fn func(Event)) func() {
	if b == nil || fn == nil {
		return func() {}
	}
	if b.subs == nil {
		b.subs = make(map[EventKind][]subscriber)
	}
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscriber{id: id, fn: fn})
	return func() {
		list := b.subs[kind]
		for i, s := range list {
			if s.id == id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers evt to every subscriber of its kind, in subscription order.
func (b *EventBus) Emit(evt Event) {
	if b == nil {
		return
	}
	// Handlers may subscribe or unsubscribe while we deliver.
	list := append([]subscriber(nil), b.subs[evt.Kind]...)
	for _, s := range list {
		s.fn(evt)
	}
}

// Queue defers evt until the next Flush.
func (b *EventBus) Queue(evt Event) {
	if b == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Flush delivers queued events. Events queued by handlers are delivered in
// the same flush.
func (b *EventBus) Flush() {
	if b == nil {
		return
	}
	for len(b.pending) > 0 {
		evt := b.pending[0]
		b.pending = b.pending[1:]
		b.Emit(evt)
	}
	b.pending = nil
}

// Pending returns the number of queued events.
func (b *EventBus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}
