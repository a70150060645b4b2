package core

import "github.com/1siamBot/rrt-engine/engine/geom"

// Event represents a simulation event
type Event struct {
	Type    EventType
	Tick    uint64
	Payload interface{}
}

type EventType uint16

const (
	EvtMoveOrder EventType = iota
	EvtPlanned
	EvtArrived
	EvtBlocked
)

// MoveOrderPayload accompanies EvtMoveOrder
type MoveOrderPayload struct {
	Entity EntityID
	Goal   geom.Vec2
}

// PlannedPayload accompanies EvtPlanned
type PlannedPayload struct {
	Entity    EntityID
	Waypoints []geom.Vec2
	TreeNodes int
}

// AgentPayload accompanies EvtArrived and EvtBlocked
type AgentPayload struct {
	Entity   EntityID
	Position geom.Vec2
}

// EventBus dispatches events to listeners
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int { return len(eb.queue) }

// Dispatch processes all queued events. Events emitted by handlers are
// delivered on the next Dispatch.
func (eb *EventBus) Dispatch() {
	queue := eb.queue
	eb.queue = nil
	for _, e := range queue {
		if handlers, ok := eb.listeners[e.Type]; ok {
			for _, h := range handlers {
				h(e)
			}
		}
	}
}
