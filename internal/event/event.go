package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// EventSchemaVersion is the current payload schema version
const EventSchemaVersion = "1.0"

// Common event types
const (
	ItemLiquidated     Type = domain.EventTypeItemLiquidated
	DeliveryDispatched Type = domain.EventTypeDeliveryDispatched
	DeliveryFinalized  Type = domain.EventTypeDeliveryFinalized
	DeliveryReversed   Type = domain.EventTypeDeliveryReversed
	SessionState       Type = domain.EventTypeSessionState
)

// NewItemLiquidatedEvent creates a new liquidation event
func NewItemLiquidatedEvent(userID string, entryIDs []string, credited domain.Money) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ItemLiquidated,
		Payload: domain.ItemLiquidatedPayload{
			UserID:    userID,
			EntryIDs:  entryIDs,
			Credited:  credited,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewDeliveryEvent creates a delivery lifecycle event of the given type
func NewDeliveryEvent(t Type, req *domain.DeliveryRequest) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: domain.DeliveryLifecyclePayload{
			DeliveryID: req.ID,
			UserID:     req.UserID,
			ProposalID: req.ProposalID,
			ItemCount:  len(req.EntryIDs),
			Outcome:    req.Outcome,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewSessionStateEvent creates a custody session state event
func NewSessionStateEvent(state string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionState,
		Payload: domain.SessionStatePayload{
			State:     state,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler error(s) for %s: %v", len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
