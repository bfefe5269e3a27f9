package metrics

import (
	"context"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/event"
	"github.com/gwskins/GWSkins_Go/internal/logger"
)

// sessionStates are every value the custody session gauge can take.
var sessionStates = []string{"signed_out", "authenticating", "authenticated", "expired"}

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.ItemLiquidated,
		event.DeliveryDispatched,
		event.DeliveryFinalized,
		event.DeliveryReversed,
		event.SessionState,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.ItemLiquidated:
		payload, ok := evt.Payload.(domain.ItemLiquidatedPayload)
		if !ok {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type)
			return nil
		}
		EntriesLiquidated.Add(float64(len(payload.EntryIDs)))
		MoneyCredited.Add(float64(payload.Credited))

	case event.DeliveryDispatched:
		DeliveriesDispatched.Inc()

	case event.DeliveryFinalized:
		DeliveriesFinalized.Inc()

	case event.DeliveryReversed:
		payload, ok := evt.Payload.(domain.DeliveryLifecyclePayload)
		if !ok {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type)
			return nil
		}
		DeliveriesReversed.WithLabelValues(string(payload.Outcome)).Inc()

	case event.SessionState:
		payload, ok := evt.Payload.(domain.SessionStatePayload)
		if !ok {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type)
			return nil
		}
		for _, s := range sessionStates {
			v := 0.0
			if s == payload.State {
				v = 1.0
			}
			SessionState.WithLabelValues(s).Set(v)
		}
	}

	return nil
}
