package runtime

import (
	"live-poll/contract"
	"live-poll/domain/event"
	"live-poll/observability"
	"log/slog"
)

var _ contract.IBroadcaster = (*Broadcaster)(nil)

// Broadcaster pushes one event to every registered connection, best effort.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
	metrics  *observability.Metrics
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry, metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{log: log, registry: registry, metrics: metrics}
}

// Broadcast encodes the event once and hands the same bytes to each connection.
// A connection that cannot take the message is unregistered; the others are unaffected
// and nothing is reported to the caller.
func (b *Broadcaster) Broadcast(evt event.DomainEvent) {
	payload, err := event.Encode(evt)
	if err != nil {
		b.log.Error("Unable to encode event", "type", evt.Type(), "error", err)
		return
	}

	delivered := 0
	for conn := range b.registry.All() {
		if err := conn.Send(payload); err != nil {
			b.log.Warn("Delivery failed, dropping connection",
				"connection_id", conn.ID(), "type", evt.Type(), "error", err)
			b.registry.Unregister(conn)
			b.metrics.IncrDeliveryFailure()
			continue
		}
		delivered++
	}

	b.metrics.IncrBroadcast(string(evt.Type()))
	b.log.Debug("Event broadcast",
		"type", evt.Type(), "poll_id", evt.Snapshot().ID, "delivered", delivered)
}
