package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventCallSucceeded EventType = "call_succeeded"
	EventCallFailed    EventType = "call_failed"
	EventCallRejected  EventType = "call_rejected"
	EventStateChanged  EventType = "state_changed"
)

type BreakerEvent struct {
	Type      EventType
	Timestamp time.Time
	Breaker   string
	From      string
	To        string
}

type Collector struct {
	eventCh chan BreakerEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan BreakerEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- BreakerEvent {
	return c.eventCh
}

// Emit sends an event without blocking. When the buffer is full the
// event is dropped so a slow collector never stalls a caller holding
// a breaker lock.
func (c *Collector) Emit(event BreakerEvent) {
	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Breaker metrics collector started")
	defer c.logger.Info("Breaker metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event BreakerEvent) {
	switch event.Type {
	case EventCallSucceeded:
		c.metrics.RecordSuccess(event.Breaker)

	case EventCallFailed:
		c.metrics.RecordFailure(event.Breaker)

	case EventCallRejected:
		c.metrics.RecordRejection(event.Breaker)

	case EventStateChanged:
		c.metrics.RecordTransition(event.Breaker, event.To, event.Timestamp)
		c.logger.Info("Circuit breaker state changed",
			slog.String("breaker", event.Breaker),
			slog.String("from", event.From),
			slog.String("to", event.To))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
