package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
)

// EventLeaveTransition is the SSE event name for transition notifications.
const EventLeaveTransition = "leave.transition"

// Sink delivers one event to a downstream channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event leave.TransitionEvent) error
}

// Config holds dispatcher configuration
type Config struct {
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	DeliveryTimeout time.Duration // default: 5 seconds
}

// Dispatcher fans committed transitions out to its sinks from background
// workers. Notify never blocks; a full queue drops the event.
type Dispatcher struct {
	sinks  []Sink
	config Config

	queue  chan leave.TransitionEvent
	wg     sync.WaitGroup
	stopCh chan struct{}

	// mu orders enqueues against Stop so nothing lands after the drain.
	mu      sync.RWMutex
	stopped bool
	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(cfg Config, sinks ...Sink) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		sinks:  sinks,
		config: cfg,
		queue:  make(chan leave.TransitionEvent, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("Notification dispatcher started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize, "sinks", len(sinks))
	return d
}

// Notify implements leave.Notifier.
func (d *Dispatcher) Notify(_ context.Context, event leave.TransitionEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- event:
	default:
		d.dropped.Add(1)
		slog.Warn("Notification queue full, dropping event",
			"request_id", event.RequestID,
			"action", event.Action,
		)
	}
}

// Dropped returns how many events were discarded.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.deliver(id, event)
		case <-d.stopCh:
			// Drain what is already queued
			for {
				select {
				case event := <-d.queue:
					d.deliver(id, event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(workerID int, event leave.TransitionEvent) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.config.DeliveryTimeout)
		err := sink.Deliver(ctx, event)
		cancel()
		if err != nil {
			slog.Error("Failed to deliver notification",
				"worker", workerID,
				"sink", sink.Name(),
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}

// Stop gracefully stops the workers after the queue drains
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.stopCh)
	d.wg.Wait()
	slog.Info("Notification dispatcher stopped", "dropped", d.dropped.Load())
}

// HubSink pushes events to the employee's own stream and to the role
// stream of whoever acts next.
type HubSink struct {
	hub *sse.Hub
}

func NewHubSink(hub *sse.Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Name() string { return "sse" }

func (s *HubSink) Deliver(_ context.Context, event leave.TransitionEvent) error {
	s.hub.PublishToMany(Topics(event), sse.Event{
		Event: EventLeaveTransition,
		Data:  event,
	})
	return nil
}

// Topics lists the SSE topics an event is published on.
func Topics(event leave.TransitionEvent) []string {
	topics := []string{event.EmployeeID}
	switch event.ToStatus {
	case leave.StatusPendingManager:
		topics = append(topics, sse.RoleTopic("manager"))
	case leave.StatusPendingHR:
		topics = append(topics, sse.RoleTopic("hr"))
	}
	return topics
}

// PublisherSink forwards events to the event stream.
type PublisherSink struct {
	publisher events.Publisher
}

func NewPublisherSink(publisher events.Publisher) *PublisherSink {
	return &PublisherSink{publisher: publisher}
}

func (s *PublisherSink) Name() string { return "kafka" }

func (s *PublisherSink) Deliver(ctx context.Context, event leave.TransitionEvent) error {
	return s.publisher.PublishTransition(ctx, event)
}
