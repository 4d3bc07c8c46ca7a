// Package notify dispatches events to an external messaging channel.
// Delivery is fire-and-forget: failures are logged and counted, never
// returned to the operation that triggered the event.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// Sender performs the actual delivery. Implementations are external
// collaborators; only this contract is owned here.
type Sender interface {
	SendOrderPlaced(ctx context.Context, event OrderPlaced) error
	SendNewInventory(ctx context.Context, event NewInventoryBroadcast) error
}

const sendTimeout = 10 * time.Second

type job func(ctx context.Context, sender Sender) error

// Dispatcher queues events on a bounded channel and delivers them from a
// worker goroutine, decoupled from the request path. Enqueueing never
// blocks; when the queue is full the event is dropped with a warning.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	queue  chan job

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewDispatcher builds a dispatcher and starts its worker.
func NewDispatcher(sender Sender, log *zap.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		sender: sender,
		log:    log,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := j(ctx, d.sender); err != nil {
			prometheus.DispatchFailedTotal.Inc()
			d.log.Error("notification delivery failed", zap.Error(err))
		} else {
			prometheus.DispatchDeliveredTotal.Inc()
		}
		cancel()
	}
}

func (d *Dispatcher) enqueue(kind string, j job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		prometheus.DispatchFailedTotal.Inc()
		d.log.Warn("dispatcher closed, dropping event", zap.String("event", kind))
		return
	}
	select {
	case d.queue <- j:
	default:
		prometheus.DispatchFailedTotal.Inc()
		d.log.Warn("notification queue full, dropping event", zap.String("event", kind))
	}
}

// OrderPlaced enqueues an order notification. Safe to call from the request
// path after commit; it returns immediately.
func (d *Dispatcher) OrderPlaced(event OrderPlaced) {
	d.enqueue("order_placed", func(ctx context.Context, sender Sender) error {
		return sender.SendOrderPlaced(ctx, event)
	})
}

// NewInventory enqueues a new-inventory broadcast.
func (d *Dispatcher) NewInventory(event NewInventoryBroadcast) {
	d.enqueue("new_inventory", func(ctx context.Context, sender Sender) error {
		return sender.SendNewInventory(ctx, event)
	})
}

// Close stops accepting events and waits for the queue to drain. Events
// enqueued after Close are dropped, never a panic.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// LogSender writes rendered events to the log. It is the default Sender
// when no messaging channel is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) SendOrderPlaced(ctx context.Context, event OrderPlaced) error {
	s.Log.Info("order placed",
		zap.Uint("order_id", event.OrderID),
		zap.String("customer", event.CustomerUsername),
		zap.String("customer_name", event.CustomerName),
		zap.String("address", event.CustomerAddress),
		zap.String("comment", event.Comment),
		zap.Int("item_count", len(event.Items)),
	)
	return nil
}

func (s *LogSender) SendNewInventory(ctx context.Context, event NewInventoryBroadcast) error {
	s.Log.Info("new inventory broadcast",
		zap.Int("batch_count", len(event.Batches)),
	)
	return nil
}
