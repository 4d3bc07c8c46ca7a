package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubSender struct {
	mu       sync.Mutex
	orders   []OrderPlaced
	batches  []NewInventoryBroadcast
	failWith error
	done     chan struct{}
}

func newStubSender(expected int) *stubSender {
	return &stubSender{done: make(chan struct{}, expected)}
}

func (s *stubSender) SendOrderPlaced(ctx context.Context, event OrderPlaced) error {
	s.mu.Lock()
	s.orders = append(s.orders, event)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.failWith
}

func (s *stubSender) SendNewInventory(ctx context.Context, event NewInventoryBroadcast) error {
	s.mu.Lock()
	s.batches = append(s.batches, event)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.failWith
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func TestDispatcher_DeliversOrderEvent(t *testing.T) {
	t.Parallel()

	sender := newStubSender(1)
	d := NewDispatcher(sender, zap.NewNop(), 4)
	defer d.Close()

	d.OrderPlaced(OrderPlaced{OrderID: 7, CustomerUsername: "alice"})
	waitFor(t, sender.done)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.orders) != 1 || sender.orders[0].OrderID != 7 {
		t.Fatalf("unexpected deliveries: %+v", sender.orders)
	}
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	sender := newStubSender(2)
	sender.failWith = errors.New("channel unreachable")
	d := NewDispatcher(sender, zap.NewNop(), 4)
	defer d.Close()

	// neither call may panic or block, even though delivery fails
	d.OrderPlaced(OrderPlaced{OrderID: 1})
	d.NewInventory(NewInventoryBroadcast{})
	waitFor(t, sender.done)
	waitFor(t, sender.done)
}

func TestDispatcher_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	// a sender that blocks until released, so the queue can fill up
	release := make(chan struct{})
	blocking := &blockingSender{release: release}
	d := NewDispatcher(blocking, zap.NewNop(), 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.OrderPlaced(OrderPlaced{OrderID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full queue")
	}

	close(release)
	d.Close()
}

type blockingSender struct {
	release chan struct{}
}

func (s *blockingSender) SendOrderPlaced(ctx context.Context, event OrderPlaced) error {
	<-s.release
	return nil
}

func (s *blockingSender) SendNewInventory(ctx context.Context, event NewInventoryBroadcast) error {
	<-s.release
	return nil
}

func TestDispatcher_EnqueueAfterCloseDropsWithoutPanic(t *testing.T) {
	t.Parallel()

	sender := newStubSender(1)
	d := NewDispatcher(sender, zap.NewNop(), 4)
	d.Close()

	// must drop silently instead of sending on the closed queue
	d.OrderPlaced(OrderPlaced{OrderID: 1})
	d.NewInventory(NewInventoryBroadcast{})

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.orders) != 0 || len(sender.batches) != 0 {
		t.Fatalf("events delivered after Close: %d orders, %d broadcasts",
			len(sender.orders), len(sender.batches))
	}
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	t.Parallel()

	sender := newStubSender(3)
	d := NewDispatcher(sender, zap.NewNop(), 8)

	for i := 0; i < 3; i++ {
		d.OrderPlaced(OrderPlaced{OrderID: uint(i + 1)})
	}
	d.Close()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.orders) != 3 {
		t.Fatalf("Close did not drain the queue: delivered %d of 3", len(sender.orders))
	}
}
