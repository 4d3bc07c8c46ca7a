package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

// MemoryStore is an in-memory implementation of every store interface.
// It backs local development and tests; a single mutex gives it the same
// serializable per-batch semantics the postgres store gets from row locks.
type MemoryStore struct {
	mu sync.Mutex

	batches     map[uint]*model.FlowerBatch
	orders      map[uint]*model.Order
	users       map[uint]*model.User
	subscribers map[string]*model.Subscriber

	nextBatchID uint
	nextOrderID uint
	nextItemID  uint
	nextUserID  uint
	nextSubID   uint
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches:     make(map[uint]*model.FlowerBatch),
		orders:      make(map[uint]*model.Order),
		users:       make(map[uint]*model.User),
		subscribers: make(map[string]*model.Subscriber),
	}
}

func copyBatch(b *model.FlowerBatch) *model.FlowerBatch {
	c := *b
	if b.SoldAt != nil {
		soldAt := *b.SoldAt
		c.SoldAt = &soldAt
	}
	return &c
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

// --- InventoryStore ---

func (s *MemoryStore) AddBatch(ctx context.Context, batch *model.FlowerBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBatchID++
	batch.ID = s.nextBatchID
	s.batches[batch.ID] = copyBatch(batch)
	return nil
}

func (s *MemoryStore) GetBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyBatch(batch), nil
}

func (s *MemoryStore) sortedBatches() []*model.FlowerBatch {
	ids := make([]uint, 0, len(s.batches))
	for id := range s.batches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*model.FlowerBatch, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.batches[id])
	}
	return out
}

func (s *MemoryStore) ListBatches(ctx context.Context, offset, limit int) ([]model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedBatches()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []model.FlowerBatch{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]model.FlowerBatch, 0, len(all))
	for _, b := range all {
		out = append(out, *copyBatch(b))
	}
	return out, nil
}

func (s *MemoryStore) ListBatchesCreatedSince(ctx context.Context, since time.Time) ([]model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FlowerBatch
	for _, b := range s.sortedBatches() {
		if !b.CreatedAt.Before(since) {
			out = append(out, *copyBatch(b))
		}
	}
	return out, nil
}

func (s *MemoryStore) DecrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if err := batch.Take(quantity, time.Now().UTC()); err != nil {
		return nil, err
	}
	return copyBatch(batch), nil
}

func (s *MemoryStore) IncrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if err := batch.Restock(quantity); err != nil {
		return nil, err
	}
	return copyBatch(batch), nil
}

func (s *MemoryStore) DeleteBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	delete(s.batches, id)
	return copyBatch(batch), nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, b := range s.batches {
		expired := (b.Status == model.BatchStatusSold && b.SoldAt != nil && !b.SoldAt.After(now.Add(-soldRetention))) ||
			(b.Status == model.BatchStatusAvailable && !b.CreatedAt.After(now.Add(-availableRetention)))
		if expired {
			delete(s.batches, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- OrderStore ---

func (s *MemoryStore) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyOrder(order), nil
}

func (s *MemoryStore) sortedOrdersDesc() []*model.Order {
	out := make([]*model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) ListOrders(ctx context.Context, offset, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedOrdersDesc()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []model.Order{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]model.Order, 0, len(all))
	for _, o := range all {
		out = append(out, *copyOrder(o))
	}
	return out, nil
}

func (s *MemoryStore) ListOrdersByCustomer(ctx context.Context, customerID uint) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.sortedOrdersDesc() {
		if o.CustomerID == customerID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

// --- UserStore ---

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	user.ID = s.nextUserID
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *user
	return &c, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			c := *user
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []model.User{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return model.ErrNotFound
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	delete(s.users, id)
	c := *user
	return &c, nil
}

// --- SubscriberStore ---

func (s *MemoryStore) UpsertSubscriber(ctx context.Context, chatID string, active bool) (*model.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if sub, ok := s.subscribers[chatID]; ok {
		sub.IsActive = active
		sub.UpdatedAt = now
		c := *sub
		return &c, nil
	}
	s.nextSubID++
	sub := &model.Subscriber{
		ID:        s.nextSubID,
		ChatID:    chatID,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.subscribers[chatID] = sub
	c := *sub
	return &c, nil
}

func (s *MemoryStore) ListActiveSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.subscribers))
	for k := range s.subscribers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []model.Subscriber
	for _, k := range keys {
		if s.subscribers[k].IsActive {
			out = append(out, *s.subscribers[k])
		}
	}
	return out, nil
}

// --- TxRunner ---

// memoryOrderTx stages every mutation so a failed order line leaves the
// store untouched, mirroring the rollback the database gives.
type memoryOrderTx struct {
	store   *MemoryStore
	staged  map[uint]*model.FlowerBatch
	pending []*model.Order
}

func (t *memoryOrderTx) LockBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	if staged, ok := t.staged[id]; ok {
		return copyBatch(staged), nil
	}
	batch, ok := t.store.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyBatch(batch), nil
}

func (t *memoryOrderTx) SaveBatch(ctx context.Context, batch *model.FlowerBatch) error {
	if _, ok := t.store.batches[batch.ID]; !ok {
		return model.ErrNotFound
	}
	t.staged[batch.ID] = copyBatch(batch)
	return nil
}

func (t *memoryOrderTx) CreateOrder(ctx context.Context, order *model.Order) error {
	t.pending = append(t.pending, order)
	return nil
}

// InOrderTx serializes order placement through the store mutex, so two
// concurrent orders on the same batch see each other's committed decrements.
func (s *MemoryStore) InOrderTx(ctx context.Context, fn func(tx OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryOrderTx{store: s, staged: make(map[uint]*model.FlowerBatch)}
	if err := fn(tx); err != nil {
		return err
	}

	for id, batch := range tx.staged {
		s.batches[id] = batch
	}
	for _, order := range tx.pending {
		s.nextOrderID++
		order.ID = s.nextOrderID
		for i := range order.Items {
			s.nextItemID++
			order.Items[i].ID = s.nextItemID
			order.Items[i].OrderID = order.ID
		}
		s.orders[order.ID] = copyOrder(order)
	}
	return nil
}
