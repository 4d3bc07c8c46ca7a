package store

import (
	"context"
	"time"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

// Retention policy for the sweep: sold batches are kept one week after the
// sale, unsold batches three weeks after creation.
const (
	soldRetention      = 7 * 24 * time.Hour
	availableRetention = 21 * 24 * time.Hour
)

// InventoryStore owns flower batch rows. DecrementQuantity and
// IncrementQuantity are atomic with respect to concurrent calls on the same
// batch.
type InventoryStore interface {
	AddBatch(ctx context.Context, batch *model.FlowerBatch) error
	GetBatch(ctx context.Context, id uint) (*model.FlowerBatch, error)
	ListBatches(ctx context.Context, offset, limit int) ([]model.FlowerBatch, error)
	ListBatchesCreatedSince(ctx context.Context, since time.Time) ([]model.FlowerBatch, error)
	DecrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error)
	IncrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error)
	DeleteBatch(ctx context.Context, id uint) (*model.FlowerBatch, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// OrderStore reads committed orders. Writing happens only through OrderTx.
type OrderStore interface {
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	ListOrders(ctx context.Context, offset, limit int) ([]model.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uint) ([]model.Order, error)
}

// UserStore owns account rows.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id uint) (*model.User, error)
}

// SubscriberStore upserts broadcast targets.
type SubscriberStore interface {
	UpsertSubscriber(ctx context.Context, chatID string, active bool) (*model.Subscriber, error)
	ListActiveSubscribers(ctx context.Context) ([]model.Subscriber, error)
}

// OrderTx is the storage view inside a single order placement transaction.
// LockBatch holds the row against concurrent decrements until the
// transaction ends.
type OrderTx interface {
	LockBatch(ctx context.Context, id uint) (*model.FlowerBatch, error)
	SaveBatch(ctx context.Context, batch *model.FlowerBatch) error
	CreateOrder(ctx context.Context, order *model.Order) error
}

// TxRunner opens the transactional scope for order placement. If fn returns
// an error, nothing it did through the OrderTx is persisted.
type TxRunner interface {
	InOrderTx(ctx context.Context, fn func(tx OrderTx) error) error
}
