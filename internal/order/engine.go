// Package order implements the transactional order placement engine.
package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/notify"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// Line is one requested item of an order.
type Line struct {
	BatchID  uint `json:"flower_batch_id"`
	Quantity int  `json:"quantity"`
}

// Dispatcher receives the post-commit event. Enqueueing must not block and
// its outcome never reaches the order's caller.
type Dispatcher interface {
	OrderPlaced(event notify.OrderPlaced)
}

// Engine commits multi-item orders against the inventory atomically. Any
// single failed line fails the whole order and rolls back every decrement
// made for it.
type Engine struct {
	tx         store.TxRunner
	users      store.UserStore
	dispatcher Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

// NewEngine wires the engine to its collaborators.
func NewEngine(tx store.TxRunner, users store.UserStore, dispatcher Dispatcher, log *zap.Logger) *Engine {
	return &Engine{
		tx:         tx,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder validates and commits the order as one transaction, then
// emits the notification event. Lines are processed in the order given.
func (e *Engine) PlaceOrder(ctx context.Context, customerID uint, lines []Line, comment string) (*model.Order, error) {
	if len(lines) == 0 {
		prometheus.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		return nil, &model.ValidationError{Field: "items", Message: "order must contain at least one item"}
	}

	customer, err := e.users.GetUser(ctx, customerID)
	if err != nil {
		prometheus.OrdersRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	placedAt := e.now()
	ord := &model.Order{
		CustomerID:      customerID,
		Status:          model.OrderStatusNew,
		CustomerComment: comment,
		CreatedAt:       placedAt,
	}
	eventItems := make([]notify.OrderPlacedItem, 0, len(lines))

	err = e.tx.InOrderTx(ctx, func(tx store.OrderTx) error {
		for _, line := range lines {
			if line.Quantity <= 0 {
				return &model.ValidationError{Field: "quantity", Message: "quantity must be positive"}
			}
			batch, err := tx.LockBatch(ctx, line.BatchID)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return &model.BatchNotFoundError{BatchID: line.BatchID}
				}
				return err
			}
			if err := batch.Take(line.Quantity, placedAt); err != nil {
				return err
			}
			if err := tx.SaveBatch(ctx, batch); err != nil {
				return err
			}
			ord.Items = append(ord.Items, model.OrderItem{
				FlowerBatchID:      batch.ID,
				Quantity:           line.Quantity,
				PriceAtTimeOfOrder: batch.Price,
			})
			eventItems = append(eventItems, notify.OrderPlacedItem{
				Name:        batch.Name,
				Description: batch.Description,
				Quantity:    line.Quantity,
			})
		}
		return tx.CreateOrder(ctx, ord)
	})
	if err != nil {
		prometheus.OrdersRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	prometheus.OrdersPlacedTotal.Inc()
	e.log.Info("order committed",
		zap.Uint("order_id", ord.ID),
		zap.Uint("customer_id", customerID),
		zap.Int("item_count", len(ord.Items)),
	)

	// Dispatch runs after commit; its outcome cannot affect the order.
	e.dispatcher.OrderPlaced(notify.OrderPlaced{
		OrderID:          ord.ID,
		CustomerName:     customer.ContactName,
		CustomerUsername: customer.Username,
		CustomerAddress:  customer.Address,
		Comment:          comment,
		Items:            eventItems,
	})

	return ord, nil
}

func rejectReason(err error) string {
	var insufficient *model.InsufficientStockError
	var notFound *model.BatchNotFoundError
	var validation *model.ValidationError
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.As(err, &notFound):
		return "batch_not_found"
	case errors.As(err, &validation):
		return "validation"
	case errors.Is(err, model.ErrNotFound):
		return "customer_not_found"
	default:
		return "internal"
	}
}
