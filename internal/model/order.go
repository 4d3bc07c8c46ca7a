package model

import (
	"time"
)

// Order status values. Only "new" is produced here; the other transitions
// belong to a fulfilment flow outside this service.
const (
	OrderStatusNew       = "new"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a customer's committed purchase. Items are immutable once the
// order row exists; each item snapshots the batch price at decrement time.
type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	CustomerID      uint        `json:"customer_id" gorm:"index;not null"`
	Status          string      `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	CustomerComment string      `json:"customer_comment" gorm:"type:text"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem references a batch weakly: the batch may be deleted later
// without invalidating the item, since the price is captured here.
type OrderItem struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	OrderID            uint    `json:"order_id" gorm:"index;not null"`
	FlowerBatchID      uint    `json:"flower_batch_id" gorm:"index;not null"`
	Quantity           int     `json:"quantity" gorm:"not null"`
	PriceAtTimeOfOrder float64 `json:"price_at_time_of_order" gorm:"not null"`
}

// Total sums the snapshot prices of all items.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.PriceAtTimeOfOrder * float64(item.Quantity)
	}
	return total
}
