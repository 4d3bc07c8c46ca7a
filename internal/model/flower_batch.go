package model

import (
	"time"
)

// Batch status values.
const (
	BatchStatusAvailable = "available"
	BatchStatusSold      = "sold"
)

// FlowerBatch represents a priced, quantified lot of inventory.
type FlowerBatch struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null;index"`
	Description string     `json:"description" gorm:"type:text"`
	Price       float64    `json:"price" gorm:"not null"`
	Quantity    int        `json:"quantity" gorm:"not null;default:0"`
	ImageURL    string     `json:"image_url" gorm:"type:varchar(512)"`
	Status      string     `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	CreatedAt   time.Time  `json:"created_at"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
}

// NewFlowerBatch builds a batch holding the status invariant: a batch created
// with zero quantity is sold from the start, with sold_at set.
func NewFlowerBatch(name, description string, price float64, quantity int, imageURL string, now time.Time) *FlowerBatch {
	b := &FlowerBatch{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		ImageURL:    imageURL,
		Status:      BatchStatusAvailable,
		CreatedAt:   now,
	}
	if quantity == 0 {
		b.Status = BatchStatusSold
		soldAt := now
		b.SoldAt = &soldAt
	}
	return b
}

// Take removes quantity from the batch, flipping it to sold when it hits
// zero. The caller owns the transactional boundary; Take only enforces the
// quantity and status rules.
func (b *FlowerBatch) Take(quantity int, now time.Time) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}
	if b.Quantity < quantity {
		return &InsufficientStockError{
			BatchID:   b.ID,
			BatchName: b.Name,
			Available: b.Quantity,
			Requested: quantity,
		}
	}
	b.Quantity -= quantity
	if b.Quantity == 0 {
		b.Status = BatchStatusSold
		soldAt := now
		b.SoldAt = &soldAt
	}
	return nil
}

// Restock adds quantity back. A sold batch becomes available again and its
// sold_at is cleared.
func (b *FlowerBatch) Restock(quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}
	b.Quantity += quantity
	if b.Status == BatchStatusSold {
		b.Status = BatchStatusAvailable
		b.SoldAt = nil
	}
	return nil
}
