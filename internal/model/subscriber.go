package model

import (
	"time"
)

// Subscriber is a broadcast target. Rows are upserted on subscribe and
// unsubscribe events arriving from the messaging side.
type Subscriber struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
