package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item listed for sale by a user.
type Product struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Title     string          `json:"title" gorm:"size:255;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	UserID    uint            `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}
