package model

import "time"

// User represents a marketplace account. The password hash and auth token are
// never serialized from the model; responses are built explicitly in the
// handler layer.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	AuthToken    *string   `json:"-" gorm:"uniqueIndex;size:64"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Products []Product `json:"-" gorm:"foreignKey:UserID"`
}
