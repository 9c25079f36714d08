package domain

import "time"

// Customer is the account a placed order is attached to. Guests get a
// record created on first order; PasswordHash starts as an unusable random
// credential until they go through a reset flow.
type Customer struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Phone        string `json:"phone,omitempty" gorm:"size:20"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`

	Address    string `json:"address,omitempty" gorm:"size:500"`
	City       string `json:"city,omitempty" gorm:"size:100"`
	State      string `json:"state,omitempty" gorm:"size:100"`
	PostalCode string `json:"postalCode,omitempty" gorm:"size:20"`

	Orders []Order `json:"-" gorm:"foreignKey:CustomerID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
