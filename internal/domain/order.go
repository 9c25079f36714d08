package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type OrderType string

const (
	TypePickup      OrderType = "pickup"
	TypeDelivery    OrderType = "delivery"
	TypeReservation OrderType = "reservation"
)

func (t OrderType) Valid() bool {
	switch t {
	case TypePickup, TypeDelivery, TypeReservation:
		return true
	}
	return false
}

type Order struct {
	ID          uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID  uint64      `json:"customerId" gorm:"not null;index"`
	Customer    *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OrderNumber string      `json:"orderNumber" gorm:"size:32;not null;uniqueIndex"`
	Status      OrderStatus `json:"status" gorm:"type:enum('pending','confirmed','preparing','ready','completed','cancelled');default:'pending'"`
	Type        OrderType   `json:"type" gorm:"type:enum('pickup','delivery','reservation');not null"`

	Subtotal    Cents `json:"subtotal" gorm:"not null"`
	Tax         Cents `json:"tax" gorm:"not null;default:0"`
	DeliveryFee Cents `json:"deliveryFee" gorm:"not null;default:0"`
	Total       Cents `json:"total" gorm:"not null"`

	// Contact snapshot, copied at submission and independent of the
	// customer record's later values.
	CustomerName  string `json:"customerName" gorm:"size:255;not null"`
	CustomerEmail string `json:"customerEmail" gorm:"size:255;not null;index"`
	CustomerPhone string `json:"customerPhone,omitempty" gorm:"size:20"`

	DeliveryAddress    string `json:"deliveryAddress,omitempty" gorm:"size:500"`
	DeliveryCity       string `json:"deliveryCity,omitempty" gorm:"size:100"`
	DeliveryState      string `json:"deliveryState,omitempty" gorm:"size:100"`
	DeliveryPostalCode string `json:"deliveryPostalCode,omitempty" gorm:"size:20"`

	ScheduledDateTime *time.Time `json:"scheduledDateTime,omitempty"`
	ReadyAt           *time.Time `json:"readyAt,omitempty"`

	Notes      string `json:"notes,omitempty" gorm:"type:text"`
	AdminNotes string `json:"adminNotes,omitempty" gorm:"type:text"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem is an immutable line snapshot. FoodID is provenance only; the
// snapshot fields stay authoritative even if the catalog entry changes or
// disappears.
type OrderItem struct {
	ID         uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID    uint64  `json:"orderId" gorm:"not null;index"`
	FoodID     *uint64 `json:"foodId,omitempty"`
	FoodName   string  `json:"foodName" gorm:"size:255;not null"`
	SizeName   string  `json:"sizeName" gorm:"size:255;not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	UnitPrice  Cents   `json:"unitPrice" gorm:"not null"`
	TotalPrice Cents   `json:"totalPrice" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
