package domain

import "time"

// OrderPlacedEvent is published after the order transaction commits, for
// operational consumers (dashboards, fulfilment screens).
type OrderPlacedEvent struct {
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Type        OrderType `json:"type"`
	Total       Cents     `json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderNotification is the payload handed to the mail channel. It carries
// everything a confirmation message needs so the consumer never has to
// query the store.
type OrderNotification struct {
	Recipient     string             `json:"recipient"`
	OrderNumber   string             `json:"orderNumber"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Type          OrderType          `json:"type"`
	Status        OrderStatus        `json:"status"`
	Items         []NotificationItem `json:"items"`
	Subtotal      Cents              `json:"subtotal"`
	Tax           Cents              `json:"tax"`
	DeliveryFee   Cents              `json:"deliveryFee"`
	Total         Cents              `json:"total"`

	DeliveryAddress   string     `json:"deliveryAddress,omitempty"`
	ScheduledDateTime *time.Time `json:"scheduledDateTime,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type NotificationItem struct {
	FoodName   string `json:"foodName"`
	SizeName   string `json:"sizeName"`
	Quantity   int    `json:"quantity"`
	UnitPrice  Cents  `json:"unitPrice"`
	TotalPrice Cents  `json:"totalPrice"`
}

// NotificationFromOrder builds the payload for a given recipient address.
func NotificationFromOrder(order *Order, recipient string) OrderNotification {
	items := make([]NotificationItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, NotificationItem{
			FoodName:   it.FoodName,
			SizeName:   it.SizeName,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return OrderNotification{
		Recipient:         recipient,
		OrderNumber:       order.OrderNumber,
		CustomerName:      order.CustomerName,
		CustomerEmail:     order.CustomerEmail,
		Type:              order.Type,
		Status:            order.Status,
		Items:             items,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		DeliveryFee:       order.DeliveryFee,
		Total:             order.Total,
		DeliveryAddress:   order.DeliveryAddress,
		ScheduledDateTime: order.ScheduledDateTime,
		Notes:             order.Notes,
	}
}
