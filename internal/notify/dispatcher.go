// Package notify sends best-effort, at-most-once order notifications over
// the message exchange. It runs strictly after the order transaction has
// committed; nothing here can affect order success.
package notify

import (
	"context"
	"log/slog"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/infra/rabbitmq"
)

const (
	RouteCustomerConfirmation = "order.confirmation.customer"
	RouteStaffNotification    = "order.notification.staff"
	RouteOrderPlaced          = "order.placed"
)

type Dispatcher struct {
	publisher  rabbitmq.PublisherInterface
	staffEmail string
	logger     *slog.Logger
}

func NewDispatcher(publisher rabbitmq.PublisherInterface, staffEmail string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher:  publisher,
		staffEmail: staffEmail,
		logger:     logger,
	}
}

// OrderPlaced publishes the customer confirmation, the staff notification
// and the placed event. The three attempts are independent: a failure in
// one never prevents the others, and failures are only logged.
func (d *Dispatcher) OrderPlaced(ctx context.Context, order *domain.Order) {
	d.send(ctx, RouteCustomerConfirmation, order.OrderNumber,
		domain.NotificationFromOrder(order, order.CustomerEmail))

	d.send(ctx, RouteStaffNotification, order.OrderNumber,
		domain.NotificationFromOrder(order, d.staffEmail))

	d.send(ctx, RouteOrderPlaced, order.OrderNumber, domain.OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Type:        order.Type,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
	})
}

func (d *Dispatcher) send(ctx context.Context, routingKey, orderNumber string, payload any) {
	if err := d.publisher.Publish(ctx, routingKey, payload); err != nil {
		d.logger.Error("notification publish failed",
			"routing_key", routingKey,
			"order_number", orderNumber,
			"error", err)
		return
	}
	d.logger.Debug("notification published",
		"routing_key", routingKey,
		"order_number", orderNumber)
}
