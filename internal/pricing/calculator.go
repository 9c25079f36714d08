// Package pricing derives authoritative server-side order totals from
// validated line items. Client-submitted totals are never consulted; only
// unit prices and quantities go in.
package pricing

import (
	"fmt"

	"restaurant-service/internal/domain"
)

// LineItem is one priced cart entry.
type LineItem struct {
	UnitPrice domain.Cents
	Quantity  int
}

// Quote is the computed money breakdown for an order.
type Quote struct {
	Subtotal    domain.Cents
	Tax         domain.Cents
	DeliveryFee domain.Cents
	Total       domain.Cents
}

// Calculator computes quotes from configured constants. All arithmetic is
// integer cents; the only rounding point is the tax multiplication, which
// rounds half-up to the nearest cent.
type Calculator struct {
	taxRate     float64
	deliveryFee domain.Cents
}

func NewCalculator(taxRate float64, deliveryFee domain.Cents) *Calculator {
	return &Calculator{taxRate: taxRate, deliveryFee: deliveryFee}
}

// Calculate prices the given items for a fulfillment type. It rejects
// empty carts, non-positive quantities and negative prices instead of
// silently computing garbage.
func (c *Calculator) Calculate(items []LineItem, orderType domain.OrderType) (Quote, error) {
	verr := domain.NewValidationError()
	if len(items) == 0 {
		verr.Add("items", "at least one item is required")
		return Quote{}, verr
	}
	if !orderType.Valid() {
		verr.Add("type", "must be one of pickup, delivery, reservation")
	}
	for i, item := range items {
		if item.Quantity < 1 {
			verr.Add(itemField(i, "quantity"), "must be at least 1")
		}
		if item.UnitPrice < 0 {
			verr.Add(itemField(i, "unitPrice"), "must not be negative")
		}
	}
	if verr.HasErrors() {
		return Quote{}, verr
	}

	var subtotal domain.Cents
	for _, item := range items {
		subtotal += item.UnitPrice.MulQty(item.Quantity)
	}

	q := Quote{
		Subtotal: subtotal,
		Tax:      subtotal.MulRate(c.taxRate),
	}
	if orderType == domain.TypeDelivery {
		q.DeliveryFee = c.deliveryFee
	}
	q.Total = q.Subtotal + q.Tax + q.DeliveryFee
	return q, nil
}

func itemField(i int, field string) string {
	return fmt.Sprintf("items[%d].%s", i, field)
}
