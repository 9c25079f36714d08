package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/orderref"
	"restaurant-service/internal/pricing"
	"restaurant-service/internal/repository"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// maxReferenceAttempts bounds regeneration when a generated order number
// collides with a stored one. The random segment carries ~41 bits, so a
// second collision in a row means something is broken, not unlucky.
const maxReferenceAttempts = 5

const maxNotesLength = 1000

// Notifier is the post-commit notification hook. Implementations must be
// best-effort: they may log failures but never return them into the
// placement path.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order)
}

// PlaceOrderItem is one submitted cart line. UnitPrice is the client's
// claimed price; it is only trusted when no catalog entry overrides it.
type PlaceOrderItem struct {
	Name      string
	Size      string
	Quantity  int
	UnitPrice domain.Cents
}

type PlaceOrderInput struct {
	Items []PlaceOrderItem
	Type  domain.OrderType

	// Authenticated identity, when the session already knows the
	// customer. Nil for guest checkout.
	CustomerID *uint64

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	DeliveryAddress    string
	DeliveryCity       string
	DeliveryState      string
	DeliveryPostalCode string

	ScheduledDateTime *time.Time
	Notes             string
}

type OrderService struct {
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	foods      repository.FoodRepository
	calculator *pricing.Calculator
	refs       *orderref.Generator
	notifier   Notifier
	logger     *slog.Logger

	storeTimeout time.Duration
}

func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	foods repository.FoodRepository,
	calculator *pricing.Calculator,
	refs *orderref.Generator,
	notifier Notifier,
	logger *slog.Logger,
	storeTimeout time.Duration,
) *OrderService {
	return &OrderService{
		orders:       orders,
		customers:    customers,
		foods:        foods,
		calculator:   calculator,
		refs:         refs,
		notifier:     notifier,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// PlaceOrder runs the full submission workflow: validate, resolve the
// customer, price the cart server-side, persist order and items in one
// transaction under a fresh unique reference, then fire notifications.
// Any error before commit leaves no rows behind.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	customer, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	quote, err := s.calculator.Calculate(lines, input.Type)
	if err != nil {
		return nil, err
	}

	order, err := s.writeOrder(ctx, customer, quote, items, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		"order_number", order.OrderNumber,
		"type", order.Type,
		"total", order.Total.String(),
		"customer_id", customer.ID)

	// Post-commit, isolated from the transaction and the request
	// deadline. Dispatch failures are logged inside the notifier.
	notifyCtx, notifyCancel := context.WithTimeout(context.Background(), s.storeTimeout)
	defer notifyCancel()
	s.notifier.OrderPlaced(notifyCtx, order)

	return order, nil
}

// resolveCustomer maps the submission to a customer row: the
// authenticated identity when present, otherwise find-or-create by exact
// email match. A losing concurrent create falls back to re-reading the
// row the winner just made.
func (s *OrderService) resolveCustomer(ctx context.Context, input PlaceOrderInput) (*domain.Customer, error) {
	if input.CustomerID != nil {
		customer, err := s.customers.FindByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, ErrCustomerNotFound
		}
		return customer, nil
	}

	existing, err := s.customers.FindByEmail(ctx, input.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Last writer wins on contact details.
		if err := s.customers.UpdateContact(ctx, existing.ID, input.CustomerName, input.CustomerPhone); err != nil {
			return nil, err
		}
		existing.Name = input.CustomerName
		if input.CustomerPhone != "" {
			existing.Phone = input.CustomerPhone
		}
		return existing, nil
	}

	credential, err := randomCredential()
	if err != nil {
		return nil, err
	}
	created := &domain.Customer{
		Name:         input.CustomerName,
		Email:        input.CustomerEmail,
		Phone:        input.CustomerPhone,
		PasswordHash: credential,
	}
	err = s.customers.Create(ctx, created)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}

	// Another submission with the same new email won the race; the email
	// unique index is the arbiter. Use the winner's row.
	winner, findErr := s.customers.FindByEmail(ctx, input.CustomerEmail)
	if findErr != nil {
		return nil, findErr
	}
	if winner == nil {
		return nil, fmt.Errorf("resolve customer %s: %w", input.CustomerEmail, err)
	}
	return winner, nil
}

// resolveItems builds the order-item snapshots. When an active catalog
// entry matches the submitted name and size exactly, the catalog price is
// authoritative; otherwise the submitted price stands and the item stays
// unlinked.
func (s *OrderService) resolveItems(ctx context.Context, submitted []PlaceOrderItem) ([]domain.OrderItem, []pricing.LineItem, error) {
	items := make([]domain.OrderItem, 0, len(submitted))
	lines := make([]pricing.LineItem, 0, len(submitted))

	for _, in := range submitted {
		unitPrice := in.UnitPrice
		var foodID *uint64

		food, err := s.foods.FindActiveByName(ctx, in.Name)
		if err != nil {
			return nil, nil, err
		}
		if food != nil {
			foodID = &food.ID
			if price, ok := food.PriceFor(in.Size); ok {
				unitPrice = price
			}
		}

		items = append(items, domain.OrderItem{
			FoodID:    foodID,
			FoodName:  in.Name,
			SizeName:  in.Size,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
		})
		lines = append(lines, pricing.LineItem{
			UnitPrice: unitPrice,
			Quantity:  in.Quantity,
		})
	}

	return items, lines, nil
}

// writeOrder persists the order under a freshly generated reference,
// regenerating on a reference collision up to maxReferenceAttempts times.
func (s *OrderService) writeOrder(
	ctx context.Context,
	customer *domain.Customer,
	quote pricing.Quote,
	items []domain.OrderItem,
	input PlaceOrderInput,
) (*domain.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		number, err := s.refs.Next()
		if err != nil {
			return nil, err
		}

		order := &domain.Order{
			CustomerID:  customer.ID,
			OrderNumber: number,
			Status:      domain.StatusPending,
			Type:        input.Type,

			Subtotal:    quote.Subtotal,
			Tax:         quote.Tax,
			DeliveryFee: quote.DeliveryFee,
			Total:       quote.Total,

			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			CustomerPhone: input.CustomerPhone,

			DeliveryAddress:    input.DeliveryAddress,
			DeliveryCity:       input.DeliveryCity,
			DeliveryState:      input.DeliveryState,
			DeliveryPostalCode: input.DeliveryPostalCode,

			ScheduledDateTime: input.ScheduledDateTime,
			Notes:             input.Notes,

			Items: cloneItems(items),
		}

		err = s.orders.CreateWithItems(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}

		lastErr = err
		s.logger.Warn("order number collision, regenerating",
			"order_number", number,
			"attempt", attempt)
	}
	return nil, fmt.Errorf("order number generation exhausted after %d attempts: %w", maxReferenceAttempts, lastErr)
}

func cloneItems(items []domain.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	copy(out, items)
	return out
}

func validatePlaceOrder(input PlaceOrderInput) error {
	verr := domain.NewValidationError()

	if len(input.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			verr.Add(fmt.Sprintf("items[%d].name", i), "is required")
		}
		if strings.TrimSpace(item.Size) == "" {
			verr.Add(fmt.Sprintf("items[%d].size", i), "is required")
		}
		if item.Quantity < 1 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if item.UnitPrice < 0 {
			verr.Add(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative")
		}
	}

	if !input.Type.Valid() {
		verr.Add("type", "must be one of pickup, delivery, reservation")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		verr.Add("customer_name", "is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		verr.Add("customer_email", "is required")
	}
	if input.Type == domain.TypeDelivery && strings.TrimSpace(input.DeliveryAddress) == "" {
		verr.Add("delivery_address", "is required for delivery orders")
	}
	if len(input.Notes) > maxNotesLength {
		verr.Add("notes", fmt.Sprintf("must be at most %d characters", maxNotesLength))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// randomCredential produces the unusable placeholder credential stored on
// guest-created accounts. crypto/rand only; a login is established later
// through the reset flow.
func randomCredential() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate credential: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GetOrder returns the hydrated order or ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetOrderByNumber looks an order up by its human-facing reference.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	o, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders is the admin listing with optional status/type filters.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		verr := domain.NewValidationError()
		verr.Add("status", "unknown status")
		return nil, verr
	}
	if filter.Type != "" && !filter.Type.Valid() {
		verr := domain.NewValidationError()
		verr.Add("type", "unknown type")
		return nil, verr
	}
	return s.orders.List(ctx, filter)
}

func (s *OrderService) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	return s.orders.CountByStatus(ctx)
}

// UpdateOrderStatus applies a staff status transition, optionally
// updating the internal notes. Moving to ready stamps ready_at.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus, adminNotes *string) (*domain.Order, error) {
	if !status.Valid() {
		verr := domain.NewValidationError()
		verr.Add("status", "unknown status")
		return nil, verr
	}

	o, err := s.orders.UpdateStatus(ctx, id, repository.StatusUpdate{
		Status:     status,
		AdminNotes: adminNotes,
	})
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	s.logger.Info("order status updated",
		"order_id", id,
		"order_number", o.OrderNumber,
		"status", status)
	return o, nil
}
