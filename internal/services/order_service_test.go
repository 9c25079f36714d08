package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/mocks"
	"restaurant-service/internal/orderref"
	"restaurant-service/internal/pricing"
	"restaurant-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceMocks struct {
	orders    *mocks.MockOrderRepository
	customers *mocks.MockCustomerRepository
	foods     *mocks.MockFoodRepository
	notifier  *mocks.MockNotifier
}

func newTestOrderService(t *testing.T) (*OrderService, *orderServiceMocks) {
	t.Helper()
	m := &orderServiceMocks{
		orders:    new(mocks.MockOrderRepository),
		customers: new(mocks.MockCustomerRepository),
		foods:     new(mocks.MockFoodRepository),
		notifier:  new(mocks.MockNotifier),
	}
	svc := NewOrderService(
		m.orders, m.customers, m.foods,
		pricing.NewCalculator(0.10, domain.Cents(500)),
		orderref.NewGenerator(),
		m.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		2*time.Second,
	)
	return svc, m
}

func (m *orderServiceMocks) assertExpectations(t *testing.T) {
	m.orders.AssertExpectations(t)
	m.customers.AssertExpectations(t)
	m.foods.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func guestInput() PlaceOrderInput {
	return PlaceOrderInput{
		Items: []PlaceOrderItem{
			{Name: "Jollof Rice", Size: "Full Pan", Quantity: 2, UnitPrice: domain.Cents(8000)},
		},
		Type:          domain.TypePickup,
		CustomerName:  "Ada Obi",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0101",
	}
}

// saveAssignsID emulates the store assigning a primary key on insert.
func saveAssignsID(id uint64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		order := args.Get(1).(*domain.Order)
		order.ID = id
		for i := range order.Items {
			order.Items[i].OrderID = id
			order.Items[i].TotalPrice = order.Items[i].UnitPrice.MulQty(order.Items[i].Quantity)
		}
	}
}

func TestOrderService_PlaceOrder_GuestCheckout(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.AnythingOfType("*domain.Customer")).
		Return(nil).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*domain.Customer)
			c.ID = 7
			assert.Equal(t, "Ada Obi", c.Name)
			assert.Equal(t, "ada@example.com", c.Email)
			// Unusable random credential, 32 bytes hex-encoded.
			assert.Len(t, c.PasswordHash, 64)
		})
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(nil).
		Run(saveAssignsID(1))
	m.notifier.On("OrderPlaced", mock.Anything, mock.AnythingOfType("*domain.Order")).Return()

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.NoError(t, err)

	assert.Equal(t, uint64(7), order.CustomerID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.TypePickup, order.Type)
	assert.Regexp(t, `^ORD-[A-Z0-9]{8}-\d{8}$`, order.OrderNumber)

	assert.Equal(t, domain.Cents(16000), order.Subtotal)
	assert.Equal(t, domain.Cents(1600), order.Tax)
	assert.Equal(t, domain.Cents(0), order.DeliveryFee)
	assert.Equal(t, domain.Cents(17600), order.Total)
	assert.Equal(t, order.Total, order.Subtotal+order.Tax+order.DeliveryFee)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Jollof Rice", order.Items[0].FoodName)
	assert.Equal(t, "Full Pan", order.Items[0].SizeName)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, domain.Cents(8000), order.Items[0].UnitPrice)
	assert.Equal(t, domain.Cents(16000), order.Items[0].TotalPrice)
	assert.Nil(t, order.Items[0].FoodID)

	assert.Equal(t, "Ada Obi", order.CustomerName)
	assert.Equal(t, "ada@example.com", order.CustomerEmail)

	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_DeliveryFee(t *testing.T) {
	svc, m := newTestOrderService(t)

	input := guestInput()
	input.Type = domain.TypeDelivery
	input.DeliveryAddress = "1 Palm Street"

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(1))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(500), order.DeliveryFee)
	assert.Equal(t, domain.Cents(18100), order.Total)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_ExistingCustomerUpdated(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(&domain.Customer{
		ID:    3,
		Name:  "Old Name",
		Email: "ada@example.com",
	}, nil)
	m.customers.On("UpdateContact", mock.Anything, uint64(3), "Ada Obi", "555-0101").Return(nil)
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(2))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.NoError(t, err)

	assert.Equal(t, uint64(3), order.CustomerID)
	m.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_EmailLookupIsExactCase(t *testing.T) {
	svc, m := newTestOrderService(t)

	input := guestInput()
	input.CustomerEmail = "Ada@Example.com"

	// The lookup policy is exact-match: the submitted casing goes straight
	// to the store, never lowercased first.
	m.customers.On("FindByEmail", mock.Anything, "Ada@Example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*domain.Customer)
			c.ID = 9
			assert.Equal(t, "Ada@Example.com", c.Email)
		})
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(4))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	_, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_AuthenticatedCustomer(t *testing.T) {
	svc, m := newTestOrderService(t)

	customerID := uint64(42)
	input := guestInput()
	input.CustomerID = &customerID
	input.CustomerName = "Ada O."

	m.customers.On("FindByID", mock.Anything, uint64(42)).Return(&domain.Customer{
		ID:    42,
		Name:  "Ada Obi",
		Email: "account@example.com",
	}, nil)
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(5))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), order.CustomerID)
	// Contact snapshot comes from the submission, not the account record.
	assert.Equal(t, "Ada O.", order.CustomerName)
	assert.Equal(t, "ada@example.com", order.CustomerEmail)

	m.customers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	m.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_ConcurrentCustomerCreationLoses(t *testing.T) {
	svc, m := newTestOrderService(t)

	// First read sees no customer; the create then loses the race on the
	// email unique index, and the resolver falls back to the winner's row.
	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil).Once()
	m.customers.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("customer email ada@example.com: %w", domain.ErrConflict))
	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(&domain.Customer{
		ID:    11,
		Name:  "Ada Obi",
		Email: "ada@example.com",
	}, nil).Once()

	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(6))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.NoError(t, err)

	assert.Equal(t, uint64(11), order.CustomerID)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_CatalogPriceIsAuthoritative(t *testing.T) {
	svc, m := newTestOrderService(t)

	input := guestInput()
	// Client claims a lowball price; the matching catalog entry wins.
	input.Items[0].UnitPrice = domain.Cents(1)

	foodID := uint64(99)
	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(&domain.Food{
		ID:   foodID,
		Name: "Jollof Rice",
		PortionSizes: []domain.FoodPortionSize{
			{SizeName: "Full Pan", Price: domain.Cents(8000)},
			{SizeName: "Half Pan", Price: domain.Cents(4500)},
		},
	}, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(saveAssignsID(7))
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, domain.Cents(8000), order.Items[0].UnitPrice)
	require.NotNil(t, order.Items[0].FoodID)
	assert.Equal(t, foodID, *order.Items[0].FoodID)
	assert.Equal(t, domain.Cents(16000), order.Subtotal)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_ReferenceCollisionRetried(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)

	var firstNumber, secondNumber string
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).
		Return(fmt.Errorf("order number taken: %w", domain.ErrConflict)).
		Once().
		Run(func(args mock.Arguments) {
			firstNumber = args.Get(1).(*domain.Order).OrderNumber
		})
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).
		Return(nil).
		Once().
		Run(func(args mock.Arguments) {
			secondNumber = args.Get(1).(*domain.Order).OrderNumber
			saveAssignsID(8)(args)
		})
	m.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.NoError(t, err)

	assert.NotEqual(t, firstNumber, secondNumber)
	assert.Equal(t, secondNumber, order.OrderNumber)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_ReferenceGenerationExhausted(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).
		Return(fmt.Errorf("order number taken: %w", domain.ErrConflict)).
		Times(maxReferenceAttempts)

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrConflict)

	m.notifier.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_PersistenceFailureNoNotification(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	m.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	m.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	m.orders.On("CreateWithItems", mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	order, err := svc.PlaceOrder(context.Background(), guestInput())
	require.Error(t, err)
	assert.Nil(t, order)

	m.notifier.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOrderService_PlaceOrder_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PlaceOrderInput)
		wantField string
	}{
		{
			name:      "empty cart",
			mutate:    func(in *PlaceOrderInput) { in.Items = nil },
			wantField: "items",
		},
		{
			name: "zero quantity",
			mutate: func(in *PlaceOrderInput) {
				in.Items[0].Quantity = 0
			},
			wantField: "items[0].quantity",
		},
		{
			name: "negative price",
			mutate: func(in *PlaceOrderInput) {
				in.Items[0].UnitPrice = domain.Cents(-100)
			},
			wantField: "items[0].unitPrice",
		},
		{
			name:      "unknown type",
			mutate:    func(in *PlaceOrderInput) { in.Type = "drone" },
			wantField: "type",
		},
		{
			name:      "missing customer name",
			mutate:    func(in *PlaceOrderInput) { in.CustomerName = "  " },
			wantField: "customer_name",
		},
		{
			name:      "missing email",
			mutate:    func(in *PlaceOrderInput) { in.CustomerEmail = "" },
			wantField: "customer_email",
		},
		{
			name: "delivery without address",
			mutate: func(in *PlaceOrderInput) {
				in.Type = domain.TypeDelivery
			},
			wantField: "delivery_address",
		},
		{
			name: "notes too long",
			mutate: func(in *PlaceOrderInput) {
				for len(in.Notes) <= 1000 {
					in.Notes += "very long note "
				}
			},
			wantField: "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestOrderService(t)

			input := guestInput()
			tt.mutate(&input)

			order, err := svc.PlaceOrder(context.Background(), input)
			require.Error(t, err)
			assert.Nil(t, order)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)

			// Validation short-circuits before any store access.
			m.customers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
			m.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			m.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
			m.notifier.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_GetOrder(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.orders.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Order{ID: 1}, nil)
	m.orders.On("FindByID", mock.Anything, uint64(404)).Return(nil, nil)

	order, err := svc.GetOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), order.ID)

	_, err = svc.GetOrder(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	m.assertExpectations(t)
}

func TestOrderService_ListOrders_RejectsUnknownFilter(t *testing.T) {
	svc, m := newTestOrderService(t)

	_, err := svc.ListOrders(context.Background(), repository.OrderFilter{Status: "shipped"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.ListOrders(context.Background(), repository.OrderFilter{Type: "teleport"})
	require.ErrorAs(t, err, &verr)

	m.orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	svc, m := newTestOrderService(t)

	notes := "called the customer"
	m.orders.On("UpdateStatus", mock.Anything, uint64(1), repository.StatusUpdate{
		Status:     domain.StatusReady,
		AdminNotes: &notes,
	}).Return(&domain.Order{ID: 1, OrderNumber: "ORD-AAAAAAAA-20260901", Status: domain.StatusReady}, nil)

	order, err := svc.UpdateOrderStatus(context.Background(), 1, domain.StatusReady, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, order.Status)

	_, err = svc.UpdateOrderStatus(context.Background(), 1, "shipped", nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	m.assertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_NotFound(t *testing.T) {
	svc, m := newTestOrderService(t)

	m.orders.On("UpdateStatus", mock.Anything, uint64(404), mock.Anything).Return(nil, nil)

	_, err := svc.UpdateOrderStatus(context.Background(), 404, domain.StatusConfirmed, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	m.assertExpectations(t)
}
