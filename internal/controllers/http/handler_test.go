package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/mocks"
	"restaurant-service/internal/orderref"
	"restaurant-service/internal/pricing"
	"restaurant-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    *gin.Engine
	orders    *mocks.MockOrderRepository
	customers *mocks.MockCustomerRepository
	foods     *mocks.MockFoodRepository
	stats     *mocks.MockStatsRepository
	notifier  *mocks.MockNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		orders:    new(mocks.MockOrderRepository),
		customers: new(mocks.MockCustomerRepository),
		foods:     new(mocks.MockFoodRepository),
		stats:     new(mocks.MockStatsRepository),
		notifier:  new(mocks.MockNotifier),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orderService := services.NewOrderService(
		ts.orders, ts.customers, ts.foods,
		pricing.NewCalculator(0.10, domain.Cents(500)),
		orderref.NewGenerator(),
		ts.notifier,
		logger,
		2*time.Second,
	)
	catalogService := services.NewCatalogService(ts.foods, logger)
	customerService := services.NewCustomerService(ts.customers)
	dashboardService := services.NewDashboardService(ts.stats, logger)

	handler := NewHandler(orderService, catalogService, customerService, dashboardService, logger, false)

	ts.router = gin.New()
	handler.RegisterRoutes(ts.router)
	return ts
}

func (ts *testServer) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func validOrderBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"name": "Jollof Rice", "size": "Full Pan", "quantity": 2, "unitPrice": 80.00},
		},
		"type":           "pickup",
		"customer_name":  "Ada Obi",
		"customer_email": "ada@example.com",
		"customer_phone": "555-0101",
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	ts := newTestServer(t)

	ts.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	ts.customers.On("Create", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Customer).ID = 7 })
	ts.foods.On("FindActiveByName", mock.Anything, "Jollof Rice").Return(nil, nil)
	ts.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			order.ID = 1
			for i := range order.Items {
				order.Items[i].TotalPrice = order.Items[i].UnitPrice.MulQty(order.Items[i].Quantity)
			}
		})
	ts.notifier.On("OrderPlaced", mock.Anything, mock.Anything).Return()

	w := ts.post(t, "/orders", validOrderBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Order   struct {
			OrderNumber string  `json:"orderNumber"`
			Status      string  `json:"status"`
			Subtotal    float64 `json:"subtotal"`
			Tax         float64 `json:"tax"`
			Total       float64 `json:"total"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Regexp(t, `^ORD-[A-Z0-9]{8}-\d{8}$`, resp.Order.OrderNumber)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, 160.00, resp.Order.Subtotal)
	assert.Equal(t, 16.00, resp.Order.Tax)
	assert.Equal(t, 176.00, resp.Order.Total)
}

func TestPlaceOrder_BindingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{
			name: "zero quantity",
			mutate: func(body map[string]any) {
				body["items"] = []map[string]any{
					{"name": "Jollof Rice", "size": "Full Pan", "quantity": 0, "unitPrice": 80.00},
				}
			},
		},
		{
			name:   "missing items",
			mutate: func(body map[string]any) { delete(body, "items") },
		},
		{
			name:   "bad email",
			mutate: func(body map[string]any) { body["customer_email"] = "not-an-email" },
		},
		{
			name:   "unknown type",
			mutate: func(body map[string]any) { body["type"] = "drone" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			body := validOrderBody()
			tt.mutate(body)

			w := ts.post(t, "/orders", body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			var resp struct {
				Success bool              `json:"success"`
				Errors  map[string]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Errors)

			// Nothing was persisted.
			ts.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
			ts.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestPlaceOrder_DeliveryWithoutAddress(t *testing.T) {
	ts := newTestServer(t)

	body := validOrderBody()
	body["type"] = "delivery"

	w := ts.post(t, "/orders", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "delivery_address")
	ts.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
}

func TestTrackOrder(t *testing.T) {
	ts := newTestServer(t)

	ts.orders.On("FindByNumber", mock.Anything, "ORD-7K2M9QXA-20260901").
		Return(&domain.Order{ID: 1, OrderNumber: "ORD-7K2M9QXA-20260901"}, nil)
	ts.orders.On("FindByNumber", mock.Anything, "ORD-MISSING1-20260901").Return(nil, nil)

	w := ts.get(t, "/orders/ORD-7K2M9QXA-20260901")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.get(t, "/orders/ORD-MISSING1-20260901")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMenu(t *testing.T) {
	ts := newTestServer(t)

	ts.foods.On("ListActive", mock.Anything, "").Return([]domain.Food{
		{
			ID: 1, Name: "Jollof Rice", Category: "mains", IsActive: true,
			PortionSizes: []domain.FoodPortionSize{
				{SizeName: "Full Pan", Price: domain.Cents(8000)},
			},
		},
	}, nil)

	w := ts.get(t, "/foods")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Foods map[string][]struct {
			Name         string             `json:"name"`
			PortionSizes map[string]float64 `json:"portion_sizes"`
		} `json:"foods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Foods["mains"], 1)
	assert.Equal(t, 80.00, resp.Foods["mains"][0].PortionSizes["Full Pan"])
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/dashboard/orders/1/status",
		bytes.NewReader([]byte(`{"status":"shipped"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	ts.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateFood(t *testing.T) {
	ts := newTestServer(t)

	ts.foods.On("Create", mock.Anything, mock.AnythingOfType("*domain.Food")).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Food).ID = 5 })

	w := ts.post(t, "/dashboard/foods", map[string]any{
		"name":     "Egusi Soup",
		"category": "mains",
		"portion_sizes": []map[string]any{
			{"size_name": "Large Cooler", "price": 150.00},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Food struct {
			ID   uint64 `json:"id"`
			Name string `json:"name"`
		} `json:"food"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(5), resp.Food.ID)
	assert.Equal(t, "Egusi Soup", resp.Food.Name)
}
