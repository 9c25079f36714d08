package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	orders    *services.OrderService
	catalog   *services.CatalogService
	customers *services.CustomerService
	dashboard *services.DashboardService
	logger    *slog.Logger
	debug     bool
}

func NewHandler(
	orders *services.OrderService,
	catalog *services.CatalogService,
	customers *services.CustomerService,
	dashboard *services.DashboardService,
	logger *slog.Logger,
	debug bool,
) *Handler {
	return &Handler{
		orders:    orders,
		catalog:   catalog,
		customers: customers,
		dashboard: dashboard,
		logger:    logger,
		debug:     debug,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.GET("/foods", h.GetMenu)
	r.GET("/foods/category/:category", h.GetCategory)

	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders/:number", h.TrackOrder)

	dash := r.Group("/dashboard")
	{
		dash.GET("", h.GetDashboard)
		dash.GET("/orders", h.ListOrders)
		dash.GET("/orders/:id", h.GetOrder)
		dash.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		dash.GET("/foods", h.ListFoods)
		dash.POST("/foods", h.CreateFood)
		dash.PUT("/foods/:id", h.UpdateFood)
		dash.GET("/customers", h.ListCustomers)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetMenu(c *gin.Context) {
	menu, err := h.catalog.Menu(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": menu})
}

func (h *Handler) GetCategory(c *gin.Context) {
	foods, err := h.catalog.Category(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
		"message": "Order placed successfully!",
	})
}

func (h *Handler) TrackOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{}
	if status := c.Query("status"); status != "" && status != "all" {
		filter.Status = domain.OrderStatus(status)
	}
	if orderType := c.Query("type"); orderType != "" && orderType != "all" {
		filter.Type = domain.OrderType(orderType)
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	counts, err := h.orders.CountOrdersByStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":       orders,
		"statusCounts": counts,
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, domain.OrderStatus(req.Status), req.AdminNotes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) ListFoods(c *gin.Context) {
	foods, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *Handler) CreateFood(c *gin.Context) {
	var req foodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	food := req.toFood()
	if err := h.catalog.CreateFood(c.Request.Context(), food); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"food": food})
}

func (h *Handler) UpdateFood(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}

	var req foodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	food := req.toFood()
	food.ID = id
	if err := h.catalog.UpdateFood(c.Request.Context(), food); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"food": food})
}

func (h *Handler) ListCustomers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	customers, err := h.customers.List(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// respondBindingError turns gin binding failures into the same
// field-level error shape validation errors use.
func (h *Handler) respondBindingError(c *gin.Context, err error) {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = bindingMessage(fe)
		}
	} else {
		fields["body"] = "malformed request body"
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrFoodNotFound),
		errors.Is(err, services.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Not found",
		})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "Conflicting record. Please try again.",
		})
	default:
		h.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)

		body := gin.H{
			"success": false,
			"message": "Failed to process request. Please try again.",
		}
		if h.debug {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
