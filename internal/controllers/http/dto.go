package http

import (
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/services"
)

type placeOrderItemRequest struct {
	Name      string  `json:"name" binding:"required"`
	Size      string  `json:"size" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unitPrice" binding:"gte=0"`
}

type placeOrderRequest struct {
	Items []placeOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Type  string                  `json:"type" binding:"required,oneof=pickup delivery reservation"`

	CustomerName  string `json:"customer_name" binding:"required,max=255"`
	CustomerEmail string `json:"customer_email" binding:"required,email,max=255"`
	CustomerPhone string `json:"customer_phone" binding:"omitempty,max=20"`

	DeliveryAddress    string `json:"delivery_address" binding:"omitempty,max=500"`
	DeliveryCity       string `json:"delivery_city" binding:"omitempty,max=100"`
	DeliveryState      string `json:"delivery_state" binding:"omitempty,max=100"`
	DeliveryPostalCode string `json:"delivery_postal_code" binding:"omitempty,max=20"`

	ScheduledDateTime *time.Time `json:"scheduled_date_time"`
	Notes             string     `json:"notes" binding:"omitempty,max=1000"`
}

func (r placeOrderRequest) toInput() services.PlaceOrderInput {
	items := make([]services.PlaceOrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, services.PlaceOrderItem{
			Name:      it.Name,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: domain.CentsFromFloat(it.UnitPrice),
		})
	}
	return services.PlaceOrderInput{
		Items:              items,
		Type:               domain.OrderType(r.Type),
		CustomerName:       r.CustomerName,
		CustomerEmail:      r.CustomerEmail,
		CustomerPhone:      r.CustomerPhone,
		DeliveryAddress:    r.DeliveryAddress,
		DeliveryCity:       r.DeliveryCity,
		DeliveryState:      r.DeliveryState,
		DeliveryPostalCode: r.DeliveryPostalCode,
		ScheduledDateTime:  r.ScheduledDateTime,
		Notes:              r.Notes,
	}
}

type updateStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

type portionSizeRequest struct {
	SizeName  string  `json:"size_name" binding:"required,max=255"`
	Price     float64 `json:"price" binding:"gte=0"`
	SortOrder int     `json:"sort_order"`
}

type foodRequest struct {
	Name         string               `json:"name" binding:"required,max=255"`
	Description  string               `json:"description"`
	Image        string               `json:"image" binding:"omitempty,max=500"`
	Category     string               `json:"category" binding:"required,max=100"`
	IsActive     *bool                `json:"is_active"`
	SortOrder    int                  `json:"sort_order"`
	PortionSizes []portionSizeRequest `json:"portion_sizes" binding:"required,min=1,dive"`
}

func (r foodRequest) toFood() *domain.Food {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	sizes := make([]domain.FoodPortionSize, 0, len(r.PortionSizes))
	for _, ps := range r.PortionSizes {
		sizes = append(sizes, domain.FoodPortionSize{
			SizeName:  ps.SizeName,
			Price:     domain.CentsFromFloat(ps.Price),
			SortOrder: ps.SortOrder,
		})
	}
	return &domain.Food{
		Name:         r.Name,
		Description:  r.Description,
		Image:        r.Image,
		Category:     r.Category,
		IsActive:     active,
		SortOrder:    r.SortOrder,
		PortionSizes: sizes,
	}
}
