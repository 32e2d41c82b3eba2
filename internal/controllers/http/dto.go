package http

import "storefront/internal/domain"

type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	UnitPrice int64  `json:"unitPrice" binding:"min=0"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type CreateOrderRequest struct {
	Customer         CustomerRequest    `json:"customer" binding:"required"`
	Items            []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryFee      int64              `json:"deliveryFee" binding:"min=0"`
	Total            int64              `json:"total"`
	Status           string             `json:"status"`
	PaymentReference string             `json:"paymentReference"`
}

func (r *CreateOrderRequest) ToDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return &domain.Order{
		Customer: domain.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Items:            items,
		DeliveryFee:      r.DeliveryFee,
		Total:            r.Total,
		Status:           domain.OrderStatus(r.Status),
		PaymentReference: r.PaymentReference,
	}
}

type UpdateStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"min=0"`
	Stock       int      `json:"stock" binding:"min=0"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	ImageURL    string   `json:"imageUrl"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type SendOrderEmailRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type InquiryRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}
