package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/services"
)

type Handler struct {
	orders        *services.OrderService
	catalog       *services.CatalogService
	auth          *services.AuthService
	notifications *services.NotificationService
}

func NewHandler(
	orders *services.OrderService,
	catalog *services.CatalogService,
	auth *services.AuthService,
	notifications *services.NotificationService,
) *Handler {
	return &Handler{
		orders:        orders,
		catalog:       catalog,
		auth:          auth,
		notifications: notifications,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id", h.GetCategory)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/customers/:email/orders", h.ListCustomerOrders)

	r.POST("/admin/login", h.Login)
	r.POST("/paystack/verify/:reference", h.VerifyPayment)
	r.POST("/paystack/webhook", h.PaymentWebhook)
	r.POST("/notifications/send-inquiry", h.SendInquiry)

	admin := r.Group("/", RequireAdmin(h.auth))
	{
		admin.GET("/admin/verify", h.VerifySession)
		admin.POST("/admin/logout", h.Logout)

		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.GET("/orders", h.ListOrders)
		admin.PUT("/orders/:id", h.UpdateOrderStatus)

		admin.POST("/notifications/send-order-email", h.SendOrderEmail)
		admin.POST("/notifications/send-status-email", h.SendStatusEmail)
		admin.GET("/notifications", h.ListNotifications)
		admin.PATCH("/notifications/:id/read", h.MarkNotificationRead)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListCustomerOrders(c *gin.Context) {
	orders, err := h.orders.ListOrdersByCustomer(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	order, err := h.orders.VerifyPayment(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PaymentWebhook answers 200 for anything except a bad signature: the
// gateway retries aggressively on non-2xx and an unmatched reference is not
// its problem.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if err := h.orders.HandlePaymentWebhook(c.Request.Context(), body, signature); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.Status(http.StatusUnauthorized)
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) VerifySession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"email": c.GetString(adminEmailKey)})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), &domain.Product{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), &domain.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), &domain.Category{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) SendOrderEmail(c *gin.Context) {
	var req SendOrderEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.notifications.Dispatch(c.Request.Context(), order, domain.KindCustomerConfirmation); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) SendStatusEmail(c *gin.Context) {
	var req SendOrderEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	kind := domain.KindStatusUpdate
	switch order.Status {
	case domain.StatusShipped:
		kind = domain.KindShipped
	case domain.StatusDelivered:
		kind = domain.KindDelivered
	}
	if err := h.notifications.Dispatch(c.Request.Context(), order, kind); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) SendInquiry(c *gin.Context) {
	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notifications.DispatchInquiry(c.Request.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.notifications.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// respondError maps the error taxonomy to status codes without leaking
// internals on the 500 path.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
