package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"arabica/internal/domain"
	"arabica/internal/ratelimit"
	"arabica/internal/repository"
	"arabica/internal/service"
)

type Server struct {
	engine  *gin.Engine
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
}

func NewServer(catalog *service.CatalogService, carts *service.CartService,
	orders *service.OrderService, logger zerolog.Logger, limiter *ratelimit.Limiter) *Server {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), gin.Recovery())
	s := &Server{engine: r, catalog: catalog, carts: carts, orders: orders}
	s.registerRoutes(limiter)
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes(limiter *ratelimit.Limiter) {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	if limiter != nil {
		api.Use(RateLimit(limiter))
	}
	{
		cart := api.Group("/cart")
		cart.POST("/save", s.saveCart)
		cart.GET("/:customerId", s.getCart)
		cart.DELETE("/:customerId", s.clearCart)

		orders := api.Group("/orders")
		orders.POST("/create", s.createOrder)
		orders.GET("/customer/:customerId", s.customerOrders)
		orders.GET("/all", s.allOrders)
		orders.PUT("/:orderId/status", s.setOrderStatus)

		products := api.Group("/products")
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
		products.GET("/category/:category", s.productsByCategory)
		products.POST("", s.createProduct)
		products.PUT("/:id", s.updateProduct)
		products.DELETE("/:id", s.deleteProduct)
	}
}

// Cart handlers
type saveCartReq struct {
	CustomerID string                  `json:"customerId"`
	Items      []service.CartLineInput `json:"items"`
}

// @Summary Save cart (full replace)
// @Tags cart
// @Accept json
// @Produce json
// @Param input body saveCartReq true "Cart"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /cart/save [post]
func (s *Server) saveCart(c *gin.Context) {
	var req saveCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	cart, err := s.carts.SaveCart(c, req.CustomerID, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// @Summary Get cart with live catalog annotations
// @Tags cart
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /cart/{customerId} [get]
func (s *Server) getCart(c *gin.Context) {
	cart, err := s.carts.GetCart(c, c.Param("customerId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// @Summary Clear cart
// @Tags cart
// @Param customerId path string true "Customer ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /cart/{customerId} [delete]
func (s *Server) clearCart(c *gin.Context) {
	if err := s.carts.ClearCart(c, c.Param("customerId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Order handlers

// @Summary Create order from checkout payload
// @Tags orders
// @Accept json
// @Produce json
// @Param input body service.CreateOrderInput true "Checkout"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /orders/create [post]
func (s *Server) createOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	order, err := s.orders.CreateOrder(c, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// @Summary List a customer's orders, newest first
// @Tags orders
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /orders/customer/{customerId} [get]
func (s *Server) customerOrders(c *gin.Context) {
	orders, err := s.orders.ListByCustomer(c, c.Param("customerId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// @Summary List all orders, newest first
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]any
// @Router /orders/all [get]
func (s *Server) allOrders(c *gin.Context) {
	orders, err := s.orders.ListAll(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

type setStatusReq struct {
	Status           string  `json:"status"`
	PreparedBy       *string `json:"preparedBy"`
	DeliveryPersonID *string `json:"deliveryPersonId"`
}

// @Summary Set order status and optional assignees
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param input body setStatusReq true "Status"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /orders/{orderId}/status [put]
func (s *Server) setOrderStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	order, err := s.orders.SetStatus(c, c.Param("orderId"), req.Status, req.PreparedBy, req.DeliveryPersonID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// Product handlers
type productReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Available   *bool   `json:"available"`
	Image       string  `json:"image"`
}

func (r productReq) toDomain() domain.Product {
	p := domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    domain.Category(r.Category),
		Available:   true,
		Image:       r.Image,
	}
	if r.Available != nil {
		p.Available = *r.Available
	}
	return p
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	p, err := s.catalog.Create(c, req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": p})
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.Resolve(c, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body productReq true "Product"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	p, err := s.catalog.Update(c, c.Param("id"), req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// @Summary Delete product
// @Tags products
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.catalog.Delete(c, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {object} map[string]any
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.List(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// @Summary List products by category
// @Tags products
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /products/category/{category} [get]
func (s *Server) productsByCategory(c *gin.Context) {
	products, err := s.catalog.ListByCategory(c, c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func badJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
}

func fail(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"success": false, "message": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNoValidItems):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
