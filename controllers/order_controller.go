package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/middleware"
	"github.com/nearmart/nearmart-api/models"
	"github.com/nearmart/nearmart-api/services"
)

// CreateOrder handles POST /createOrder - snapshots the customer's
// entire cart into a PLACED order with payment PENDING. The cart is left
// intact; it is cleared only when payment confirmation succeeds.
func CreateOrder(c *gin.Context) {
	// The blocked-user gate already loaded the account
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	db := config.GetDB()
	order, err := services.BuildOrder(db, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		case errors.Is(err, services.ErrMixedRetailer):
			c.JSON(http.StatusConflict, gin.H{"message": "Cart references more than one retailer"})
		case errors.Is(err, services.ErrProductMissing):
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		default:
			log.Printf("Create order error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		}
		return
	}

	if err := db.Create(order).Error; err != nil {
		log.Printf("Create order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order created successfully",
		"orderId":     order.ID,
		"totalAmount": order.TotalAmount,
	})
}

// ConfirmOrderRequest represents the request body for a payment-success
// confirmation
type ConfirmOrderRequest struct {
	OrderID   uint   `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId"`
	Gateway   string `json:"gateway"`
}

// ConfirmOrder handles POST /confirmOrder - records a successful payment
// and clears the customer's cart as part of the same transaction
func ConfirmOrder(c *gin.Context) {
	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order id is required"})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Printf("Confirm order lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Order confirmation failed"})
		return
	}

	if err := services.ConfirmPayment(db, &order, req.PaymentID, req.Gateway); err != nil {
		log.Printf("Confirm order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Order confirmation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order confirmed successfully"})
}

// MockPaymentRequest represents the request body for a mock confirmation
type MockPaymentRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// MockPayment handles POST /mockPayment - confirms an order with a
// locally synthesized payment id. Used when no external gateway is
// configured; same ownership and role requirements as a real
// confirmation, and the same cart-clearing side effect.
func MockPayment(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok || session.Role != models.RoleCustomer {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req MockPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order id is required"})
		return
	}

	db := config.GetDB()
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", req.OrderID, session.UserID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Printf("Mock payment lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Mock payment failed"})
		return
	}

	if err := services.ConfirmPayment(db, &order, services.NewMockPaymentID(), "MOCK"); err != nil {
		log.Printf("Mock payment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Mock payment failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mock payment successful"})
}

// CreatePaymentOrderRequest represents the request body for registering
// an order with the payment gateway
type CreatePaymentOrderRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// CreatePaymentOrder handles POST /createPaymentOrder - registers the
// order total with the configured payment gateway and returns what the
// frontend needs to start checkout
func CreatePaymentOrder(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order id is required"})
		return
	}

	db := config.GetDB()
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", req.OrderID, session.UserID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Printf("Payment order lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Payment order failed"})
		return
	}

	paymentOrder, err := services.GetPaymentGateway().CreatePaymentOrder(&order)
	if err != nil {
		log.Printf("Payment order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Payment order failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gatewayOrderId": paymentOrder.GatewayOrderID,
		"amount":         paymentOrder.Amount,
		"currency":       paymentOrder.Currency,
		"key":            paymentOrder.KeyID,
	})
}

// GetOrder handles GET /order/:orderId - one of the caller's orders, for
// the order summary page. Ownership is part of the lookup predicate.
func GetOrder(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	var order models.Order
	err := config.GetDB().Preload("Items").
		Where("id = ? AND user_id = ?", c.Param("orderId"), session.UserID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Printf("Order fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// MyOrders handles GET /myOrders - the customer's orders, newest first
func MyOrders(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	var orders []models.Order
	err := config.GetDB().Preload("Items").
		Where("user_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		log.Printf("Fetch myOrders error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
