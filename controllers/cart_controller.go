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
)

// GetCart handles GET /cart - the customer's cart lines plus the shared
// retailer's shop name. An empty cart is a normal 200 result, not an error.
func GetCart(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	if session.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{
			"role":    session.Role,
			"message": "Not authorized, Only Customers Have Cart!",
		})
		return
	}

	db := config.GetDB()
	var items []models.CartItem
	if err := db.Where("user_id = ?", session.UserID).Find(&items).Error; err != nil {
		log.Printf("Cart fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if len(items) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"products": []models.CartItem{},
			"message":  "Your Cart is Empty!",
		})
		return
	}

	// All lines share one retailer by the insertion-time invariant
	var retailer models.User
	if err := db.First(&retailer, items[0].RetailerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Retailer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"retailerName": retailer.ShopName,
		"products":     items,
	})
}

// AddToCartRequest represents the request body for adding a product
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

// AddToCart handles POST /addCart - puts one unit of a product into the
// cart. A non-empty cart belonging to a different retailer rejects the
// add outright; the cart is never auto-cleared to accommodate the new
// retailer. Repeat adds of the same product increment its quantity.
func AddToCart(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	if session.Role != models.RoleCustomer {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, Only Customers Have Cart!"})
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product id is required"})
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		log.Printf("Add cart product lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Single-retailer invariant, enforced at insertion time
	var existingItem models.CartItem
	err := db.Where("user_id = ?", session.UserID).First(&existingItem).Error
	if err == nil && existingItem.RetailerID != product.RetailerID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You can add products from only one retailer at a time"})
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Add cart lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Repeat add of the same product bumps its quantity
	var line models.CartItem
	err = db.Where("user_id = ? AND product_id = ?", session.UserID, req.ProductID).First(&line).Error
	if err == nil {
		if err := db.Model(&line).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
			log.Printf("Cart quantity bump error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart quantity updated"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Add cart line lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// First add denormalizes the product as the customer sees it now
	item := models.CartItem{
		UserID:       session.UserID,
		RetailerID:   product.RetailerID,
		ProductID:    product.ID,
		ImageURL:     product.ImageURL,
		ProductName:  product.ProductName,
		ProductPrice: product.Price,
		Quantity:     1,
	}
	if err := db.Create(&item).Error; err != nil {
		log.Printf("Add cart error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Added to cart"})
}

// UpdateQuantityRequest represents the request body for changing a line's quantity
type UpdateQuantityRequest struct {
	CartID   uint `json:"cartId"`
	Quantity int  `json:"quantity"`
}

// UpdateQuantity handles PUT /update-quantity - sets a cart line's
// quantity, silently capped to the product's current stock. Requests
// below one unit are invalid, requests above stock are capped rather
// than rejected.
func UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CartID == 0 || req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	db := config.GetDB()
	var item models.CartItem
	if err := db.First(&item, req.CartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
			return
		}
		log.Printf("Cart item lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var product models.Product
	if err := db.First(&product, item.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		log.Printf("Cart product lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Cap to available stock
	finalQuantity := req.Quantity
	if finalQuantity > product.Quantity {
		finalQuantity = product.Quantity
	}

	if err := db.Model(&item).Update("quantity", finalQuantity).Error; err != nil {
		log.Printf("Cart quantity update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quantity":       finalQuantity,
		"availableStock": product.Quantity,
	})
}

// RemoveFromCartRequest represents the request body for removing a line
type RemoveFromCartRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
}

// RemoveFromCart handles DELETE /removeProduct - deletes one cart line.
// Ownership is part of the delete predicate, so another customer's line
// is indistinguishable from a missing one.
func RemoveFromCart(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	if session.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized, Only Customers Have Cart!"})
		return
	}

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart item id is required"})
		return
	}

	result := config.GetDB().
		Where("id = ? AND user_id = ?", req.CartItemID, session.UserID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		log.Printf("Remove cart error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}
