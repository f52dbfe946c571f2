package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/middleware"
	"github.com/nearmart/nearmart-api/models"
	"github.com/nearmart/nearmart-api/services"
)

// nearbyRetailerIDs resolves the calling customer's pincode to the set of
// retailer ids whose catalogs are visible to them. The second return
// value is false when the request carries no usable session or account.
func nearbyRetailerIDs(c *gin.Context) ([]uint, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, session.UserID).Error; err != nil {
		return nil, false
	}

	retailers, err := services.FindNearbyRetailers(db, user.Pincode)
	if err != nil {
		log.Printf("Nearby retailers query error: %v", err)
		return nil, false
	}

	ids := make([]uint, 0, len(retailers))
	for _, r := range retailers {
		ids = append(ids, r.ID)
	}
	return ids, true
}

// ListProducts handles GET /products - products of nearby approved
// retailers only. Unresolvable sessions get an empty list, matching the
// frontend contract.
func ListProducts(c *gin.Context) {
	retailerIDs, ok := nearbyRetailerIDs(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, []models.Product{})
		return
	}
	if len(retailerIDs) == 0 {
		c.JSON(http.StatusOK, []models.Product{})
		return
	}

	var products []models.Product
	if err := config.GetDB().Where("retailer_id IN ?", retailerIDs).Find(&products).Error; err != nil {
		log.Printf("Products fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, []models.Product{})
		return
	}

	c.JSON(http.StatusOK, products)
}

// SearchProducts handles GET /products/search - case-insensitive
// name/category match over nearby retailers' catalogs
func SearchProducts(c *gin.Context) {
	retailerIDs, ok := nearbyRetailerIDs(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, []models.Product{})
		return
	}
	if len(retailerIDs) == 0 {
		c.JSON(http.StatusOK, []models.Product{})
		return
	}

	pattern := "%" + strings.ToLower(c.Query("query")) + "%"

	var products []models.Product
	err := config.GetDB().
		Where("retailer_id IN ?", retailerIDs).
		Where("LOWER(product_name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern).
		Find(&products).Error
	if err != nil {
		log.Printf("Product search error: %v", err)
		c.JSON(http.StatusInternalServerError, []models.Product{})
		return
	}

	c.JSON(http.StatusOK, products)
}

// RetailerCatalog handles GET /filteredproducts/:retailerId - one
// retailer's full catalog
func RetailerCatalog(c *gin.Context) {
	retailerID, err := strconv.ParseUint(c.Param("retailerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, []models.Product{})
		return
	}

	var products []models.Product
	if err := config.GetDB().Where("retailer_id = ?", retailerID).Find(&products).Error; err != nil {
		log.Printf("Retailer products error: %v", err)
		c.JSON(http.StatusInternalServerError, []models.Product{})
		return
	}

	c.JSON(http.StatusOK, products)
}

// MyProducts handles GET /retailerProducts - the calling retailer's own inventory
func MyProducts(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
		return
	}

	var products []models.Product
	if err := config.GetDB().Where("retailer_id = ?", session.UserID).Find(&products).Error; err != nil {
		log.Printf("Retailer products error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// AddProductRequest represents the request body for listing a new product
type AddProductRequest struct {
	ProductName string  `json:"productName" binding:"required"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Category    string  `json:"category" binding:"required"`
	ImageURL    string  `json:"imageUrl" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gte=0"`
}

// AddProduct handles POST /addNewProduct - lists a new product under the
// calling retailer
func AddProduct(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
		return
	}

	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	product := models.Product{
		RetailerID:  session.UserID,
		ProductName: req.ProductName,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Quantity:    req.Quantity,
	}

	if err := config.GetDB().Create(&product).Error; err != nil {
		log.Printf("Add product error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product added successfully",
		"product": product,
	})
}

// UpdateProductRequest represents the request body for the exposed update
// path; price and quantity are the only mutable fields after creation
type UpdateProductRequest struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// UpdateProduct handles POST /update_product/:id - updates price and
// stock of an owned product. Ownership is part of the lookup predicate so
// foreign products are indistinguishable from missing ones.
func UpdateProduct(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Price and quantity must be positive values"})
		return
	}

	if req.Price < 0 || req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Price and quantity must be positive values"})
		return
	}

	db := config.GetDB()
	result := db.Model(&models.Product{}).
		Where("id = ? AND retailer_id = ?", c.Param("id"), session.UserID).
		Updates(map[string]interface{}{
			"price":    req.Price,
			"quantity": req.Quantity,
		})
	if result.Error != nil {
		log.Printf("Update product error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Product update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found or not authorized"})
		return
	}

	var product models.Product
	if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		log.Printf("Update product reload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Product update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct handles DELETE /deleteProduct/:id - removes an owned product
func DeleteProduct(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
		return
	}

	db := config.GetDB()
	var product models.Product
	err := db.Where("id = ? AND retailer_id = ?", c.Param("id"), session.UserID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found or not authorized"})
			return
		}
		log.Printf("Delete product lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		log.Printf("Delete product error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ProductDetail handles GET /productDetail/:productId - one product plus
// its retailer
func ProductDetail(c *gin.Context) {
	db := config.GetDB()

	var product models.Product
	if err := db.First(&product, "id = ?", c.Param("productId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	var retailer models.User
	if err := db.Preload("ServiceableAreas").First(&retailer, product.RetailerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Retailer not found"})
		return
	}
	attachShopImageURL(&retailer)

	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"retailer": retailer,
	})
}
