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

// NearbyRetailers handles GET /nearbyretailers - approved, unblocked
// retailers serving the caller's pincode (their own shop pincode or
// their declared serviceable areas, exact string match)
func NearbyRetailers(c *gin.Context) {
	// The blocked-user gate already loaded the account
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not logged in"})
		return
	}

	db := config.GetDB()
	retailers, err := services.FindNearbyRetailers(db, user.Pincode)
	if err != nil {
		log.Printf("Nearby retailers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	for i := range retailers {
		attachShopImageURL(&retailers[i])
	}

	c.JSON(http.StatusOK, retailers)
}

// RetailerDetails handles GET /retailerDetails/:retailerId - one
// approved, unblocked retailer's public profile
func RetailerDetails(c *gin.Context) {
	var retailer models.User
	err := config.GetDB().Preload("ServiceableAreas").
		Where("id = ? AND role = ? AND status = ? AND block = ?",
			c.Param("retailerId"), models.RoleRetailer, models.StatusApproved, false).
		First(&retailer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Retailer not found"})
			return
		}
		log.Printf("Retailer details error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	attachShopImageURL(&retailer)
	c.JSON(http.StatusOK, retailer)
}

// RetailerOrders handles GET /retailerOrders - orders placed against the
// calling retailer, customer info joined, newest first
func RetailerOrders(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
		return
	}

	var orders []models.Order
	err := config.GetDB().
		Preload("Items").
		Preload("User").
		Where("retailer_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		log.Printf("Retailer orders error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
