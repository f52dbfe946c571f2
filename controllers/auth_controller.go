package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/middleware"
	"github.com/nearmart/nearmart-api/models"
	"github.com/nearmart/nearmart-api/services"
	"github.com/nearmart/nearmart-api/utils"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Pass  string `json:"pass" binding:"required"`
}

// Login handles POST /login - authenticates an account and opens a session
func Login(c *gin.Context) {
	// Reject when a live session already exists
	if _, loggedIn := middleware.CurrentSession(c); loggedIn {
		c.JSON(http.StatusConflict, gin.H{
			"message": "You are already logged in, first logout existing account",
		})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("Login error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Retailers wait on the admin approval workflow
	if user.Role == models.RoleRetailer {
		if user.Status == models.StatusPending {
			c.JSON(http.StatusForbidden, gin.H{"message": "Waiting for admin approval"})
			return
		}
		if user.Status == models.StatusRejected {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account rejected"})
			return
		}
	}

	if user.Block {
		c.JSON(http.StatusForbidden, gin.H{"message": "User blocked by admin"})
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Pass) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Wrong password"})
		return
	}

	token, err := middleware.GetSessionStore().Create(user.ID, user.Role)
	if err != nil {
		log.Printf("Session create error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	middleware.SetSessionCookie(c, token, config.GetConfig())

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"role":    user.Role,
	})
}

// Signup handles POST /signup - registers a customer or retailer account.
// The request is multipart form data; retailers must attach a shop image
// and declare 2-6 serviceable pincodes (after deduplication, excluding
// the shop's own pincode).
func Signup(c *gin.Context) {
	email := c.PostForm("email")
	name := c.PostForm("name")
	pass := c.PostForm("pass")
	role := c.PostForm("role")
	address := c.PostForm("address")
	city := c.PostForm("city")
	pincode := c.PostForm("pincode")
	phone := c.PostForm("phone")

	if email == "" || pass == "" || role == "" {
		c.String(http.StatusBadRequest, "Missing required fields")
		return
	}

	if role != models.RoleCustomer && role != models.RoleRetailer {
		c.String(http.StatusBadRequest, "Invalid role")
		return
	}

	db := config.GetDB()
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.String(http.StatusBadRequest, "User already exists")
		return
	}

	passwordHash, err := utils.HashPassword(pass)
	if err != nil {
		log.Printf("Signup hash error: %v", err)
		c.String(http.StatusInternalServerError, "Server error")
		return
	}

	status := models.StatusApproved
	if role == models.RoleRetailer {
		status = models.StatusPending
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Phone:        phone,
		Role:         role,
		Status:       status,
		Block:        false,
		AddressLine:  address,
		City:         city,
		Pincode:      pincode,
	}

	if role == models.RoleRetailer {
		fileHeader, err := c.FormFile("shopImage")
		if err != nil {
			c.String(http.StatusBadRequest, "Shop image required")
			return
		}
		if err := utils.ValidateImageFile(fileHeader); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		// Serviceable pincodes arrive as a JSON array string in the form
		var pins []string
		if raw := c.PostForm("serviceablePincodes"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &pins); err != nil {
				c.String(http.StatusBadRequest, "Invalid serviceable pincodes")
				return
			}
		}

		uniquePins := models.NormalizeServiceablePincodes(pins, pincode)
		if !models.ValidServiceablePincodeCount(uniquePins) {
			c.String(http.StatusBadRequest, "Serviceable pincodes must be 2-6")
			return
		}

		s3Key, err := services.GetS3Service().UploadShopImage(fileHeader)
		if err != nil {
			log.Printf("Shop image upload error: %v", err)
			c.String(http.StatusInternalServerError, "Server error")
			return
		}

		user.ShopName = c.PostForm("shopName")
		user.ProductType = c.PostForm("productType")
		user.ShopImageKey = s3Key
		for _, pin := range uniquePins {
			user.ServiceableAreas = append(user.ServiceableAreas, models.ServiceableArea{Pincode: pin})
		}
	}

	if err := db.Create(&user).Error; err != nil {
		// Works with both PostgreSQL and SQLite unique violations
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.String(http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("Signup error: %v", err)
		c.String(http.StatusInternalServerError, "Server error")
		return
	}

	c.String(http.StatusOK, "Signup successful")
}

// Logout handles POST /logout - destroys the session and clears the cookie
func Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	if _, getErr := middleware.GetSessionStore().Get(token); getErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	if err := middleware.GetSessionStore().Destroy(token); err != nil {
		log.Printf("Session destroy error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Logout failed"})
		return
	}

	middleware.ClearSessionCookie(c, config.GetConfig())
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me handles GET /me - reports the session's identity and role
func Me(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User authenticated successfully",
		"userId":  session.UserID,
		"role":    session.Role,
	})
}

// UserDetails handles GET /userDetails - returns the current account
// minus the credential
func UserDetails(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login to view profile details"})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Preload("ServiceableAreas").First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("UserDetails error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching user details"})
		return
	}

	attachShopImageURL(&user)
	c.JSON(http.StatusOK, user)
}

// UpdateAddressRequest represents the request body for updating an address
type UpdateAddressRequest struct {
	At      string `json:"at"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// UpdateAddress handles PUT /user/updateAddress - replaces the account's
// delivery address
func UpdateAddress(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.At == "" || req.City == "" || req.Pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All address fields are required"})
		return
	}

	db := config.GetDB()
	updates := map[string]interface{}{
		"address_line": req.At,
		"city":         req.City,
		"pincode":      req.Pincode,
	}
	if err := db.Model(&models.User{}).Where("id = ?", session.UserID).Updates(updates).Error; err != nil {
		log.Printf("Address update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated successfully",
		"address": gin.H{
			"at":      req.At,
			"city":    req.City,
			"pincode": req.Pincode,
		},
	})
}

// attachShopImageURL computes the presigned shop image URL for a retailer
func attachShopImageURL(user *models.User) {
	if !user.IsRetailer() || user.ShopImageKey == "" {
		return
	}
	url, err := services.GetS3Service().GetPresignedURL(user.ShopImageKey)
	if err != nil {
		log.Printf("Presign shop image error: %v", err)
		return
	}
	user.ShopImageURL = url
}
