package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/controllers"
	"github.com/nearmart/nearmart-api/middleware"
	"github.com/nearmart/nearmart-api/models"
	"github.com/nearmart/nearmart-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting NearMart API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.ServiceableArea{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Session{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize the session store, shop image storage and payment gateway
	middleware.InitSessionStore(cfg)
	if _, err := services.InitS3Service(); err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitPaymentGateway(cfg)

	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter assembles the gin router with CORS and all route groups
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	router.GET("/health", healthCheck)

	// Auth routes; session checks happen inside the handlers because the
	// failure bodies differ per endpoint
	router.POST("/login", controllers.Login)
	router.POST("/signup", controllers.Signup)
	router.POST("/logout", controllers.Logout)
	router.GET("/me", controllers.Me)
	router.GET("/userDetails", controllers.UserDetails)
	router.PUT("/user/updateAddress", middleware.CheckUserBlocked(), controllers.UpdateAddress)

	// Catalog browsing
	router.GET("/products", controllers.ListProducts)
	router.GET("/products/search", controllers.SearchProducts)
	router.GET("/filteredproducts/:retailerId", controllers.RetailerCatalog)
	router.GET("/productDetail/:productId", controllers.ProductDetail)

	// Retailer inventory management
	router.GET("/retailerProducts", middleware.RequireRetailer(), controllers.MyProducts)
	router.POST("/addNewProduct", middleware.CheckUserBlocked(), middleware.RequireRetailer(), controllers.AddProduct)
	router.POST("/update_product/:id", middleware.CheckUserBlocked(), middleware.RequireRetailer(), controllers.UpdateProduct)
	router.DELETE("/deleteProduct/:id", middleware.CheckUserBlocked(), middleware.RequireRetailer(), controllers.DeleteProduct)

	// Cart
	router.GET("/cart", middleware.CheckUserBlocked(), controllers.GetCart)
	router.POST("/addCart", middleware.CheckUserBlocked(), controllers.AddToCart)
	router.PUT("/update-quantity", middleware.CheckUserBlocked(), controllers.UpdateQuantity)
	router.DELETE("/removeProduct", middleware.CheckUserBlocked(), controllers.RemoveFromCart)

	// Orders and payment
	router.POST("/createOrder", middleware.CheckUserBlocked(), controllers.CreateOrder)
	router.POST("/confirmOrder", middleware.CheckUserBlocked(), controllers.ConfirmOrder)
	router.POST("/createPaymentOrder", controllers.CreatePaymentOrder)
	router.POST("/mockPayment", controllers.MockPayment)
	router.GET("/order/:orderId", controllers.GetOrder)
	router.GET("/myOrders", middleware.CheckUserBlocked(), controllers.MyOrders)

	// Retailer discovery and dashboard
	router.GET("/nearbyretailers", middleware.CheckUserBlocked(), controllers.NearbyRetailers)
	router.GET("/retailerDetails/:retailerId", middleware.CheckUserBlocked(), controllers.RetailerDetails)
	router.GET("/retailerOrders", middleware.RequireRetailer(), controllers.RetailerOrders)

	// Admin
	admin := router.Group("/", middleware.RequireAdmin())
	{
		admin.GET("/api/users", controllers.ListUsers)
		admin.POST("/block_unblock", controllers.BlockUnblockUser)
		admin.GET("/api/pendingRetailers", controllers.PendingRetailers)
		admin.POST("/api/approveRetailer", controllers.ApproveRetailer)
		admin.POST("/api/rejectRetailer", controllers.RejectRetailer)
		admin.GET("/api/admin/orders", controllers.AllOrders)
		admin.POST("/api/admin/updateOrderStatus", controllers.AdminUpdateOrderStatus)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "NearMart API is running",
	})
}
