package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/config"
	"github.com/nearmart/nearmart-api/controllers"
	"github.com/nearmart/nearmart-api/middleware"
	"github.com/nearmart/nearmart-api/models"
	"github.com/nearmart/nearmart-api/services"
	"github.com/nearmart/nearmart-api/tests/testutil"
	"github.com/nearmart/nearmart-api/utils"
)

// CheckoutIntegrationTestSuite drives the full customer journey through
// the HTTP surface: signup, approval, login, discovery, cart, order and
// payment confirmation.
type CheckoutIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

// SetupSuite runs once before all tests
func (suite *CheckoutIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("PORT", "8080")
	testutil.RequireTestEnvironment(suite.T())

	cfg := &config.Config{
		GoEnv:      "test",
		Port:       "8080",
		SessionTTL: 8 * time.Hour,
	}
	config.SetConfig(cfg)
	suite.cfg = cfg
}

// SetupTest runs before each test
func (suite *CheckoutIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.ServiceableArea{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Session{},
	)
	suite.NoError(err)

	config.SetDB(db)
	middleware.SetSessionStore(middleware.NewGormSessionStore(suite.cfg.SessionTTL))
	services.NewMockS3Service().SetAsMockForTesting()
	services.SetPaymentGateway(services.NewMockPaymentGateway())

	suite.router = gin.New()
	suite.router.POST("/signup", controllers.Signup)
	suite.router.POST("/login", controllers.Login)
	suite.router.POST("/logout", controllers.Logout)
	suite.router.GET("/products", controllers.ListProducts)
	suite.router.GET("/nearbyretailers", middleware.CheckUserBlocked(), controllers.NearbyRetailers)
	suite.router.GET("/cart", middleware.CheckUserBlocked(), controllers.GetCart)
	suite.router.POST("/addCart", middleware.CheckUserBlocked(), controllers.AddToCart)
	suite.router.PUT("/update-quantity", middleware.CheckUserBlocked(), controllers.UpdateQuantity)
	suite.router.POST("/createOrder", middleware.CheckUserBlocked(), controllers.CreateOrder)
	suite.router.POST("/mockPayment", middleware.RequireLogin(), controllers.MockPayment)
	suite.router.GET("/myOrders", middleware.CheckUserBlocked(), controllers.MyOrders)

	api := suite.router.Group("/api", middleware.RequireAdmin())
	{
		api.POST("/approveRetailer", controllers.ApproveRetailer)
		api.POST("/block_unblock", controllers.BlockUnblockUser)
	}
}

func (suite *CheckoutIntegrationTestSuite) request(method, path string, body []byte, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CheckoutIntegrationTestSuite) jsonRequest(method, path string, payload gin.H, cookies []*http.Cookie) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	suite.NoError(err)
	return suite.request(method, path, body, "application/json", cookies)
}

// signupRetailer submits the multipart retailer signup form
func (suite *CheckoutIntegrationTestSuite) signupRetailer(email, pincode, serviceable string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"email": email, "name": "Retailer", "pass": "secret123",
		"role": "retailer", "address": "4 Market Road", "city": "Bengaluru",
		"pincode": pincode, "phone": "8" + email,
		"shopName": "Fresh Mart", "productType": "grocery",
		"serviceablePincodes": serviceable,
	}
	for key, value := range fields {
		suite.NoError(writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("shopImage", "shop.png")
	suite.NoError(err)
	_, err = part.Write([]byte("fake png bytes"))
	suite.NoError(err)
	suite.NoError(writer.Close())

	return suite.request(http.MethodPost, "/signup", body.Bytes(), writer.FormDataContentType(), nil)
}

// signupCustomer submits the multipart customer signup form
func (suite *CheckoutIntegrationTestSuite) signupCustomer(email, pincode string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"email": email, "name": "Customer", "pass": "secret123",
		"role": "user", "address": "12 Main Street", "city": "Bengaluru",
		"pincode": pincode, "phone": "9" + email,
	}
	for key, value := range fields {
		suite.NoError(writer.WriteField(key, value))
	}
	suite.NoError(writer.Close())

	return suite.request(http.MethodPost, "/signup", body.Bytes(), writer.FormDataContentType(), nil)
}

// login returns the session cookies from a successful login
func (suite *CheckoutIntegrationTestSuite) login(email string) []*http.Cookie {
	w := suite.jsonRequest(http.MethodPost, "/login", gin.H{"email": email, "pass": "secret123"}, nil)
	suite.Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	suite.NotEmpty(cookies)
	return cookies
}

// seedAdmin inserts an admin account directly; admins never sign up
func (suite *CheckoutIntegrationTestSuite) seedAdmin() *models.User {
	hash, err := utils.HashPassword("secret123")
	suite.NoError(err)
	admin := models.User{
		Email: "admin@example.com", Name: "Admin", PasswordHash: hash,
		Phone: "7000000000", Role: models.RoleAdmin, Status: models.StatusApproved,
		Pincode: "560001",
	}
	suite.NoError(suite.db.Create(&admin).Error)
	return &admin
}

// TestFullCheckoutFlow walks the entire marketplace journey end to end
func (suite *CheckoutIntegrationTestSuite) TestFullCheckoutFlow() {
	// Retailer signs up and waits for approval
	w := suite.signupRetailer("shop@example.com", "560001", `["560002","560003"]`)
	suite.Equal(http.StatusOK, w.Code)

	// Login is refused while pending
	w = suite.jsonRequest(http.MethodPost, "/login", gin.H{"email": "shop@example.com", "pass": "secret123"}, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "Waiting for admin approval")

	// Admin approves
	suite.seedAdmin()
	adminCookies := suite.login("admin@example.com")

	var retailer models.User
	suite.NoError(suite.db.Where("email = ?", "shop@example.com").First(&retailer).Error)
	w = suite.jsonRequest(http.MethodPost, "/api/approveRetailer", gin.H{"userId": retailer.ID}, adminCookies)
	suite.Equal(http.StatusOK, w.Code)

	// The retailer lists a product (seeded directly; listing has its own tests)
	product := models.Product{
		RetailerID: retailer.ID, ProductName: "Rice 5kg", Price: 100,
		Category: "grocery", ImageURL: "https://img.example.com/rice.png",
		Description: "5kg bag", Quantity: 5,
	}
	suite.NoError(suite.db.Create(&product).Error)

	// Customer signs up in the retailer's own pincode and logs in
	w = suite.signupCustomer("alice@example.com", "560001")
	suite.Equal(http.StatusOK, w.Code)
	cookies := suite.login("alice@example.com")

	// Discovery finds the shop
	w = suite.request(http.MethodGet, "/nearbyretailers", nil, "", cookies)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Fresh Mart")

	// The catalog shows the product
	w = suite.request(http.MethodGet, "/products", nil, "", cookies)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Rice 5kg")

	// Add to cart, then push the quantity past the stock; it caps at 5
	w = suite.jsonRequest(http.MethodPost, "/addCart", gin.H{"productId": product.ID}, cookies)
	suite.Equal(http.StatusOK, w.Code)

	var line models.CartItem
	suite.NoError(suite.db.Where("user_id = ?", suite.userID("alice@example.com")).First(&line).Error)

	w = suite.jsonRequest(http.MethodPut, "/update-quantity", gin.H{"cartId": line.ID, "quantity": 10}, cookies)
	suite.Equal(http.StatusOK, w.Code)

	var quantityResp struct {
		Quantity       int `json:"quantity"`
		AvailableStock int `json:"availableStock"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &quantityResp))
	suite.Equal(5, quantityResp.Quantity)
	suite.Equal(5, quantityResp.AvailableStock)

	// Create the order; total reflects the capped quantity
	w = suite.jsonRequest(http.MethodPost, "/createOrder", nil, cookies)
	suite.Equal(http.StatusCreated, w.Code)

	var orderResp struct {
		OrderID     uint    `json:"orderId"`
		TotalAmount float64 `json:"totalAmount"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &orderResp))
	suite.Equal(float64(500), orderResp.TotalAmount)

	// The cart survives order creation
	var count int64
	suite.NoError(suite.db.Model(&models.CartItem{}).Where("user_id = ?", line.UserID).Count(&count).Error)
	suite.Equal(int64(1), count)

	// Mock payment confirms the order and clears the cart
	w = suite.jsonRequest(http.MethodPost, "/mockPayment", gin.H{"orderId": orderResp.OrderID}, cookies)
	suite.Equal(http.StatusOK, w.Code)

	var order models.Order
	suite.NoError(suite.db.First(&order, orderResp.OrderID).Error)
	suite.Equal(models.PaymentPaid, order.PaymentStatus)
	suite.Equal(models.OrderConfirmed, order.OrderStatus)

	suite.NoError(suite.db.Model(&models.CartItem{}).Where("user_id = ?", line.UserID).Count(&count).Error)
	suite.Equal(int64(0), count)

	// The order history shows it
	w = suite.request(http.MethodGet, "/myOrders", nil, "", cookies)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Rice 5kg")
}

// TestBlockedCustomerLosesAccess verifies an admin block bites on the
// customer's very next request without destroying the session
func (suite *CheckoutIntegrationTestSuite) TestBlockedCustomerLosesAccess() {
	w := suite.signupCustomer("alice@example.com", "560001")
	suite.Equal(http.StatusOK, w.Code)
	cookies := suite.login("alice@example.com")

	w = suite.request(http.MethodGet, "/cart", nil, "", cookies)
	suite.Equal(http.StatusOK, w.Code)

	suite.seedAdmin()
	adminCookies := suite.login("admin@example.com")
	w = suite.jsonRequest(http.MethodPost, "/api/block_unblock",
		gin.H{"userid": suite.userID("alice@example.com")}, adminCookies)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/cart", nil, "", cookies)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "You are Blocked by Admin!")
}

// TestLogoutEndsSession verifies the cookie stops working after logout
func (suite *CheckoutIntegrationTestSuite) TestLogoutEndsSession() {
	w := suite.signupCustomer("alice@example.com", "560001")
	suite.Equal(http.StatusOK, w.Code)
	cookies := suite.login("alice@example.com")

	w = suite.request(http.MethodPost, "/logout", nil, "", cookies)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/cart", nil, "", cookies)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CheckoutIntegrationTestSuite) userID(email string) uint {
	var user models.User
	suite.NoError(suite.db.Where("email = ?", email).First(&user).Error)
	return user.ID
}

// TestCheckoutIntegrationTestSuite runs the integration test suite
func TestCheckoutIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutIntegrationTestSuite))
}
