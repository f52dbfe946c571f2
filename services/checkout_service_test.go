package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.ServiceableArea{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, pincode string) *models.User {
	t.Helper()
	user := models.User{
		Email: "customer@example.com", Name: "Customer", PasswordHash: "x",
		Phone: "9000000001", Role: models.RoleCustomer, Status: models.StatusApproved,
		AddressLine: "12 Main Street", City: "Bengaluru", Pincode: pincode,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedRetailer(t *testing.T, db *gorm.DB, email, phone, pincode string, serviceable ...string) *models.User {
	t.Helper()
	user := models.User{
		Email: email, Name: "Retailer", PasswordHash: "x",
		Phone: phone, Role: models.RoleRetailer, Status: models.StatusApproved,
		Pincode: pincode, ShopName: "Shop " + email,
	}
	for _, pin := range serviceable {
		user.ServiceableAreas = append(user.ServiceableAreas, models.ServiceableArea{Pincode: pin})
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, retailerID uint, name string, price float64, quantity int) *models.Product {
	t.Helper()
	product := models.Product{
		RetailerID: retailerID, ProductName: name, Price: price,
		Category: "grocery", Quantity: quantity,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedCartLine(t *testing.T, db *gorm.DB, userID uint, product *models.Product, quantity int) *models.CartItem {
	t.Helper()
	item := models.CartItem{
		UserID: userID, RetailerID: product.RetailerID, ProductID: product.ID,
		ProductName: product.ProductName, ProductPrice: product.Price, Quantity: quantity,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func TestBuildOrderEmptyCart(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")

	_, err := BuildOrder(db, customer)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildOrderSnapshot(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")
	retailer := seedRetailer(t, db, "shop@example.com", "8000000001", "560001")
	rice := seedProduct(t, db, retailer.ID, "Rice 5kg", 100, 5)
	oil := seedProduct(t, db, retailer.ID, "Oil 1L", 250, 10)

	seedCartLine(t, db, customer.ID, rice, 5)
	seedCartLine(t, db, customer.ID, oil, 2)

	order, err := BuildOrder(db, customer)
	require.NoError(t, err)

	assert.Equal(t, customer.ID, order.UserID)
	assert.Equal(t, retailer.ID, order.RetailerID)
	assert.Equal(t, float64(5*100+2*250), order.TotalAmount)
	assert.Equal(t, models.OrderPlaced, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "12 Main Street", order.DeliveryAddressLine)
	assert.Equal(t, "560001", order.DeliveryPincode)
	require.Len(t, order.Items, 2)

	// Items are frozen copies, not references into the catalog
	assert.Equal(t, "Rice 5kg", order.Items[0].ProductName)
	assert.Equal(t, float64(100), order.Items[0].Price)
	assert.Equal(t, 5, order.Items[0].Quantity)
}

func TestBuildOrderUsesCapturedPrices(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")
	retailer := seedRetailer(t, db, "shop@example.com", "8000000001", "560001")
	rice := seedProduct(t, db, retailer.ID, "Rice 5kg", 100, 5)
	seedCartLine(t, db, customer.ID, rice, 3)

	require.NoError(t, db.Model(rice).Update("price", 999).Error)

	order, err := BuildOrder(db, customer)
	require.NoError(t, err)
	assert.Equal(t, float64(300), order.TotalAmount)
}

func TestBuildOrderMixedRetailer(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")
	retailerA := seedRetailer(t, db, "shopa@example.com", "8000000001", "560001")
	retailerB := seedRetailer(t, db, "shopb@example.com", "8000000002", "560001")
	rice := seedProduct(t, db, retailerA.ID, "Rice 5kg", 100, 5)
	soap := seedProduct(t, db, retailerB.ID, "Soap", 30, 20)

	// Lines from two retailers should never coexist; if they do, the
	// order build refuses rather than guessing
	seedCartLine(t, db, customer.ID, rice, 1)
	seedCartLine(t, db, customer.ID, soap, 1)

	_, err := BuildOrder(db, customer)
	assert.ErrorIs(t, err, ErrMixedRetailer)
}

func TestBuildOrderStaleDenormalizedRetailer(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")
	retailer := seedRetailer(t, db, "shopa@example.com", "8000000001", "560001")
	rice := seedProduct(t, db, retailer.ID, "Rice 5kg", 100, 5)
	line := seedCartLine(t, db, customer.ID, rice, 1)

	// Corrupt the denormalized copy; the product reference is canonical
	// and the mismatch must fail loudly
	require.NoError(t, db.Model(line).Update("retailer_id", retailer.ID+100).Error)

	_, err := BuildOrder(db, customer)
	assert.ErrorIs(t, err, ErrMixedRetailer)
}

func TestConfirmPaymentClearsCartAtomically(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "560001")
	other := models.User{
		Email: "other@example.com", Name: "Other", PasswordHash: "x",
		Phone: "9000000002", Role: models.RoleCustomer, Status: models.StatusApproved,
		Pincode: "560001",
	}
	require.NoError(t, db.Create(&other).Error)

	retailer := seedRetailer(t, db, "shop@example.com", "8000000001", "560001")
	rice := seedProduct(t, db, retailer.ID, "Rice 5kg", 100, 5)
	seedCartLine(t, db, customer.ID, rice, 2)
	seedCartLine(t, db, other.ID, rice, 1)

	order, err := BuildOrder(db, customer)
	require.NoError(t, err)
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, ConfirmPayment(db, order, "pay_123", "RAZORPAY"))

	var confirmed models.Order
	require.NoError(t, db.First(&confirmed, order.ID).Error)
	assert.Equal(t, models.PaymentPaid, confirmed.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, confirmed.OrderStatus)
	assert.Equal(t, "pay_123", confirmed.PaymentID)
	assert.Equal(t, "RAZORPAY", confirmed.PaymentGateway)

	// Only the paying customer's cart is cleared
	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", customer.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFindNearbyRetailers(t *testing.T) {
	db := setupServiceTestDB(t)

	samePin := seedRetailer(t, db, "samepin@example.com", "8000000001", "560001", "560002")
	covering := seedRetailer(t, db, "covering@example.com", "8000000002", "560099", "560001")
	seedRetailer(t, db, "far@example.com", "8000000003", "400001", "400002")

	pending := seedRetailer(t, db, "pending@example.com", "8000000004", "560001", "560002")
	require.NoError(t, db.Model(pending).Update("status", models.StatusPending).Error)

	blocked := seedRetailer(t, db, "blocked@example.com", "8000000005", "560001", "560002")
	require.NoError(t, db.Model(blocked).Update("block", true).Error)

	retailers, err := FindNearbyRetailers(db, "560001")
	require.NoError(t, err)

	ids := make([]uint, 0, len(retailers))
	for _, r := range retailers {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{samePin.ID, covering.ID}, ids)
}
