package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nearmart/nearmart-api/models"
)

var (
	// ErrEmptyCart is returned when an order is requested for a cart
	// with no lines
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMixedRetailer is returned when cart lines disagree about the
	// retailer they belong to
	ErrMixedRetailer = errors.New("cart references more than one retailer")
	// ErrProductMissing is returned when a cart line references a
	// product that no longer exists
	ErrProductMissing = errors.New("cart references a missing product")
)

// BuildOrder reads the customer's entire cart and assembles an unsaved
// order from it.
//
// The retailer is resolved from the cart lines' product references; that
// is the canonical source. The denormalized retailer field on each line
// is validated against it and any disagreement fails loudly with
// ErrMixedRetailer rather than trusting either copy.
//
// The total uses the prices captured into the cart at add time, not the
// current catalog prices, and the delivery address is copied from the
// account as it stands now. The cart is left untouched: it is cleared
// only when payment confirmation succeeds, so an abandoned unpaid order
// keeps the cart intact for retry.
func BuildOrder(db *gorm.DB, user *models.User) (*models.Order, error) {
	var cartItems []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", user.ID).Find(&cartItems).Error; err != nil {
		return nil, err
	}

	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	if cartItems[0].Product.ID == 0 {
		return nil, ErrProductMissing
	}
	retailerID := cartItems[0].Product.RetailerID

	var totalAmount float64
	items := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		if item.Product.ID == 0 {
			return nil, ErrProductMissing
		}
		if item.Product.RetailerID != retailerID || item.RetailerID != retailerID {
			return nil, ErrMixedRetailer
		}

		totalAmount += item.ProductPrice * float64(item.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			Price:       item.ProductPrice,
			Quantity:    item.Quantity,
		})
	}

	return &models.Order{
		UserID:              user.ID,
		RetailerID:          retailerID,
		Items:               items,
		TotalAmount:         totalAmount,
		PaymentStatus:       models.PaymentPending,
		OrderStatus:         models.OrderPlaced,
		DeliveryAddressLine: user.AddressLine,
		DeliveryCity:        user.City,
		DeliveryPincode:     user.Pincode,
	}, nil
}

// ConfirmPayment marks the order paid and confirmed, records the payment
// id and gateway, and clears the customer's cart — all in one
// transaction. This coupling is deliberate: clearing on payment
// confirmation is the only cart-clearing trigger besides explicit
// removal.
func ConfirmPayment(db *gorm.DB, order *models.Order, paymentID, gateway string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"payment_status":  models.PaymentPaid,
			"payment_id":      paymentID,
			"payment_gateway": gateway,
			"order_status":    models.OrderConfirmed,
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error
	})
}

// FindNearbyRetailers returns approved, unblocked retailers that declare
// the given pincode serviceable or whose own shop pincode equals it.
// Matching is exact string equality; there is no distance computation.
func FindNearbyRetailers(db *gorm.DB, pincode string) ([]models.User, error) {
	var retailers []models.User
	err := db.Preload("ServiceableAreas").
		Where("role = ? AND status = ? AND block = ?", models.RoleRetailer, models.StatusApproved, false).
		Where("pincode = ? OR id IN (?)",
			pincode,
			db.Model(&models.ServiceableArea{}).Select("user_id").Where("pincode = ?", pincode),
		).
		Find(&retailers).Error
	if err != nil {
		return nil, err
	}
	return retailers, nil
}
