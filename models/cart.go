package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one product entry in a customer's in-progress order staging
// area. Product name, image and price are denormalized at add time so an
// order created later snapshots the prices the customer saw, not the
// current catalog prices.
//
// Invariant: all cart items for a given customer reference products of a
// single retailer. This is enforced at insertion time (AddToCart), not as
// a stored constraint.
//
// Quantity has no stored floor: the update path caps it to the product's
// current stock, which can be 0 when the product sells out.
type CartItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	RetailerID   uint    `gorm:"not null;index" json:"retailer_id"`
	ProductID    uint    `gorm:"not null;index" json:"product_id"`
	Product      Product `gorm:"foreignKey:ProductID" json:"-"`
	ProductName  string  `json:"product_name"`
	ImageURL     string  `json:"image_url"`
	ProductPrice float64 `json:"product_price"`
	Quantity     int     `gorm:"not null;default:1" json:"quantity"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}
