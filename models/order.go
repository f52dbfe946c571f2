package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

// Order statuses
const (
	OrderPlaced    = "PLACED"
	OrderConfirmed = "CONFIRMED"
	OrderCancelled = "CANCELLED"
)

// ValidOrderStatus reports whether s is one of the three accepted order
// statuses. The admin override endpoint rejects anything else.
func ValidOrderStatus(s string) bool {
	return s == OrderPlaced || s == OrderConfirmed || s == OrderCancelled
}

// Order is an immutable snapshot of a customer's cart at creation time
// plus payment and delivery state. Items, total and delivery address are
// frozen copies; later catalog or profile edits never touch them.
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RetailerID uint        `gorm:"not null;index" json:"retailer_id"` // for the retailer dashboard
	Retailer   User        `gorm:"foreignKey:RetailerID" json:"retailer,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	// Payment sub-record
	PaymentStatus  string `gorm:"not null;default:'PENDING'" json:"payment_status"` // PENDING, PAID, FAILED
	PaymentID      string `json:"payment_id,omitempty"`
	PaymentGateway string `json:"payment_gateway,omitempty"`

	OrderStatus string `gorm:"not null;default:'PLACED'" json:"order_status"` // PLACED, CONFIRMED, CANCELLED

	// Delivery address copied from the account at creation time
	DeliveryAddressLine string `json:"delivery_address_line"`
	DeliveryCity        string `json:"delivery_city"`
	DeliveryPincode     string `json:"delivery_pincode"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one frozen cart line inside an order
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"not null;index" json:"order_id"`
	ProductID   uint    `gorm:"not null" json:"product_id"`
	ProductName string  `json:"product_name"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
