package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents one inventory item owned by a retailer
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	RetailerID  uint    `gorm:"not null;index" json:"retailer_id"` // foreign key to users table
	Retailer    User    `gorm:"foreignKey:RetailerID" json:"-"`
	ProductName string  `gorm:"not null" json:"product_name"`
	Price       float64 `gorm:"not null;check:price >= 0" json:"price"`
	Category    string  `gorm:"not null;index" json:"category"`
	ImageURL    string  `gorm:"not null" json:"image_url"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    int     `gorm:"not null;check:quantity >= 0" json:"quantity"` // available stock

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
