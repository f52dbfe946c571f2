package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles an account can hold. Admin accounts are seeded directly in the
// database and never created through signup.
const (
	RoleCustomer = "user"
	RoleRetailer = "retailer"
	RoleAdmin    = "admin"
)

// Approval statuses. Customers are approved at signup; retailers start
// pending and wait for an admin decision.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Serviceable-area bounds enforced at retailer signup, counted after
// deduplication and after dropping the shop's own pincode.
const (
	MinServiceablePincodes = 2
	MaxServiceablePincodes = 6
)

// User represents an account in the system (customer, retailer or admin)
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	Phone        string `gorm:"uniqueIndex;not null" json:"phone"`
	Role         string `gorm:"not null" json:"role"`                      // "user", "retailer" or "admin"
	Status       string `gorm:"not null;default:'approved'" json:"status"` // "pending", "approved" or "rejected"
	Block        bool   `gorm:"not null;default:false" json:"block"`

	// Address
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Pincode     string `gorm:"not null;index" json:"pincode"`

	// Retailer-only fields
	ShopName         string            `json:"shop_name,omitempty"`
	ProductType      string            `json:"product_type,omitempty"`
	ShopImageKey     string            `json:"shop_image_key,omitempty"`
	ShopImageURL     string            `gorm:"-" json:"shop_image_url,omitempty"` // computed, presigned URL
	ServiceableAreas []ServiceableArea `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"serviceable_areas,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsRetailer reports whether the account is a retailer
func (u *User) IsRetailer() bool {
	return u.Role == RoleRetailer
}

// NormalizeServiceablePincodes deduplicates the declared pincodes
// (preserving order) and drops the shop's own pincode. The returned
// slice is what gets persisted; callers must check its length against
// the serviceable-area bounds.
func NormalizeServiceablePincodes(pins []string, ownPincode string) []string {
	seen := make(map[string]struct{}, len(pins))
	normalized := make([]string, 0, len(pins))
	for _, pin := range pins {
		if pin == "" || pin == ownPincode {
			continue
		}
		if _, dup := seen[pin]; dup {
			continue
		}
		seen[pin] = struct{}{}
		normalized = append(normalized, pin)
	}
	return normalized
}

// ValidServiceablePincodeCount checks the post-normalization count
// against the allowed bounds
func ValidServiceablePincodeCount(pins []string) bool {
	return len(pins) >= MinServiceablePincodes && len(pins) <= MaxServiceablePincodes
}
