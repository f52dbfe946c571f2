package models

// ServiceableArea is one pincode a retailer has declared it can deliver
// to. Retailer discovery joins against this table.
type ServiceableArea struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_user_pincode" json:"user_id"`
	Pincode string `gorm:"not null;uniqueIndex:idx_user_pincode;index" json:"pincode"`
}

// TableName specifies the table name for the ServiceableArea model
func (ServiceableArea) TableName() string {
	return "serviceable_areas"
}
