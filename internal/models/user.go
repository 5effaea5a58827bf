package models

import "gorm.io/gorm"

// Roles a user account can hold.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents a marketplace account. Buyers make offers on listings,
// sellers own listings and decide the outcome of those offers.
type User struct {
	ID                string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username          string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email             string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password          string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role              string `json:"role" gorm:"type:varchar(20);default:buyer" validate:"omitempty,oneof=buyer seller admin"`
	City              string `json:"city" gorm:"type:varchar(100)"`
	MobileNumber      string `json:"mobile_number,omitempty" gorm:"type:varchar(20)"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty" gorm:"type:varchar(512)"`
	IsMobileVerified  bool   `json:"is_mobile_verified" gorm:"default:false"`
	IsBlocked         bool   `json:"is_blocked" gorm:"default:false"`
	gorm.Model               // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
