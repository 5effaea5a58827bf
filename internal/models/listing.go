package models

import "time"

// Listing is a for-sale fitness-pass entry created by a seller. The
// order engine reads it and conditionally flips IsAvailable when an
// offer is accepted; the seller's own edit path is the only other
// writer of that flag.
type Listing struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID         string    `json:"seller_id" gorm:"index;type:varchar(36)" validate:"required"`
	CultPassType     string    `json:"cult_pass_type" gorm:"type:varchar(100)" validate:"required"`
	ExpiryDate       time.Time `json:"expiry_date"`
	AskingPrice      float64   `json:"asking_price" validate:"gte=0"`
	OriginalPrice    float64   `json:"original_price" validate:"gte=0"`
	AvailableCredits int       `json:"available_credits,omitempty"`
	City             string    `json:"city" gorm:"type:varchar(100)"`
	AdImageURL       string    `json:"ad_image_url,omitempty" gorm:"type:varchar(512)"`
	IsAvailable      bool      `json:"is_available" gorm:"default:true"`
	IsPromoted       bool      `json:"is_promoted" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
