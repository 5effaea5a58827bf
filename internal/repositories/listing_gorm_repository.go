package repositories

import (
	"errors"
	"fmt"
	"time"

	"passitpal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// GetByID retrieves a single listing by its ID from the database.
func (r *GORMListingRepository) GetByID(id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", id, err)
	}
	return &listing, nil
}

// Create creates a new listing in the database.
func (r *GORMListingRepository) Create(listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if err := r.db.Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// Update updates an existing listing in the database.
func (r *GORMListingRepository) Update(listing *models.Listing) error {
	res := r.db.Save(listing)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing with ID %s for update: %w", listing.ID, ErrNotFound)
	}
	return nil
}

// SetAvailabilityIf performs a compare-and-swap on IsAvailable. The
// WHERE clause carries the expected current value, so two concurrent
// flips cannot both apply.
func (r *GORMListingRepository) SetAvailabilityIf(id string, expected, value bool) (bool, error) {
	res := r.db.Model(&models.Listing{}).
		Where("id = ? AND is_available = ?", id, expected).
		Updates(map[string]interface{}{"is_available": value, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update availability for listing %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
