package repositories

import (
	"fmt"
	"sync"
	"time"

	"passitpal/internal/models"

	"github.com/google/uuid"
)

// MockListingRepository is an in-memory implementation of ListingRepository.
type MockListingRepository struct {
	listings map[string]models.Listing
	mu       sync.RWMutex
}

// NewMockListingRepository creates a new instance of MockListingRepository.
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{
		listings: make(map[string]models.Listing),
	}
}

// GetByID returns a listing by its ID.
func (r *MockListingRepository) GetByID(id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
	}
	return &listing, nil
}

// Create adds a new listing.
func (r *MockListingRepository) Create(listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()
	r.listings[listing.ID] = *listing
	return nil
}

// Update replaces an existing listing.
func (r *MockListingRepository) Update(listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return fmt.Errorf("listing with ID %s for update: %w", listing.ID, ErrNotFound)
	}
	listing.UpdatedAt = time.Now()
	r.listings[listing.ID] = *listing
	return nil
}

// SetAvailabilityIf applies the availability compare-and-swap under the
// repository lock, mirroring the conditional UPDATE of the GORM
// implementation.
func (r *MockListingRepository) SetAvailabilityIf(id string, expected, value bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return false, nil
	}
	if listing.IsAvailable != expected {
		return false, nil
	}
	listing.IsAvailable = value
	listing.UpdatedAt = time.Now()
	r.listings[id] = listing
	return true, nil
}
