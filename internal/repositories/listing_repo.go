package repositories

import "passitpal/internal/models"

// ListingRepository defines the interface for listing data access. The
// order engine only reads listings and conditionally flips their
// availability; full listing CRUD belongs to the seller's edit path.
type ListingRepository interface {
	GetByID(id string) (*models.Listing, error)
	Create(listing *models.Listing) error
	Update(listing *models.Listing) error
	// SetAvailabilityIf atomically sets IsAvailable to value only if it
	// currently equals expected, and reports whether the update was
	// applied. A false return with nil error means the compare failed.
	SetAvailabilityIf(id string, expected, value bool) (bool, error)
}
