package repositories

import "passitpal/internal/models"

// UserRepository defines the interface for user data access. It doubles
// as the identity store consumed by the order engine and the realtime
// handshake.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
