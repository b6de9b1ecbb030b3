package repository

import (
	"context"

	"github.com/divyansh1004/Manthan/internal/domain"
)

// UserRepository defines storage and retrieval of identity records.
type UserRepository interface {
	// FindByUsername returns the user with the given username, or
	// ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID returns the user with the given ID, or ErrUserNotFound.
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save creates the user if its ID is zero, otherwise updates it.
	// Returns ErrDuplicateEntry on username/email conflicts.
	Save(ctx context.Context, user *domain.User) error
}
