package repository

import (
	"context"

	"github.com/divyansh1004/Manthan/internal/domain"
)

// ClassroomRepository defines storage and retrieval of classrooms and
// their membership lists.
type ClassroomRepository interface {
	// FindByCode returns the classroom with the given join code, members
	// preloaded, or ErrClassroomNotFound.
	FindByCode(ctx context.Context, code string) (*domain.Classroom, error)

	// FindByMember returns every classroom whose membership list contains
	// userID. An empty slice is a valid result.
	FindByMember(ctx context.Context, userID uint) ([]domain.Classroom, error)

	// Save creates the classroom if its ID is zero, otherwise updates it.
	// Membership rows for any users present in JoinedUsers are written too.
	// Returns ErrDuplicateEntry if the join code is already taken.
	Save(ctx context.Context, classroom *domain.Classroom) error

	// Delete removes the classroom and all of its membership rows.
	Delete(ctx context.Context, classroom *domain.Classroom) error

	// AddMember appends the user to the classroom's membership list.
	AddMember(ctx context.Context, classroom *domain.Classroom, user *domain.User) error

	// RemoveMember removes the user from the classroom's membership list.
	// Removing a user who is not a member is not an error.
	RemoveMember(ctx context.Context, classroom *domain.Classroom, userID uint) error

	// IsCodeTaken reports whether a classroom with the given join code
	// already exists.
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
