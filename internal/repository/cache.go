package repository

import (
	"context"

	"github.com/divyansh1004/Manthan/internal/domain"
)

// RosterCache caches classroom records (with their membership lists) keyed
// by join code. It is a read-through layer in front of ClassroomRepository;
// a miss is reported as ErrNotFound.
type RosterCache interface {
	// GetByCode returns the cached classroom for the code, or ErrNotFound.
	GetByCode(ctx context.Context, code string) (*domain.Classroom, error)

	// Set stores the classroom under its join code.
	Set(ctx context.Context, classroom *domain.Classroom) error

	// Invalidate drops the cache entry for the code, if present.
	Invalidate(ctx context.Context, code string) error

	// Codes lists every join code currently cached. Used by the periodic
	// reconcile task.
	Codes(ctx context.Context) ([]string, error)
}
