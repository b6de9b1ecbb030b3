package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/repository"
)

// GormClassroomRepository is the GORM implementation of ClassroomRepository.
// Membership lives in the classroom_members join table managed through the
// JoinedUsers association.
type GormClassroomRepository struct {
	db *gorm.DB
}

func NewGormClassroomRepository(db *gorm.DB) *GormClassroomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormClassroomRepository")
	}
	return &GormClassroomRepository{db: db}
}

func (r *GormClassroomRepository) FindByCode(ctx context.Context, code string) (*domain.Classroom, error) {
	var classroom domain.Classroom
	err := r.db.WithContext(ctx).
		Preload("JoinedUsers").
		Where("code = ?", code).
		First(&classroom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClassroomNotFound
		}
		return nil, fmt.Errorf("gorm: find classroom by code '%s': %w", code, err)
	}
	return &classroom, nil
}

func (r *GormClassroomRepository) FindByMember(ctx context.Context, userID uint) ([]domain.Classroom, error) {
	var classrooms []domain.Classroom
	err := r.db.WithContext(ctx).
		Joins("JOIN classroom_members cm ON cm.classroom_id = classrooms.id").
		Where("cm.user_id = ?", userID).
		Preload("JoinedUsers").
		Find(&classrooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find classrooms for member %d: %w", userID, err)
	}
	return classrooms, nil
}

// Save persists the classroom and any membership rows carried in
// JoinedUsers. A duplicate join code maps to ErrDuplicateEntry.
func (r *GormClassroomRepository) Save(ctx context.Context, classroom *domain.Classroom) error {
	err := r.db.WithContext(ctx).Save(classroom).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save classroom (id: %d, code: %s): %w", classroom.ID, classroom.Code, err)
	}
	return nil
}

// Delete removes the classroom and clears its membership rows first so the
// join table never holds orphans.
func (r *GormClassroomRepository) Delete(ctx context.Context, classroom *domain.Classroom) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Model(classroom).Association("JoinedUsers").Clear(); err != nil {
		return fmt.Errorf("gorm: clear members of classroom %d: %w", classroom.ID, err)
	}
	if err := tx.Delete(classroom).Error; err != nil {
		return fmt.Errorf("gorm: delete classroom (id: %d, code: %s): %w", classroom.ID, classroom.Code, err)
	}
	return nil
}

func (r *GormClassroomRepository) AddMember(ctx context.Context, classroom *domain.Classroom, user *domain.User) error {
	err := r.db.WithContext(ctx).Model(classroom).Association("JoinedUsers").Append(user)
	if err != nil {
		return fmt.Errorf("gorm: add member %d to classroom %d: %w", user.ID, classroom.ID, err)
	}
	return nil
}

func (r *GormClassroomRepository) RemoveMember(ctx context.Context, classroom *domain.Classroom, userID uint) error {
	err := r.db.WithContext(ctx).Model(classroom).
		Association("JoinedUsers").
		Delete(&domain.User{ID: userID})
	if err != nil {
		return fmt.Errorf("gorm: remove member %d from classroom %d: %w", userID, classroom.ID, err)
	}
	return nil
}

func (r *GormClassroomRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Classroom{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count classrooms by code '%s': %w", code, err)
	}
	return count > 0, nil
}
