package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/repository"
	"github.com/divyansh1004/Manthan/internal/tasks"
)

// TaskEnqueuer is the slice of asynq.Client the service needs. Narrowed to
// an interface so tests can stub it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ClassroomService implements classroom lifecycle and membership logic.
// Every operation is scoped to the authenticated caller: reads are gated on
// membership, metadata writes on authorship.
type ClassroomService struct {
	classroomRepo repository.ClassroomRepository
	userRepo      repository.UserRepository
	cache         repository.RosterCache
	enqueuer      TaskEnqueuer
}

func NewClassroomService(classroomRepo repository.ClassroomRepository, userRepo repository.UserRepository, cache repository.RosterCache, enqueuer TaskEnqueuer) *ClassroomService {
	if classroomRepo == nil {
		panic("ClassroomRepository cannot be nil for ClassroomService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ClassroomService")
	}
	if cache == nil {
		panic("RosterCache cannot be nil for ClassroomService")
	}
	if enqueuer == nil {
		panic("TaskEnqueuer cannot be nil for ClassroomService")
	}
	return &ClassroomService{
		classroomRepo: classroomRepo,
		userRepo:      userRepo,
		cache:         cache,
		enqueuer:      enqueuer,
	}
}

// ListForUser returns every classroom the caller is a member of. No
// classrooms is a normal result, not an error.
func (s *ClassroomService) ListForUser(ctx context.Context, userID uint) ([]domain.Classroom, error) {
	classrooms, err := s.classroomRepo.FindByMember(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to list classrooms for user")
		return nil, ErrInternalServer
	}
	for i := range classrooms {
		stripCredentials(&classrooms[i])
	}
	return classrooms, nil
}

// Create makes a new classroom owned by the caller. The caller is the sole
// initial member and the generated join code is unique and immutable.
func (s *ClassroomService) Create(ctx context.Context, authorID uint, title, subject, subCode, cover string) (*domain.Classroom, error) {
	logCtx := logrus.WithField("author_id", authorID)

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		// The caller passed the auth middleware, so a missing record is a
		// server-side inconsistency rather than bad input.
		logCtx.WithError(err).Error("Failed to load author during classroom creation")
		return nil, ErrInternalServer
	}

	code, err := s.generateUniqueJoinCode(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate unique join code")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("code", code)

	classroom := &domain.Classroom{
		Code:        code,
		Title:       title,
		Subject:     subject,
		SubCode:     subCode,
		Cover:       cover,
		AuthorID:    author.ID,
		JoinedUsers: []domain.User{*author},
	}

	if err := s.classroomRepo.Save(ctx, classroom); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost a race on the code between the taken-check and the
			// insert. Rare enough to surface as a server error.
			logCtx.WithError(err).Error("Join code collided on insert")
			return nil, ErrInternalServer
		}
		logCtx.WithError(err).Error("Failed to save new classroom")
		return nil, ErrInternalServer
	}

	if err := s.cache.Set(ctx, classroom); err != nil {
		logCtx.WithError(err).Warn("Failed to prime roster cache for new classroom")
	}

	logCtx.WithField("classroom_id", classroom.ID).Info("Classroom created successfully")
	stripCredentials(classroom)
	return classroom, nil
}

// GetByCode returns the classroom only when the caller is a member. A
// non-member gets the same ErrClassroomNotFound as an absent code.
func (s *ClassroomService) GetByCode(ctx context.Context, userID uint, code string) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	classroom, err := s.cache.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logCtx.WithError(err).Warn("Roster cache lookup failed, falling back to store")
		}
		classroom, err = s.classroomRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrClassroomNotFound) {
				return nil, ErrClassroomNotFound
			}
			logCtx.WithError(err).Error("Failed to find classroom by code")
			return nil, ErrInternalServer
		}
		if cacheErr := s.cache.Set(ctx, classroom); cacheErr != nil {
			logCtx.WithError(cacheErr).Warn("Failed to cache classroom after store read")
		}
	}

	if !classroom.IsMember(userID) {
		logCtx.Warn("Membership-gated lookup refused: caller is not a member")
		return nil, ErrClassroomNotFound
	}

	stripCredentials(classroom)
	return classroom, nil
}

// Join adds the caller to the classroom with the given code. The lookup is
// not membership-gated; the caller is not a member yet.
func (s *ClassroomService) Join(ctx context.Context, userID uint, code string) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	classroom, err := s.findFresh(ctx, logCtx, code)
	if err != nil {
		return nil, err
	}

	if classroom.IsMember(userID) {
		logCtx.Warn("Join refused: caller already a member")
		return nil, ErrAlreadyJoined
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load joining user")
		return nil, ErrInternalServer
	}

	if err := s.classroomRepo.AddMember(ctx, classroom, user); err != nil {
		logCtx.WithError(err).Error("Failed to add member to classroom")
		return nil, ErrInternalServer
	}
	classroom.JoinedUsers = append(classroom.JoinedUsers, *user)

	s.refreshRoster(ctx, logCtx, code)

	logCtx.WithField("classroom_id", classroom.ID).Info("User joined classroom")
	stripCredentials(classroom)
	return classroom, nil
}

// Update edits title, subject and subCode. Only the author may edit; a
// member who is not the author gets ErrNotAuthorized.
func (s *ClassroomService) Update(ctx context.Context, userID uint, code, title, subject, subCode string) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	classroom, err := s.findFresh(ctx, logCtx, code)
	if err != nil {
		return nil, err
	}
	if !classroom.IsMember(userID) {
		return nil, ErrClassroomNotFound
	}
	if !classroom.IsAuthor(userID) {
		logCtx.Warn("Edit refused: caller is a member but not the author")
		return nil, ErrNotAuthorized
	}

	classroom.Title = title
	classroom.Subject = subject
	classroom.SubCode = subCode
	if err := s.classroomRepo.Save(ctx, classroom); err != nil {
		logCtx.WithError(err).Error("Failed to save classroom metadata")
		return nil, ErrInternalServer
	}

	s.refreshRoster(ctx, logCtx, code)

	logCtx.Info("Classroom metadata updated")
	stripCredentials(classroom)
	return classroom, nil
}

// DeleteOrLeave removes the classroom when the caller is its author, and
// only the caller's membership otherwise. The returned flag reports which
// of the two happened.
func (s *ClassroomService) DeleteOrLeave(ctx context.Context, userID uint, code string) (bool, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	classroom, err := s.findFresh(ctx, logCtx, code)
	if err != nil {
		return false, err
	}
	if !classroom.IsMember(userID) {
		return false, ErrClassroomNotFound
	}

	if classroom.IsAuthor(userID) {
		if err := s.classroomRepo.Delete(ctx, classroom); err != nil {
			logCtx.WithError(err).Error("Failed to delete classroom")
			return false, ErrInternalServer
		}
		if err := s.cache.Invalidate(ctx, code); err != nil {
			logCtx.WithError(err).Warn("Failed to drop roster cache after delete")
		}
		logCtx.Info("Classroom deleted by author")
		return true, nil
	}

	if err := s.classroomRepo.RemoveMember(ctx, classroom, userID); err != nil {
		logCtx.WithError(err).Error("Failed to remove leaving member")
		return false, ErrInternalServer
	}
	s.refreshRoster(ctx, logCtx, code)
	logCtx.Info("Member left classroom")
	return false, nil
}

// RemoveMember evicts target from the classroom. Author-only.
func (s *ClassroomService) RemoveMember(ctx context.Context, callerID uint, code string, targetID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": callerID, "code": code, "target_id": targetID})

	classroom, err := s.findFresh(ctx, logCtx, code)
	if err != nil {
		return err
	}
	if !classroom.IsMember(callerID) {
		return ErrClassroomNotFound
	}
	if !classroom.IsAuthor(callerID) {
		logCtx.Warn("Member removal refused: caller is not the author")
		return ErrNotAuthorized
	}

	if err := s.classroomRepo.RemoveMember(ctx, classroom, targetID); err != nil {
		logCtx.WithError(err).Error("Failed to remove member")
		return ErrInternalServer
	}
	s.refreshRoster(ctx, logCtx, code)
	logCtx.Info("Member removed from classroom")
	return nil
}

// Members returns the identity records of everyone in the classroom,
// credential fields stripped. Membership-gated like GetByCode.
func (s *ClassroomService) Members(ctx context.Context, userID uint, code string) ([]domain.User, error) {
	classroom, err := s.GetByCode(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	return classroom.JoinedUsers, nil
}

// findFresh reads the classroom straight from the store, skipping the
// cache. Mutating paths use it so membership and authorship checks never
// act on stale rosters.
func (s *ClassroomService) findFresh(ctx context.Context, logCtx *logrus.Entry, code string) (*domain.Classroom, error) {
	classroom, err := s.classroomRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrClassroomNotFound) {
			return nil, ErrClassroomNotFound
		}
		logCtx.WithError(err).Error("Failed to find classroom by code")
		return nil, ErrInternalServer
	}
	return classroom, nil
}

// refreshRoster drops the cache entry and queues a background rebuild.
// Failures are logged, never surfaced; the cache is advisory.
func (s *ClassroomService) refreshRoster(ctx context.Context, logCtx *logrus.Entry, code string) {
	if err := s.cache.Invalidate(ctx, code); err != nil {
		logCtx.WithError(err).Warn("Failed to invalidate roster cache")
	}
	task, err := tasks.NewRosterRefreshTask(code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to build roster refresh task")
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		logCtx.WithError(err).Warn("Failed to enqueue roster refresh task")
	}
}

const joinCodeLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const joinCodeLength = 6

// generateUniqueJoinCode draws 6 characters from [a-zA-Z0-9] and retries
// against the store until the code is unused. The unique index on the code
// column backstops the race between check and insert.
func (s *ClassroomService) generateUniqueJoinCode(ctx context.Context) (string, error) {
	const maxAttempts = 10

	b := make([]byte, joinCodeLength)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = joinCodeLetters[int(b[i])%len(joinCodeLetters)]
		}
		code := string(b)

		taken, err := s.classroomRepo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("database error checking join code: %w", err)
		}
		if !taken {
			return code, nil
		}
		logrus.WithField("code", code).Warnf("Generated join code already exists, retrying (attempt %d)", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique join code after %d attempts", maxAttempts)
}

// stripCredentials blanks password hashes on the membership list before a
// classroom leaves the service layer.
func stripCredentials(classroom *domain.Classroom) {
	for i := range classroom.JoinedUsers {
		classroom.JoinedUsers[i].Password = ""
	}
}
