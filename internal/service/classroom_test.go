package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/repository"
	"github.com/divyansh1004/Manthan/internal/repository/mocks"
	"github.com/divyansh1004/Manthan/internal/service"
	"github.com/divyansh1004/Manthan/internal/tasks"
)

// stubEnqueuer records enqueued tasks instead of talking to Redis.
type stubEnqueuer struct {
	enqueued []*asynq.Task
}

func (s *stubEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.enqueued = append(s.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

type classroomFixture struct {
	classroomRepo *mocks.ClassroomRepository
	userRepo      *mocks.UserRepository
	cache         *mocks.RosterCache
	enqueuer      *stubEnqueuer
	svc           *service.ClassroomService
}

func newClassroomFixture(t *testing.T) *classroomFixture {
	t.Helper()
	f := &classroomFixture{
		classroomRepo: new(mocks.ClassroomRepository),
		userRepo:      new(mocks.UserRepository),
		cache:         new(mocks.RosterCache),
		enqueuer:      &stubEnqueuer{},
	}
	f.svc = service.NewClassroomService(f.classroomRepo, f.userRepo, f.cache, f.enqueuer)
	return f
}

var joinCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)

func TestClassroomService_Create_Success(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	author := &domain.User{ID: 7, Username: "carol", Password: "hash"}

	f.userRepo.On("FindByID", ctx, uint(7)).Return(author, nil).Once()
	f.classroomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	f.classroomRepo.On("Save", ctx, mock.MatchedBy(func(c *domain.Classroom) bool {
		return c.AuthorID == 7 && len(c.JoinedUsers) == 1 && c.JoinedUsers[0].ID == 7
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Classroom).ID = 42
	}).Return(nil).Once()
	f.cache.On("Set", ctx, mock.AnythingOfType("*domain.Classroom")).Return(nil).Once()

	classroom, err := f.svc.Create(ctx, 7, "Algebra", "Math", "M101", "")

	require.NoError(t, err)
	require.NotNil(t, classroom)
	assert.Regexp(t, joinCodePattern, classroom.Code)
	assert.Equal(t, uint(7), classroom.AuthorID)
	require.Len(t, classroom.JoinedUsers, 1)
	assert.Equal(t, uint(7), classroom.JoinedUsers[0].ID)
	assert.Empty(t, classroom.JoinedUsers[0].Password, "credentials must be stripped")

	f.classroomRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestClassroomService_Create_RetriesOnCodeCollision(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	author := &domain.User{ID: 1, Username: "carol"}

	f.userRepo.On("FindByID", ctx, uint(1)).Return(author, nil).Once()
	// First draw collides, second is free.
	f.classroomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	f.classroomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	f.classroomRepo.On("Save", ctx, mock.AnythingOfType("*domain.Classroom")).Return(nil).Once()
	f.cache.On("Set", ctx, mock.AnythingOfType("*domain.Classroom")).Return(nil).Once()

	_, err := f.svc.Create(ctx, 1, "Algebra", "Math", "M101", "")

	require.NoError(t, err)
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_ListForUser_EmptyIsNotAnError(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()

	f.classroomRepo.On("FindByMember", ctx, uint(3)).Return([]domain.Classroom{}, nil).Once()

	classrooms, err := f.svc.ListForUser(ctx, 3)

	require.NoError(t, err)
	assert.Empty(t, classrooms)
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_GetByCode_CacheMissFallsBackToStore(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	stored := &domain.Classroom{
		ID: 1, Code: "abc123", Title: "Algebra", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7, Username: "carol"}},
	}

	f.cache.On("GetByCode", ctx, "abc123").Return(nil, repository.ErrNotFound).Once()
	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(stored, nil).Once()
	f.cache.On("Set", ctx, stored).Return(nil).Once()

	classroom, err := f.svc.GetByCode(ctx, 7, "abc123")

	require.NoError(t, err)
	assert.Equal(t, "Algebra", classroom.Title)
	f.cache.AssertExpectations(t)
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_GetByCode_NonMemberLooksAbsent(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	cached := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}},
	}

	f.cache.On("GetByCode", ctx, "abc123").Return(cached, nil).Once()

	_, err := f.svc.GetByCode(ctx, 99, "abc123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrClassroomNotFound),
		"non-members must get the same answer as an absent code")
}

func TestClassroomService_GetByCode_UnknownCode(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()

	f.cache.On("GetByCode", ctx, "zzzzzz").Return(nil, repository.ErrNotFound).Once()
	f.classroomRepo.On("FindByCode", ctx, "zzzzzz").Return(nil, repository.ErrClassroomNotFound).Once()

	_, err := f.svc.GetByCode(ctx, 1, "zzzzzz")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrClassroomNotFound))
}

func TestClassroomService_Join_Success(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}},
	}
	joiner := &domain.User{ID: 9, Username: "dave"}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()
	f.userRepo.On("FindByID", ctx, uint(9)).Return(joiner, nil).Once()
	f.classroomRepo.On("AddMember", ctx, classroom, joiner).Return(nil).Once()
	f.cache.On("Invalidate", ctx, "abc123").Return(nil).Once()

	updated, err := f.svc.Join(ctx, 9, "abc123")

	require.NoError(t, err)
	assert.Len(t, updated.JoinedUsers, 2)
	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Equal(t, tasks.TypeRosterRefresh, f.enqueuer.enqueued[0].Type())
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_Join_AlreadyMember(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()

	_, err := f.svc.Join(ctx, 9, "abc123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyJoined))
	f.classroomRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, classroom.JoinedUsers, 2, "membership must be unchanged")
}

func TestClassroomService_Update_NonAuthorIsRefused(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", Title: "Algebra", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()

	_, err := f.svc.Update(ctx, 9, "abc123", "Hijacked", "Math", "M101")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	assert.Equal(t, "Algebra", classroom.Title, "record must be unchanged")
	f.classroomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClassroomService_Update_Success(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", Title: "Algebra", Subject: "Math", SubCode: "M101",
		AuthorID: 7, JoinedUsers: []domain.User{{ID: 7}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()
	f.classroomRepo.On("Save", ctx, classroom).Return(nil).Once()
	f.cache.On("Invalidate", ctx, "abc123").Return(nil).Once()

	updated, err := f.svc.Update(ctx, 7, "abc123", "Algebra II", "Math", "M102")

	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Title)
	assert.Equal(t, "M102", updated.SubCode)
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_DeleteOrLeave_AuthorDeletes(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()
	f.classroomRepo.On("Delete", ctx, classroom).Return(nil).Once()
	f.cache.On("Invalidate", ctx, "abc123").Return(nil).Once()

	deleted, err := f.svc.DeleteOrLeave(ctx, 7, "abc123")

	require.NoError(t, err)
	assert.True(t, deleted)
	f.classroomRepo.AssertExpectations(t)
	f.classroomRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassroomService_DeleteOrLeave_MemberLeaves(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()
	f.classroomRepo.On("RemoveMember", ctx, classroom, uint(9)).Return(nil).Once()
	f.cache.On("Invalidate", ctx, "abc123").Return(nil).Once()

	deleted, err := f.svc.DeleteOrLeave(ctx, 9, "abc123")

	require.NoError(t, err)
	assert.False(t, deleted, "a non-author leaving must not delete the classroom")
	f.classroomRepo.AssertExpectations(t)
	f.classroomRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestClassroomService_DeleteOrLeave_NonMember(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()

	_, err := f.svc.DeleteOrLeave(ctx, 99, "abc123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrClassroomNotFound))
}

func TestClassroomService_RemoveMember_AuthorOnly(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}, {ID: 11}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()

	err := f.svc.RemoveMember(ctx, 9, "abc123", 11)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	f.classroomRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassroomService_RemoveMember_Success(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	classroom := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{{ID: 7}, {ID: 9}},
	}

	f.classroomRepo.On("FindByCode", ctx, "abc123").Return(classroom, nil).Once()
	f.classroomRepo.On("RemoveMember", ctx, classroom, uint(9)).Return(nil).Once()
	f.cache.On("Invalidate", ctx, "abc123").Return(nil).Once()

	err := f.svc.RemoveMember(ctx, 7, "abc123", 9)

	require.NoError(t, err)
	f.classroomRepo.AssertExpectations(t)
}

func TestClassroomService_Members_StripsCredentials(t *testing.T) {
	f := newClassroomFixture(t)
	ctx := context.Background()
	cached := &domain.Classroom{
		ID: 1, Code: "abc123", AuthorID: 7,
		JoinedUsers: []domain.User{
			{ID: 7, Username: "carol", Password: "hash1"},
			{ID: 9, Username: "dave", Password: "hash2"},
		},
	}

	f.cache.On("GetByCode", ctx, "abc123").Return(cached, nil).Once()

	members, err := f.svc.Members(ctx, 7, "abc123")

	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Empty(t, m.Password)
	}
}
