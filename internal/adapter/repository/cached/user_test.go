package cached

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-resource-service/internal/adapter/cache"
	domain "user-resource-service/internal/domain/user"
	apperrors "user-resource-service/pkg/errors"
)

// MockDBRepository is a mock implementation of the persistent repository
type MockDBRepository struct {
	mock.Mock
}

func (m *MockDBRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDBRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDBRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDBRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDBRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDBRepository) List(ctx context.Context, query string, skip, limit int64) ([]domain.User, int64, error) {
	args := m.Called(ctx, query, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func setupCachedRepo(t *testing.T) (*CachedUserRepository, *MockDBRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	userCache := cache.NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	dbRepo := new(MockDBRepository)
	repo := NewCachedUserRepository(dbRepo, userCache, zaptest.NewLogger(t)).(*CachedUserRepository)
	return repo, dbRepo, mr
}

func TestCachedUserRepository_GetByID_PopulatesCache(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	alice := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	dbRepo.On("GetByID", ctx, int64(1)).Return(alice, nil).Once()

	// First read goes to the DB
	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	// Second read is served from cache
	got, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	dbRepo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestCachedUserRepository_GetByID_DBErrorPropagates(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	dbRepo.On("GetByID", ctx, int64(42)).Return(nil, apperrors.ErrUserNotFound)

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCachedUserRepository_Update_InvalidatesCache(t *testing.T) {
	repo, dbRepo, mr := setupCachedRepo(t)
	ctx := context.Background()

	alice := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	renamed := &domain.User{ID: 1, Name: "Alicia", Email: "a@x.com"}

	dbRepo.On("GetByID", ctx, int64(1)).Return(alice, nil).Once()
	dbRepo.On("Update", ctx, renamed).Return(renamed, nil)
	dbRepo.On("GetByID", ctx, int64(1)).Return(renamed, nil).Once()

	_, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"))

	_, err = repo.Update(ctx, renamed)
	require.NoError(t, err)
	assert.False(t, mr.Exists("user:1"))

	// Next read comes from the DB and sees the new state
	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	dbRepo.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestCachedUserRepository_Delete_InvalidatesCache(t *testing.T) {
	repo, dbRepo, mr := setupCachedRepo(t)
	ctx := context.Background()

	alice := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	dbRepo.On("GetByID", ctx, int64(1)).Return(alice, nil).Once()
	dbRepo.On("Delete", ctx, int64(1)).Return(alice, nil)

	_, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"))

	deleted, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", deleted.Name)
	assert.False(t, mr.Exists("user:1"))
}

func TestCachedUserRepository_Delete_DBErrorSkipsInvalidation(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	dbRepo.On("Delete", ctx, int64(42)).Return(nil, apperrors.ErrUserNotFound)

	_, err := repo.Delete(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCachedUserRepository_WriteAndListPassThrough(t *testing.T) {
	repo, dbRepo, _ := setupCachedRepo(t)
	ctx := context.Background()

	alice := &domain.User{Name: "Alice", Email: "a@x.com"}
	created := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	dbRepo.On("Create", ctx, alice).Return(created, nil)
	dbRepo.On("GetByEmail", ctx, "a@x.com").Return(created, nil)
	dbRepo.On("List", ctx, "ali", int64(0), int64(10)).
		Return([]domain.User{*created}, int64(1), nil)

	got, err := repo.Create(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	got, err = repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	users, total, err := repo.List(ctx, "ali", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}

func TestCachedUserRepository_NilCacheFallsThrough(t *testing.T) {
	dbRepo := new(MockDBRepository)
	repo := NewCachedUserRepository(dbRepo, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	alice := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	dbRepo.On("GetByID", ctx, int64(1)).Return(alice, nil)

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	got, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	// Without a cache every read reaches the DB
	dbRepo.AssertNumberOfCalls(t, "GetByID", 2)
}
