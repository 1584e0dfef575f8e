package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-resource-service/internal/domain/user"
	apperrors "user-resource-service/pkg/errors"
	"user-resource-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// DefaultListLimit is the page size applied when the caller supplies none.
const DefaultListLimit = 100

// MaxListLimit caps the page size regardless of what the caller asks for.
const MaxListLimit = 100

// Repository defines the interface for user data access operations.
// It abstracts the data layer so different stores (SQLite, PostgreSQL,
// a caching decorator) can be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, query string, skip, limit int64) ([]domain.User, int64, error)
}

// Service implements the business logic for user management operations.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a typed
// validation error with a human-readable message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "gt":
				messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// CreateUser creates a new user after validating the request and checking
// email uniqueness. The pre-check gives a friendly error; the storage-level
// unique index is what actually guarantees the invariant under concurrency.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	s.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("create user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		s.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.ErrEmailExists
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	return toDTO(created), nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if in.ID <= 0 {
		s.log.Warn("get user validation failed", zap.Int64("id", in.ID))
		return nil, apperrors.ErrInvalidID
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	return toDTO(u), nil
}

// UpdateUser applies a partial update: only supplied fields change, omitted
// fields retain their prior value. Changing the email to one held by a
// different user is a conflict.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	s.log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("update user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != existing.Email {
		holder, err := s.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, err
		}
		if holder != nil && holder.ID != in.ID {
			s.log.Warn("email already exists", zap.String("email", in.Email), zap.Int64("holder_id", holder.ID))
			return nil, apperrors.ErrEmailExists
		}
	}

	merged := &domain.User{
		ID:    existing.ID,
		Name:  existing.Name,
		Email: existing.Email,
	}
	if in.Name != "" {
		merged.Name = in.Name
	}
	if in.Email != "" {
		merged.Email = in.Email
	}

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		s.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return toDTO(updated), nil
}

// DeleteUser removes a user permanently and echoes the deleted record.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*User, error) {
	s.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		s.log.Warn("delete user validation failed", zap.Int64("id", in.ID))
		return nil, apperrors.ErrInvalidID
	}

	deleted, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return toDTO(deleted), nil
}

// ListUsers returns users in ascending ID order with skip/limit pagination
// and an optional name filter. Valid skip/limit never fail; an empty window
// is an empty list.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Skip < 0 {
		in.Skip = 0
	}
	if in.Limit < 0 {
		in.Limit = DefaultListLimit
	}
	if in.Limit > MaxListLimit {
		in.Limit = MaxListLimit
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		s.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("q", err.Error())
	}

	s.log.Info("listing users", zap.String("query", query), zap.Int64("skip", in.Skip), zap.Int64("limit", in.Limit))

	domainUsers, total, err := s.repo.List(ctx, query, in.Skip, in.Limit)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = *toDTO(&du)
	}

	return &ListUsersResponse{
		Users: users,
		Pagination: &Pagination{
			Total: total,
			Skip:  in.Skip,
			Limit: in.Limit,
		},
	}, nil
}
