package sqldb

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "user-resource-service/pkg/errors"
	"user-resource-service/pkg/security"

	"user-resource-service/internal/domain/user"
)

// UserRepo implements the user repository over a relational store via GORM.
// The same implementation serves both the SQLite and PostgreSQL drivers.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new UserRepo instance.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserModel represents the database schema for the users table.
// The unique index on email is the authoritative uniqueness guarantee;
// application-level pre-checks only improve error messages.
type UserModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null;uniqueIndex"`
}

// TableName specifies the table name for the UserModel.
func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) toEntity() *user.User {
	return &user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// GORM translates some driver errors; the string checks cover sqlite and
// postgres messages that escape translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// Create inserts a new user and returns it with the assigned ID.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, apperrors.NewStorageError("user cannot be nil", nil)
	}

	model := UserModel{
		Name:  u.Name,
		Email: u.Email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("email uniqueness violated on insert", zap.String("email", u.Email))
			return nil, apperrors.ErrEmailExists
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, apperrors.NewStorageError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toEntity(), nil
}

// GetByID retrieves a user by its surrogate key.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewStorageError("failed to get user", err)
	}

	return model.toEntity(), nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, apperrors.NewStorageError("failed to get user by email", err)
	}

	return model.toEntity(), nil
}

// Update persists the given user state. The caller supplies a fully merged
// entity; rows affected zero means the ID no longer exists.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, apperrors.NewStorageError("user cannot be nil", nil)
	}

	res := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"name":  u.Name,
		"email": u.Email,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			r.log.Warn("email uniqueness violated on update", zap.Int64("id", u.ID), zap.String("email", u.Email))
			return nil, apperrors.ErrEmailExists
		}
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return nil, apperrors.NewStorageError("failed to update user", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found on update", zap.Int64("id", u.ID))
		return nil, apperrors.ErrUserNotFound
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return u, nil
}

// Delete removes a user by ID and returns the removed row.
func (r *UserRepo) Delete(ctx context.Context, id int64) (*user.User, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Delete(&UserModel{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return nil, apperrors.NewStorageError("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		// Row disappeared between the fetch and the delete
		return nil, apperrors.ErrUserNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return existing, nil
}

// List retrieves users in ascending ID order with skip/limit pagination and
// an optional case-insensitive substring filter on name. It also returns the
// total number of rows matching the filter.
func (r *UserRepo) List(ctx context.Context, query string, skip, limit int64) ([]user.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&UserModel{})
	if query != "" {
		pattern := "%" + strings.ToLower(security.SanitizeSearchString(query)) + "%"
		// ESCAPE makes the backslash escaping portable across sqlite and postgres
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.String("query", query))
		return nil, 0, apperrors.NewStorageError("failed to count users", err)
	}

	var models []UserModel
	if err := tx.Order("id ASC").Offset(int(skip)).Limit(int(limit)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err),
			zap.String("query", query), zap.Int64("skip", skip), zap.Int64("limit", limit))
		return nil, 0, apperrors.NewStorageError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toEntity()
	}

	return users, total, nil
}
