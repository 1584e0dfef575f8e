package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	usecase "user-resource-service/internal/usecase/user"
	apperrors "user-resource-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	users := r.Group("/users")
	{
		users.POST("", handler.CreateUser)
		users.GET("", handler.ListUsers)
		users.GET("/:id", handler.GetUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", handler.DeleteUser)
	}
	return r, mockUsecase
}

func performJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
			return req.Name == "John Doe" && req.Email == "john@example.com"
		})).Return(&usecase.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, nil)

		w := performJSON(r, "POST", "/users", CreateUserRequest{
			Name:  "John Doe",
			Email: "john@example.com",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp UserResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "John Doe", resp.Name)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, _ := setupTest(t)

		req := httptest.NewRequest("POST", "/users", bytes.NewBufferString("invalid json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing Email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := performJSON(r, "POST", "/users", map[string]string{"name": "John Doe"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "CreateUser")
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrEmailExists)

		w := performJSON(r, "POST", "/users", CreateUserRequest{
			Name:  "John Doe",
			Email: "taken@example.com",
		})

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "already_exists", resp.Error)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).
			Return(&usecase.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, nil)

		w := performJSON(r, "GET", "/users/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp UserResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "john@example.com", resp.Email)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 42}).
			Return(nil, apperrors.ErrUserNotFound)

		w := performJSON(r, "GET", "/users/42", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_found", resp.Error)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := performJSON(r, "GET", "/users/abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "GetUser")
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: 1, Name: "New Name"}).
			Return(&usecase.User{ID: 1, Name: "New Name", Email: "john@example.com"}, nil)

		w := performJSON(r, "PUT", "/users/1", UpdateUserRequest{Name: "New Name"})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp UserResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "New Name", resp.Name)
		assert.Equal(t, "john@example.com", resp.Email)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrUserNotFound)

		w := performJSON(r, "PUT", "/users/42", UpdateUserRequest{Name: "Ghost"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrEmailExists)

		w := performJSON(r, "PUT", "/users/1", UpdateUserRequest{Email: "taken@example.com"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 1}).
			Return(&usecase.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, nil)

		w := performJSON(r, "DELETE", "/users/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp UserResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 42}).
			Return(nil, apperrors.ErrUserNotFound)

		w := performJSON(r, "DELETE", "/users/42", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Defaults When Params Absent", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{
			Query: "",
			Skip:  0,
			Limit: usecase.DefaultListLimit,
		}).Return(&usecase.ListUsersResponse{
			Users:      []usecase.User{},
			Pagination: &usecase.Pagination{Total: 0, Skip: 0, Limit: usecase.DefaultListLimit},
		}, nil)

		w := performJSON(r, "GET", "/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Skip Limit And Query Forwarded", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{
			Query: "ali",
			Skip:  2,
			Limit: 5,
		}).Return(&usecase.ListUsersResponse{
			Users: []usecase.User{
				{ID: 3, Name: "Alice", Email: "a@x.com"},
			},
			Pagination: &usecase.Pagination{Total: 3, Skip: 2, Limit: 5},
		}, nil)

		w := performJSON(r, "GET", "/users?skip=2&limit=5&q=ali", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ListUsersResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Users, 1)
		assert.Equal(t, int64(3), resp.Pagination.Total)
	})

	t.Run("Negative Skip Rejected", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := performJSON(r, "GET", "/users?skip=-1", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "ListUsers")
	})

	t.Run("Non Numeric Limit Rejected", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := performJSON(r, "GET", "/users?limit=lots", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "ListUsers")
	})
}
