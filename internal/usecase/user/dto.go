package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"required,email"`
}

// UpdateUserRequest represents the request payload for updating an existing
// user. Empty fields are left unchanged.
type UpdateUserRequest struct {
	ID    int64  `validate:"required,gt=0"`
	Name  string `validate:"omitempty,max=100"`
	Email string `validate:"omitempty,email"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// ListUsersRequest represents the request payload for listing users.
// Query optionally filters case-insensitively on name before pagination.
type ListUsersRequest struct {
	Query string
	Skip  int64
	Limit int64
}

// User represents a user DTO for responses.
type User struct {
	ID    int64
	Name  string
	Email string
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination mirrors the window applied to the list.
type Pagination struct {
	Total int64
	Skip  int64
	Limit int64
}
