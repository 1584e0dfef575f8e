package user

// User is the single entity managed by the service.
type User struct {
	ID    int64  // ID is the surrogate key assigned by the datastore on insert
	Name  string // Name is the display name of the user
	Email string // Email is unique across all users
}
