package api

import "time"

// User represents a user record as managed through the admin endpoints.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"is_active"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UsersListResponse is the paginless list envelope for users.
type UsersListResponse struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
}

// CreateUserRequest represents a request to create a new user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest carries the patchable user fields. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ResetPasswordResponse carries the temporary password issued to a user.
type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}

// ListUsers returns all users. Admin only.
func (c *Client) ListUsers() (*UsersListResponse, error) {
	var resp UsersListResponse
	if err := c.Get("/users", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser returns one user by ID. Admin only.
func (c *Client) GetUser(id string) (*User, error) {
	var user User
	if err := c.Get("/users/"+id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user. Admin only.
func (c *Client) CreateUser(req CreateUserRequest) (*User, error) {
	var user User
	if err := c.Post("/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser patches a user. Admin only.
func (c *Client) UpdateUser(id string, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.Patch("/users/"+id, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetUserPassword issues a temporary password for a user and flags the
// account for a forced password change. Admin only.
func (c *Client) ResetUserPassword(id string) (*ResetPasswordResponse, error) {
	var resp ResetPasswordResponse
	if err := c.Post("/users/"+id+"/reset-password", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
