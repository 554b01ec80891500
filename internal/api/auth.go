package api

// Principal is the authenticated user as returned by login and the session
// probe.
type Principal struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change-password request body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login authenticates with email and password. The server sets the session
// cookie on success; the client only sees the principal. Fails with status
// 401 on bad credentials and 403 on an inactive account.
func (c *Client) Login(email, password string) (*Principal, error) {
	var principal Principal
	if err := c.Post("/auth/login", LoginRequest{Email: email, Password: password}, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// Logout invalidates the server-side session. The response carries no body.
func (c *Client) Logout() error {
	return c.Post("/auth/logout", nil, nil)
}

// Me probes the current session and returns the authenticated principal, or
// a 401 when the session is absent or expired.
func (c *Client) Me() (*Principal, error) {
	var principal Principal
	if err := c.Get("/auth/me", &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// ChangePassword replaces the caller's password. Fails with status 401 when
// currentPassword is wrong and 400 when newPassword violates the policy.
func (c *Client) ChangePassword(currentPassword, newPassword string) error {
	return c.Post("/auth/change-password", ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}
