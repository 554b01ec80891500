package auth

// SessionData represents the authenticated session context for a request.
type SessionData struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *SessionData) IsAdmin() bool {
	return s.Role == "admin"
}
