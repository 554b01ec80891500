package session

import "github.com/controle-pgm/controle/internal/api"

// Role is the authorization level of an identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the authenticated principal. It exists if and only if the
// store considers the session authenticated.
type Identity struct {
	UserID             string
	Email              string
	Name               string
	Role               Role
	MustChangePassword bool
}

// IdentityPatch carries partial identity updates for UpdateLocal. Nil fields
// are left unchanged.
type IdentityPatch struct {
	Email              *string
	Name               *string
	Role               *Role
	MustChangePassword *bool
}

func identityFromPrincipal(p *api.Principal) *Identity {
	return &Identity{
		UserID:             p.UserID,
		Email:              p.Email,
		Name:               p.Name,
		Role:               Role(p.Role),
		MustChangePassword: p.MustChangePassword,
	}
}
