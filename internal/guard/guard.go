// Package guard decides, for every navigation, whether protected content may
// render. The decision procedure is pure: it reads session state and a route
// requirement and returns a value; interpreting that value (redirecting,
// prompting for login, blocking behind the password-change barrier) is the
// consumer's job.
package guard

// Requirement is the access level a route demands.
type Requirement int

const (
	// Public routes render for everyone, including anonymous visitors.
	Public Requirement = iota
	// Protected routes require an authenticated session.
	Protected
	// ProtectedAdmin routes additionally require the admin role.
	ProtectedAdmin
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case ProtectedAdmin:
		return "protected+admin"
	default:
		return "unknown"
	}
}

// Action is the rendering outcome of a guard evaluation.
type Action int

const (
	// Wait means the session state is still loading; render a neutral
	// indicator and make no redirect decision yet.
	Wait Action = iota
	// Render means the route's content may show.
	Render
	// RedirectLogin means the visitor must authenticate first; Decision.From
	// preserves the originally requested location.
	RedirectLogin
	// RedirectHome means the visitor is authenticated but lacks the admin
	// capability; send them to the default landing location.
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Session is the read surface the guard needs from the session store.
type Session interface {
	IsLoading() bool
	IsAuthenticated() bool
	IsAdmin() bool
	MustChangePassword() bool
}

// Decision is the outcome of one evaluation. ForcePasswordChange is computed
// independently of Action: whenever the identity is blocked behind a forced
// password change, the barrier overlays whatever would otherwise render, and
// nothing underneath is interactable until the change succeeds.
type Decision struct {
	Action              Action
	From                string
	ForcePasswordChange bool
}

// Evaluate runs the decision procedure for a route with the given
// requirement. from is the originally requested location, preserved on a
// login redirect so it can be returned to after authentication.
func Evaluate(s Session, req Requirement, from string) Decision {
	d := Decision{ForcePasswordChange: s.IsAuthenticated() && s.MustChangePassword()}

	switch {
	case s.IsLoading():
		d.Action = Wait
	case req != Public && !s.IsAuthenticated():
		d.Action = RedirectLogin
		d.From = from
	case req == ProtectedAdmin && !s.IsAdmin():
		d.Action = RedirectHome
	default:
		d.Action = Render
	}

	return d
}

// EvaluateLogin runs the decision procedure for the login entry point.
// Reached while already authenticated, it redirects to cameFrom (or the
// default landing location when cameFrom is empty) instead of rendering the
// login form.
func EvaluateLogin(s Session, cameFrom string) Decision {
	if s.IsLoading() {
		return Decision{Action: Wait}
	}
	if s.IsAuthenticated() {
		return Decision{
			Action:              RedirectHome,
			From:                cameFrom,
			ForcePasswordChange: s.MustChangePassword(),
		}
	}
	return Decision{Action: Render}
}
