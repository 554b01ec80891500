package commands

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/authbus"
	"github.com/controle-pgm/controle/internal/cli/config"
	"github.com/controle-pgm/controle/internal/cli/credstore"
	"github.com/controle-pgm/controle/internal/cli/envselect"
	"github.com/controle-pgm/controle/internal/guard"
	"github.com/controle-pgm/controle/internal/session"
)

// Creds is the session persistence used by all commands; tests swap it for
// an in-memory store.
var Creds = credstore.Default

// appContext bundles everything a command invocation needs: the resolved
// environment, the API client, the auth bus and the session store wired to
// it. One appContext lives for one CLI invocation.
type appContext struct {
	env    *config.Environment
	bus    *authbus.Bus
	client *api.Client
	store  *session.Store
}

// newAppContext resolves the target environment and assembles the session
// control plane. The persisted session cookie, when present, is loaded into
// the client's cookie jar; when the server rejects it the bus signal removes
// it again so the next invocation starts clean.
func newAppContext(envAlias string) (*appContext, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'controle init' to create a configuration file", err)
	}

	env, err := envselect.ResolveEnvironment(cfg, envAlias)
	if err != nil {
		return nil, err
	}

	bus := authbus.New()
	client := api.New(env.URL, bus)

	if cookie, err := Creds.LoadSession(env.URL); err == nil {
		restoreCookies(client, cookie)
	}

	// The persisted cookie is dead once the server says so; drop it before
	// the session store even reacts.
	bus.Subscribe(func() {
		_ = Creds.DeleteSession(env.URL)
	})

	store := session.New(client, bus)

	return &appContext{env: env, bus: bus, client: client, store: store}, nil
}

// persistSession saves the client's current session cookie for the next
// invocation.
func (ctx *appContext) persistSession() {
	cookie := serializeCookies(ctx.client)
	if cookie == "" {
		return
	}
	if err := Creds.SaveSession(ctx.env.URL, cookie); err != nil {
		fmt.Printf("Warning: failed to persist session: %v\n", err)
	}
}

func (ctx *appContext) teardown() {
	ctx.store.Close()
}

// runGuarded is the navigation loop of the CLI: it initializes the session
// store, evaluates the guard for the requested command and interprets the
// decision. A login redirect becomes an interactive login prompt, after
// which the originally requested command is re-evaluated; the forced
// password-change barrier must be cleared before the command body runs.
func runGuarded(envAlias string, req guard.Requirement, from string, fn func(*appContext) error) error {
	ctx, err := newAppContext(envAlias)
	if err != nil {
		return err
	}
	defer ctx.teardown()

	ctx.store.Initialize()

	for {
		decision := guard.Evaluate(ctx.store, req, from)

		if decision.ForcePasswordChange {
			if err := runForcedPasswordChange(ctx); err != nil {
				return err
			}
			continue
		}

		switch decision.Action {
		case guard.Render:
			return fn(ctx)
		case guard.RedirectLogin:
			fmt.Printf("'%s' requires authentication.\n", decision.From)
			if err := interactiveLogin(ctx); err != nil {
				return err
			}
			// Loop back to the preserved command.
		case guard.RedirectHome:
			identity, _ := ctx.store.Identity()
			return fmt.Errorf("'%s' requires admin privileges (logged in as %s, role %s)", from, identity.Email, identity.Role)
		default:
			return fmt.Errorf("session state did not settle")
		}
	}
}

// interactiveLogin collects credentials and authenticates the session store.
// Email and password can come from CONTROLE_EMAIL / CONTROLE_PASSWORD for
// CI use; otherwise the password is read without echo from the terminal.
func interactiveLogin(ctx *appContext) error {
	email := os.Getenv("CONTROLE_EMAIL")
	password := os.Getenv("CONTROLE_PASSWORD")

	if email == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("not authenticated. Please run 'controle login' or set CONTROLE_EMAIL and CONTROLE_PASSWORD")
		}
		fmt.Print("Email: ")
		if _, err := fmt.Scanln(&email); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	if err := ctx.store.Login(email, password); err != nil {
		return fmt.Errorf("login failed: %s", loginFailureMessage(err))
	}

	ctx.persistSession()

	identity, _ := ctx.store.Identity()
	fmt.Printf("✓ Logged in as %s (%s)\n", identity.Name, identity.Email)
	return nil
}

// runForcedPasswordChange is the non-dismissible barrier: the account cannot
// do anything else until the temporary password is replaced.
func runForcedPasswordChange(ctx *appContext) error {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return fmt.Errorf("a password change is required before continuing. Run 'controle passwd' interactively")
	}

	fmt.Println("Your password must be changed before continuing.")

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := ctx.client.ChangePassword(current, next); err != nil {
		return fmt.Errorf("%s", changePasswordFailureMessage(err))
	}

	// The server reissued the cookie without the flag; mirror it locally
	// without another probe.
	cleared := false
	ctx.store.UpdateLocal(session.IdentityPatch{MustChangePassword: &cleared})
	ctx.persistSession()

	fmt.Println("✓ Password changed.")
	return nil
}

// loginFailureMessage maps a login error to a user-facing message.
func loginFailureMessage(err error) string {
	switch {
	case api.IsConnectionError(err):
		return "connection error, check that the server is reachable"
	case api.IsUnauthorized(err):
		return "invalid email or password"
	case api.StatusOf(err) == http.StatusForbidden:
		return "this account is inactive"
	default:
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) {
			return reqErr.Message("login failed")
		}
		return err.Error()
	}
}

// changePasswordFailureMessage distinguishes the wrong-current-password case
// from connectivity failures and generic server errors.
func changePasswordFailureMessage(err error) string {
	switch {
	case api.IsUnauthorized(err):
		return "current password is incorrect"
	case api.IsConnectionError(err):
		return "connection error, try again"
	default:
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) {
			return reqErr.Message("failed to change password")
		}
		return err.Error()
	}
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// serializeCookies flattens the jar's cookies for the base URL into a single
// "name=value; name=value" string. The values stay opaque to the CLI.
func serializeCookies(client *api.Client) string {
	u, err := url.Parse(client.BaseURL())
	if err != nil {
		return ""
	}
	cookies := client.HTTPClient().Jar.Cookies(u)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// restoreCookies loads a serialized cookie string back into the jar.
func restoreCookies(client *api.Client, serialized string) {
	u, err := url.Parse(client.BaseURL())
	if err != nil {
		return
	}
	var cookies []*http.Cookie
	for _, part := range strings.Split(serialized, "; ") {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	if len(cookies) > 0 {
		client.HTTPClient().Jar.SetCookies(u, cookies)
	}
}
