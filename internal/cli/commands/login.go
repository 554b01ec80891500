package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/controle-pgm/controle/internal/guard"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var envAlias, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Controle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(envAlias, email, password)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CONTROLE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CONTROLE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(envAlias, email, password string) error {
	ctx, err := newAppContext(envAlias)
	if err != nil {
		return err
	}
	defer ctx.teardown()

	ctx.store.Initialize()

	// A live session skips the login form, same as the login page
	// redirecting an authenticated visitor home.
	decision := guard.EvaluateLogin(ctx.store, "")
	if decision.Action == guard.RedirectHome {
		identity, _ := ctx.store.Identity()
		fmt.Printf("Already logged in as %s (%s). Run 'controle logout' to switch accounts.\n", identity.Name, identity.Email)
		if decision.ForcePasswordChange {
			return runForcedPasswordChange(ctx)
		}
		return nil
	}

	// Environment variables are useful for CI/CD.
	if email == "" {
		email = os.Getenv("CONTROLE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("CONTROLE_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or CONTROLE_EMAIL env var)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or CONTROLE_PASSWORD env var)")
		}
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	fmt.Printf("Logging in to %s (%s)...\n", ctx.env.Alias, ctx.env.URL)

	if err := ctx.store.Login(email, password); err != nil {
		return fmt.Errorf("login failed: %s", loginFailureMessage(err))
	}

	ctx.persistSession()

	identity, _ := ctx.store.Identity()
	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", identity.Name, identity.Email)
	if ctx.store.IsAdmin() {
		fmt.Println("  Role: Admin")
	}

	if ctx.store.MustChangePassword() {
		return runForcedPasswordChange(ctx)
	}

	return nil
}
