package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/controle-pgm/controle/internal/guard"
	"github.com/controle-pgm/controle/internal/session"
)

// NewPasswdCmd creates the passwd command
func NewPasswdCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.Protected, "passwd", runPasswd)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runPasswd(ctx *appContext) error {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return fmt.Errorf("passwd requires an interactive terminal")
	}

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

	cleared := false
	ctx.store.UpdateLocal(session.IdentityPatch{MustChangePassword: &cleared})
	ctx.persistSession()

	fmt.Println("✓ Password changed.")
	return nil
}
