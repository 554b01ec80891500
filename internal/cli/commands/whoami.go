package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/guard"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.Protected, "whoami", runWhoami)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runWhoami(ctx *appContext) error {
	identity, ok := ctx.store.Identity()
	if !ok {
		return fmt.Errorf("not authenticated")
	}

	fmt.Printf("Name:  %s\n", identity.Name)
	fmt.Printf("Email: %s\n", identity.Email)
	fmt.Printf("Role:  %s\n", identity.Role)
	fmt.Printf("Env:   %s (%s)\n", ctx.env.Alias, ctx.env.URL)
	return nil
}
