package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(envAlias)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runLogout(envAlias string) error {
	ctx, err := newAppContext(envAlias)
	if err != nil {
		return err
	}
	defer ctx.teardown()

	// Logout is best effort: the local session is discarded whether or not
	// the server acknowledged it.
	remoteErr := ctx.store.Logout()
	if err := Creds.DeleteSession(ctx.env.URL); err != nil {
		fmt.Printf("Warning: failed to remove stored session: %v\n", err)
	}

	if remoteErr != nil {
		fmt.Printf("Warning: server logout failed (%v); local session removed anyway\n", remoteErr)
	}

	fmt.Println("✓ Logged out")
	return nil
}
