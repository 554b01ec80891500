package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/guard"
)

// NewUsersCmd creates the users command group (admin only)
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newUsersResetPasswordCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.ProtectedAdmin, "users ls", runUsersList)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runUsersList(ctx *appContext) error {
	resp, err := ctx.client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if resp.Total == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE\tMUST CHANGE PW")
	fmt.Fprintln(w, "──\t────\t─────\t────\t──────\t──────────────")
	for _, u := range resp.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%t\n",
			u.ID, u.Name, u.Email, u.Role, u.IsActive, u.MustChangePassword)
	}
	return w.Flush()
}

func newUsersCreateCmd() *cobra.Command {
	var envAlias, email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.ProtectedAdmin, "users create", func(ctx *appContext) error {
				return runUsersCreate(ctx, api.CreateUserRequest{
					Email:    email,
					Name:     name,
					Password: password,
					Role:     role,
				})
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (the user must change it on first login)")
	cmd.Flags().StringVar(&role, "role", "user", "Role: user or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUsersCreate(ctx *appContext, req api.CreateUserRequest) error {
	user, err := ctx.client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("✓ User created: %s (%s), role %s\n", user.Name, user.Email, user.Role)
	fmt.Println("  The user must change the password on first login.")
	return nil
}

func newUsersUpdateCmd() *cobra.Command {
	var envAlias, name, role string
	var activate, deactivate bool

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if activate && deactivate {
				return fmt.Errorf("--activate and --deactivate are mutually exclusive")
			}

			req := api.UpdateUserRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("role") {
				req.Role = &role
			}
			if activate || deactivate {
				active := activate
				req.IsActive = &active
			}
			if req.Name == nil && req.Role == nil && req.IsActive == nil {
				return fmt.Errorf("nothing to update, pass --name, --role, --activate or --deactivate")
			}

			return runGuarded(envAlias, guard.ProtectedAdmin, "users update", func(ctx *appContext) error {
				return runUsersUpdate(ctx, args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&role, "role", "", "New role: user or admin")
	cmd.Flags().BoolVar(&activate, "activate", false, "Reactivate the account")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the account")

	return cmd
}

func runUsersUpdate(ctx *appContext, id string, req api.UpdateUserRequest) error {
	user, err := ctx.client.UpdateUser(id, req)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	fmt.Printf("✓ User updated: %s (%s), role %s, active=%t\n", user.Name, user.Email, user.Role, user.IsActive)
	return nil
}

func newUsersResetPasswordCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "reset-password <user-id>",
		Short: "Issue a temporary password for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.ProtectedAdmin, "users reset-password", func(ctx *appContext) error {
				return runUsersResetPassword(ctx, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runUsersResetPassword(ctx *appContext, id string) error {
	resp, err := ctx.client.ResetUserPassword(id)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	fmt.Println("✓ Password reset.")
	fmt.Printf("  Temporary password: %s\n", resp.TemporaryPassword)
	fmt.Println("  The user must change it on next login.")
	return nil
}
