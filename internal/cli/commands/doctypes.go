package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/guard"
)

// NewDoctypesCmd creates the doctypes command group (admin only)
func NewDoctypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctypes",
		Short: "Manage document types (admin)",
	}

	cmd.AddCommand(newDoctypesListCmd())
	cmd.AddCommand(newDoctypesCreateCmd())
	cmd.AddCommand(newDoctypesUpdateCmd())

	return cmd
}

func newDoctypesListCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all document types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.ProtectedAdmin, "doctypes ls", runDoctypesList)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runDoctypesList(ctx *appContext) error {
	resp, err := ctx.client.ListDocumentTypes()
	if err != nil {
		return fmt.Errorf("failed to list document types: %w", err)
	}

	if resp.Total == 0 {
		fmt.Println("No document types registered.")
		fmt.Println("\nRegister one with: controle doctypes create <CODE> <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tACTIVE")
	fmt.Fprintln(w, "──\t────\t────\t──────")
	for _, dt := range resp.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", dt.ID, dt.Code, dt.Name, dt.IsActive)
	}
	return w.Flush()
}

func newDoctypesCreateCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "create <code> <name>",
		Short: "Register a document type",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			name := strings.Join(args[1:], " ")
			return runGuarded(envAlias, guard.ProtectedAdmin, "doctypes create", func(ctx *appContext) error {
				return runDoctypesCreate(ctx, code, name)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runDoctypesCreate(ctx *appContext, code, name string) error {
	dt, err := ctx.client.CreateDocumentType(api.CreateDocumentTypeRequest{Code: code, Name: name})
	if err != nil {
		return fmt.Errorf("failed to create document type: %w", err)
	}

	fmt.Printf("✓ Document type created: %s (%s)\n", dt.Name, dt.Code)
	return nil
}

func newDoctypesUpdateCmd() *cobra.Command {
	var envAlias, name string
	var activate, deactivate bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if activate && deactivate {
				return fmt.Errorf("--activate and --deactivate are mutually exclusive")
			}

			req := api.UpdateDocumentTypeRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if activate || deactivate {
				active := activate
				req.IsActive = &active
			}
			if req.Name == nil && req.IsActive == nil {
				return fmt.Errorf("nothing to update, pass --name, --activate or --deactivate")
			}

			return runGuarded(envAlias, guard.ProtectedAdmin, "doctypes update", func(ctx *appContext) error {
				return runDoctypesUpdate(ctx, args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().BoolVar(&activate, "activate", false, "Reactivate the document type")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the document type")

	return cmd
}

func runDoctypesUpdate(ctx *appContext, id string, req api.UpdateDocumentTypeRequest) error {
	dt, err := ctx.client.UpdateDocumentType(id, req)
	if err != nil {
		return fmt.Errorf("failed to update document type: %w", err)
	}

	fmt.Printf("✓ Document type updated: %s (%s), active=%t\n", dt.Name, dt.Code, dt.IsActive)
	return nil
}
