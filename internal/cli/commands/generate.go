package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/guard"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var envAlias string
	var year int

	cmd := &cobra.Command{
		Use:   "generate <document-type-code>",
		Short: "Generate the next number for a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			if year == 0 {
				year = time.Now().Year()
			}
			return runGuarded(envAlias, guard.Protected, "generate", func(ctx *appContext) error {
				return runGenerate(ctx, code, year)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().IntVar(&year, "year", 0, "Target year (defaults to the current year)")

	return cmd
}

func runGenerate(ctx *appContext, code string, year int) error {
	generated, err := ctx.client.GenerateNumber(code, year)
	if err != nil {
		return fmt.Errorf("failed to generate number: %w", err)
	}

	fmt.Printf("✓ %s\n", generated.Formatted)
	fmt.Printf("  Type: %s (%s)\n", generated.DocumentTypeName, generated.DocumentTypeCode)
	return nil
}
