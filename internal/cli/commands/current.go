package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/guard"
)

// NewCurrentCmd creates the current command
func NewCurrentCmd() *cobra.Command {
	var envAlias string
	var year int

	cmd := &cobra.Command{
		Use:   "current <document-type-code>",
		Short: "Show the current counter value without consuming a number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			if year == 0 {
				year = time.Now().Year()
			}
			return runGuarded(envAlias, guard.Protected, "current", func(ctx *appContext) error {
				return runCurrent(ctx, code, year)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().IntVar(&year, "year", 0, "Target year (defaults to the current year)")

	return cmd
}

func runCurrent(ctx *appContext, code string, year int) error {
	seq, err := ctx.client.CurrentNumber(code, year)
	if err != nil {
		return fmt.Errorf("failed to fetch current number: %w", err)
	}

	fmt.Printf("%s/%d: %d issued", seq.DocumentTypeCode, seq.Year, seq.CurrentNumber)
	if seq.CurrentNumber > 0 {
		fmt.Printf(" (last: %s %04d/%d)", seq.DocumentTypeCode, seq.CurrentNumber, seq.Year)
	}
	fmt.Println()
	return nil
}
