package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/guard"
)

// NewCorrectCmd creates the correct command
func NewCorrectCmd() *cobra.Command {
	var envAlias, notes string
	var year, newNumber int

	cmd := &cobra.Command{
		Use:   "correct <document-type-code>",
		Short: "Adjust a counter to an explicit value (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			if year == 0 {
				year = time.Now().Year()
			}
			if notes == "" {
				return fmt.Errorf("--notes is required: corrections must be justified")
			}
			return runGuarded(envAlias, guard.ProtectedAdmin, "correct", func(ctx *appContext) error {
				return runCorrect(ctx, api.CorrectionRequest{
					DocumentTypeCode: code,
					Year:             year,
					NewNumber:        newNumber,
					Notes:            notes,
				})
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().IntVar(&year, "year", 0, "Target year (defaults to the current year)")
	cmd.Flags().IntVar(&newNumber, "to", 0, "New counter value")
	cmd.Flags().StringVar(&notes, "notes", "", "Reason for the correction (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runCorrect(ctx *appContext, req api.CorrectionRequest) error {
	resp, err := ctx.client.CorrectNumber(req)
	if err != nil {
		return fmt.Errorf("failed to correct number: %w", err)
	}

	fmt.Printf("✓ %s/%d counter corrected: %d -> %d\n",
		resp.DocumentTypeCode, resp.Year, resp.PreviousNumber, resp.NewNumber)
	return nil
}
