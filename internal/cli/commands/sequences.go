package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/guard"
)

// NewSequencesCmd creates the sequences command
func NewSequencesCmd() *cobra.Command {
	var envAlias string

	cmd := &cobra.Command{
		Use:   "sequences",
		Short: "List every counter and its current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(envAlias, guard.Protected, "sequences", runSequences)
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")

	return cmd
}

func runSequences(ctx *appContext) error {
	resp, err := ctx.client.ListSequences()
	if err != nil {
		return fmt.Errorf("failed to list sequences: %w", err)
	}

	if resp.Total == 0 {
		fmt.Println("No numbers issued yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tYEAR\tCURRENT\tUPDATED AT")
	fmt.Fprintln(w, "────\t────\t───────\t──────────")
	for _, seq := range resp.Items {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
			seq.DocumentTypeCode, seq.Year, seq.CurrentNumber,
			seq.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
