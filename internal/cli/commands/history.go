package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/guard"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var envAlias, typeCode, userID, action, csvPath string
	var year, page, pageSize int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the numbering audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := api.HistoryFilter{
				DocumentTypeCode: strings.ToUpper(typeCode),
				Year:             year,
				UserID:           userID,
				Action:           action,
				Page:             page,
				PageSize:         pageSize,
			}
			return runGuarded(envAlias, guard.Protected, "history", func(ctx *appContext) error {
				return runHistory(ctx, filter, csvPath)
			})
		},
	}

	cmd.Flags().StringVar(&envAlias, "env", "", "Environment alias (uses selected environment if not specified)")
	cmd.Flags().StringVar(&typeCode, "type", "", "Filter by document type code")
	cmd.Flags().IntVar(&year, "year", 0, "Filter by year")
	cmd.Flags().StringVar(&userID, "user", "", "Filter by user ID")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action: generated or corrected")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Entries per page")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the page to a CSV file instead of printing it")

	return cmd
}

func runHistory(ctx *appContext, filter api.HistoryFilter, csvPath string) error {
	resp, err := ctx.client.History(filter)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if csvPath != "" {
		if err := writeHistoryCSV(csvPath, resp.Items); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d entries to %s\n", len(resp.Items), csvPath)
		return nil
	}

	if resp.Total == 0 {
		fmt.Println("No history entries match.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tNUMBER\tACTION\tUSER\tNOTES")
	fmt.Fprintln(w, "────\t──────\t──────\t────\t─────")
	for _, entry := range resp.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s %04d/%d", entry.DocumentTypeCode, entry.Number, entry.Year),
			describeAction(entry),
			entry.UserName,
			notesOrDash(entry.Notes))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nPage %d of %d (%d entries total)\n", resp.Page, resp.TotalPages, resp.Total)
	return nil
}

func describeAction(entry api.NumberLog) string {
	if entry.Action == "corrected" && entry.PreviousNumber != nil {
		return fmt.Sprintf("corrected (was %d)", *entry.PreviousNumber)
	}
	return entry.Action
}

func notesOrDash(notes *string) string {
	if notes == nil || *notes == "" {
		return "-"
	}
	return *notes
}

func writeHistoryCSV(path string, entries []api.NumberLog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"created_at", "document_type_code", "year", "number", "action", "user_name", "previous_number", "notes"}); err != nil {
		return err
	}
	for _, entry := range entries {
		previous := ""
		if entry.PreviousNumber != nil {
			previous = strconv.Itoa(*entry.PreviousNumber)
		}
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		record := []string{
			entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			entry.DocumentTypeCode,
			strconv.Itoa(entry.Year),
			strconv.Itoa(entry.Number),
			entry.Action,
			entry.UserName,
			previous,
			notes,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
