package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"smartmail-backend/internal/client/api"
	"smartmail-backend/internal/history"
)

func newHistoryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or delete saved emails",
	}
	cmd.AddCommand(newHistoryListCmd(g), newHistoryDeleteCmd(g), newHistoryClearCmd(g))
	return cmd
}

func newHistoryListCmd(g *globals) *cobra.Command {
	var (
		limit int
		full  bool
	)
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List saved emails, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			records, err := g.client().ListHistory(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved emails.")
				return nil
			}
			if full {
				for _, rec := range records {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s/%s\n%s\n\n", rec.ID, formatTime(rec), rec.Tone.Label(), rec.Mode, rec.GeneratedText)
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "maximum records to show")
	cmd.Flags().BoolVar(&full, "full", false, "print full generated text")
	return cmd
}

func newHistoryDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one saved email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := g.client().DeleteHistory(cmd.Context(), args[0])
			if errors.Is(err, api.ErrNotFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Record %s was already gone.\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Record deleted.")
			return nil
		},
	}
}

func newHistoryClearCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			n, err := g.client().ClearHistory(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d saved emails.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all history")
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func historyTable(records []history.Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "TONE", "MODE", "EMAIL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, rec := range records {
		t.Row(rec.ID, formatTime(rec), rec.Tone.Label(), string(rec.Mode), snippet(rec.GeneratedText, 48))
	}
	return t.String()
}

func formatTime(rec history.Record) string {
	if rec.CreatedAt.IsZero() {
		return "-"
	}
	return rec.CreatedAt.Local().Format("2006-01-02 15:04")
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-3]) + "..."
}
