package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cashbook/internal/ledger"
	"cashbook/internal/pagination"
	"cashbook/internal/services"
)

// writeExport saves file at dest, or inside dest when it is a directory, and
// returns the path written. An empty dest uses the suggested filename in the
// working directory; "-" writes to stdout.
func writeExport(cmd *cobra.Command, file *services.ExportFile, dest string) (string, error) {
	if dest == "-" {
		_, err := cmd.OutOrStdout().Write(file.Data)
		return "", err
	}
	path := dest
	if path == "" {
		path = file.Filename
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, file.Filename)
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func reportWritten(c *cli, cmd *cobra.Command, path string, size int) error {
	if path == "" {
		return nil
	}
	return c.printer(cmd).message("Wrote %s (%s)", path, humanize.Bytes(uint64(size)))
}

func newExportCmd(c *cli) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a JSON backup or a book as CSV",
	}
	cmd.PersistentFlags().StringVarP(&dest, "file", "f", "", `destination file or directory, "-" for stdout`)

	cmd.AddCommand(&cobra.Command{
		Use:   "json",
		Short: "Export every book and loan book as a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := c.services().Exchange.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			path, err := writeExport(cmd, file, dest)
			if err != nil {
				return err
			}
			return reportWritten(c, cmd, path, len(file.Data))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "csv BOOK_ID",
		Short: "Export a book's transactions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.services().Exchange.ExportCSV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path, err := writeExport(cmd, file, dest)
			if err != nil {
				return err
			}
			return reportWritten(c, cmd, path, len(file.Data))
		},
	})

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func newImportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a JSON backup or append a CSV file to a book",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "json FILE",
		Short: "Replace all data with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			summary, err := c.services().Exchange.ImportJSON(cmd.Context(), data)
			if err != nil {
				return err
			}
			c.services().Audit.Log("IMPORT_JSON", "backup", "", services.AuditSourceCLI, map[string]any{
				"books":             summary.Books,
				"transactions":      summary.Transactions,
				"loan_books":        summary.LoanBooks,
				"loan_transactions": summary.LoanTransactions,
			})
			p := c.printer(cmd)
			if p.json {
				return p.emit(summary, nil)
			}
			return p.message("Imported %d books, %d transactions, %d loan books and %d loans",
				summary.Books, summary.Transactions, summary.LoanBooks, summary.LoanTransactions)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "csv BOOK_ID FILE",
		Short: "Append the rows of a CSV file to a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			summary, err := c.services().Exchange.ImportCSV(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			c.services().Audit.Log("IMPORT_CSV", "book", args[0], services.AuditSourceCLI, map[string]any{
				"imported": summary.Transactions,
				"skipped":  len(summary.Skipped),
			})
			return c.printer(cmd).emit(summary, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d transactions\n", summary.Transactions)
				if len(summary.Skipped) == 0 {
					return
				}
				fmt.Fprintf(w, "Skipped %d rows:\n", len(summary.Skipped))
				row(w, "LINE", "REASON")
				for _, s := range summary.Skipped {
					row(w, strconv.Itoa(s.Line), s.Reason)
				}
			})
		},
	})

	return cmd
}

func newReportCmd(c *cli) *cobra.Command {
	var dest string
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "report BOOK_ID",
		Short: "Write a PDF statement of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.filter(ledger.ValidCashEntryType)
			if err != nil {
				return err
			}
			file, err := c.services().Reports.GenerateReport(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			path, err := writeExport(cmd, file, dest)
			if err != nil {
				return err
			}
			return reportWritten(c, cmd, path, len(file.Data))
		},
	}
	cmd.Flags().StringVarP(&dest, "file", "f", "", `destination file or directory, "-" for stdout`)
	filters.register(cmd, "all, cash-in or cash-out")
	return cmd
}

func newRemindersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List pending loan reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.services().Reminders.PendingReminders(cmd.Context())
			if err != nil {
				return err
			}
			loc := c.services().Location
			return c.printer(cmd).emit(tasks, func(w io.Writer) {
				row(w, "DUE", "", "LOAN", "MESSAGE")
				for _, t := range tasks {
					row(w, t.DueAt.In(loc).Format("02/01/2006 15:04"), humanize.Time(t.DueAt), t.LoanTransactionID, t.Body)
				}
			})
		},
	}
}

func newActivityCmd(c *cli) *cobra.Command {
	var resourceType string
	var page pagination.PageRequest
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.services().Audit.GetActivity(page, resourceType)
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(result, func(w io.Writer) {
				row(w, "WHEN", "ACTION", "RESOURCE", "SOURCE")
				for _, e := range result.Data {
					row(w, humanize.Time(e.CreatedAt), e.Action, strings.TrimSpace(e.ResourceType+" "+e.ResourceID), e.Source)
				}
			})
		},
	}
	cmd.Flags().StringVar(&resourceType, "resource", "", "only show one resource type, such as book or loan_transaction")
	cmd.Flags().IntVar(&page.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 20, "entries per page")
	return cmd
}
