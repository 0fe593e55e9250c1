package main

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cashbook/internal/report"
	"cashbook/internal/services"
)

func newBookCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage cash books",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List books with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := c.services().Books.GetBooks(cmd.Context())
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(books, func(w io.Writer) {
				row(w, "ID", "NAME", "ENTRIES", "BALANCE", "CREATED")
				for _, b := range books {
					row(w, b.ID, b.Name, strconv.Itoa(b.TransactionCount), report.FormatAmount(b.Stats.NetBalance), humanize.Time(b.CreatedAt))
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.services().Books.CreateBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.services().Audit.Log("CREATE_BOOK", "book", book.ID, services.AuditSourceCLI, map[string]any{"name": book.Name})
			p := c.printer(cmd)
			if p.json {
				return p.emit(book, nil)
			}
			return p.message("Created book %q (%s)", book.Name, book.ID)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a book and its totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.services().Books.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(book, func(w io.Writer) {
				row(w, "Book:", book.Name)
				row(w, "ID:", book.ID)
				row(w, "Entries:", strconv.Itoa(book.TransactionCount))
				statsLine(w, book.Stats)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.services().Books.DeleteBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.services().Audit.Log("DELETE_BOOK", "book", args[0], services.AuditSourceCLI, map[string]any{"transactions_removed": removed})
			return c.printer(cmd).message("Book deleted successfully (%d transactions removed)", removed)
		},
	})

	return cmd
}
