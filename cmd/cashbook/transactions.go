package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
	"cashbook/internal/report"
	"cashbook/internal/services"
)

// dateLayouts are accepted by --date, read in the configured timezone.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

func parseDateFlag(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or YYYY-MM-DDTHH:MM", s)
}

// filterFlags are shared by the list and report commands.
type filterFlags struct {
	dateRange string
	entryType string
	search    string
}

func (f *filterFlags) register(cmd *cobra.Command, types string) {
	cmd.Flags().StringVar(&f.dateRange, "range", "all", "date range: all, today, week or month")
	cmd.Flags().StringVar(&f.entryType, "type", ledger.EntryTypeAll, "entry type: "+types)
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive match on description or contact")
}

func (f *filterFlags) filter(valid func(string) bool) (ledger.Filter, error) {
	r, err := ledger.ParseDateRange(f.dateRange)
	if err != nil {
		return ledger.Filter{}, err
	}
	if !valid(f.entryType) {
		return ledger.Filter{}, fmt.Errorf("invalid entry type %q", f.entryType)
	}
	return ledger.Filter{DateRange: r, EntryType: f.entryType, SearchTerm: f.search}, nil
}

// txFlags hold the editable transaction fields.
type txFlags struct {
	txType      string
	amount      string
	description string
	contact     string
	category    string
	date        string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.txType, "type", "", "cash-in or cash-out")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount")
	cmd.Flags().StringVar(&f.description, "desc", "", "description")
	cmd.Flags().StringVar(&f.contact, "contact", "", "contact")
	cmd.Flags().StringVar(&f.category, "category", "", "category: Cash, Bank, Digital or Other")
	cmd.Flags().StringVar(&f.date, "date", "", "date, defaults to now")
}

func (f *txFlags) input(loc *time.Location) (services.TransactionInput, error) {
	date, err := parseDateFlag(f.date, loc)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Type:        models.TransactionType(f.txType),
		Amount:      f.amount,
		Description: f.description,
		Contact:     f.contact,
		Category:    f.category,
		Date:        date,
	}, nil
}

func transactionTable(w io.Writer, txs []models.Transaction, loc *time.Location) {
	row(w, "ID", "DATE", "TYPE", "AMOUNT", "DESCRIPTION", "CONTACT", "CATEGORY")
	for _, tx := range txs {
		row(w, tx.ID, tx.Date.In(loc).Format("02/01/2006 15:04"), string(tx.Type), report.FormatAmount(tx.Amount),
			report.Truncate(tx.Description), tx.Contact, tx.Category)
	}
}

func newTxCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Manage cash transactions",
	}

	var filters filterFlags
	var page pagination.PageRequest
	list := &cobra.Command{
		Use:   "list BOOK_ID",
		Short: "List a book's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.filter(ledger.ValidCashEntryType)
			if err != nil {
				return err
			}
			result, err := c.services().Transactions.GetBookTransactions(cmd.Context(), args[0], filter, page)
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(result, func(w io.Writer) {
				transactionTable(w, result.Data, c.services().Location)
				fmt.Fprintf(w, "\nPage %d of %d (%d entries)\n", result.Page, max(result.TotalPages, 1), result.TotalItems)
				statsLine(w, result.FilteredStats)
			})
		},
	}
	filters.register(list, "all, cash-in or cash-out")
	list.Flags().IntVar(&page.Page, "page", 1, "page number")
	list.Flags().IntVar(&page.PageSize, "page-size", 20, "entries per page")
	cmd.AddCommand(list)

	var addFlags txFlags
	add := &cobra.Command{
		Use:   "add BOOK_ID",
		Short: "Add a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := addFlags.input(c.services().Location)
			if err != nil {
				return err
			}
			tx, err := c.services().Transactions.AddTransaction(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.services().Audit.Log("CREATE_TRANSACTION", "transaction", tx.ID, services.AuditSourceCLI, map[string]any{
				"book_id": tx.BookID,
				"type":    tx.Type,
				"amount":  tx.Amount.String(),
			})
			p := c.printer(cmd)
			if p.json {
				return p.emit(tx, nil)
			}
			return p.message("Added %s of %s (%s)", tx.Type, report.FormatAmount(tx.Amount), tx.ID)
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("desc")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := c.services().Transactions.GetTransactionByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(tx, func(w io.Writer) {
				transactionTable(w, []models.Transaction{*tx}, c.services().Location)
			})
		},
	})

	var editFlags txFlags
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a transaction; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.services().Transactions
			current, err := svc.GetTransactionByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			keep := func(flag string, v *string, old string) {
				if !cmd.Flags().Changed(flag) {
					*v = old
				}
			}
			keep("amount", &editFlags.amount, current.Amount.String())
			keep("desc", &editFlags.description, current.Description)
			keep("contact", &editFlags.contact, current.Contact)

			in, err := editFlags.input(c.services().Location)
			if err != nil {
				return err
			}
			tx, err := svc.UpdateTransaction(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.services().Audit.Log("UPDATE_TRANSACTION", "transaction", tx.ID, services.AuditSourceCLI, nil)
			p := c.printer(cmd)
			if p.json {
				return p.emit(tx, nil)
			}
			return p.message("Updated %s", tx.ID)
		},
	}
	editFlags.register(edit)
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.services().Transactions.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.services().Audit.Log("DELETE_TRANSACTION", "transaction", args[0], services.AuditSourceCLI, nil)
			return c.printer(cmd).message("Transaction deleted successfully")
		},
	})

	return cmd
}
