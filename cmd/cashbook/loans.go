package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
	"cashbook/internal/report"
	"cashbook/internal/services"
)

type loanFlags struct {
	loanType    string
	amount      string
	description string
	contact     string
	dueDate     string
	reminder    string
	date        string
}

func (f *loanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.loanType, "type", "", "loan-given or loan-taken")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount")
	cmd.Flags().StringVar(&f.description, "desc", "", "description")
	cmd.Flags().StringVar(&f.contact, "contact", "", "who the loan is with")
	cmd.Flags().StringVar(&f.dueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.reminder, "reminder", "", "none, 1min, 1week, halfmonth, 1month, 6month or 1year")
	cmd.Flags().StringVar(&f.date, "date", "", "date, defaults to now")
}

func (f *loanFlags) input(loc *time.Location) (services.LoanTransactionInput, error) {
	date, err := parseDateFlag(f.date, loc)
	if err != nil {
		return services.LoanTransactionInput{}, err
	}
	due, err := models.ParseDate(f.dueDate)
	if err != nil {
		return services.LoanTransactionInput{}, fmt.Errorf("invalid due date %q, use YYYY-MM-DD", f.dueDate)
	}
	return services.LoanTransactionInput{
		Type:        models.LoanType(f.loanType),
		Amount:      f.amount,
		Description: f.description,
		Contact:     f.contact,
		DueDate:     due,
		Reminder:    models.Reminder(f.reminder),
		Date:        date,
	}, nil
}

func loanTable(w io.Writer, txs []models.LoanTransaction, loc *time.Location) {
	row(w, "ID", "DATE", "TYPE", "AMOUNT", "CONTACT", "DESCRIPTION", "DUE", "REMINDER")
	for _, tx := range txs {
		row(w, tx.ID, tx.Date.In(loc).Format("02/01/2006 15:04"), string(tx.Type), report.FormatAmount(tx.Amount),
			tx.Contact, report.Truncate(tx.Description), tx.DueDate.String(), string(tx.Reminder))
	}
}

func newLoanCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Manage loan books and loans",
	}
	cmd.AddCommand(newLoanBookCmd(c), newLoanTxCmd(c))
	return cmd
}

func newLoanBookCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage loan books",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List loan books with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := c.services().LoanBooks.GetLoanBooks(cmd.Context())
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
		Short: "Create a loan book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.services().LoanBooks.CreateLoanBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.services().Audit.Log("CREATE_LOAN_BOOK", "loan_book", book.ID, services.AuditSourceCLI, map[string]any{"name": book.Name})
			p := c.printer(cmd)
			if p.json {
				return p.emit(book, nil)
			}
			return p.message("Created loan book %q (%s)", book.Name, book.ID)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a loan book and its totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.services().LoanBooks.GetLoanBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(book, func(w io.Writer) {
				row(w, "Loan book:", book.Name)
				row(w, "ID:", book.ID)
				row(w, "Entries:", strconv.Itoa(book.TransactionCount))
				loanStatsLine(w, book.Stats)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a loan book, its loans and their reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.services().LoanBooks.DeleteLoanBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.services().Audit.Log("DELETE_LOAN_BOOK", "loan_book", args[0], services.AuditSourceCLI, map[string]any{"transactions_removed": removed})
			return c.printer(cmd).message("Loan book deleted successfully (%d transactions removed)", removed)
		},
	})

	return cmd
}

func newLoanTxCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage loans",
	}

	var filters filterFlags
	var page pagination.PageRequest
	list := &cobra.Command{
		Use:   "list LOAN_BOOK_ID",
		Short: "List a loan book's loans, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.filter(ledger.ValidLoanEntryType)
			if err != nil {
				return err
			}
			result, err := c.services().LoanTransactions.GetLoanBookTransactions(cmd.Context(), args[0], filter, page)
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(result, func(w io.Writer) {
				loanTable(w, result.Data, c.services().Location)
				fmt.Fprintf(w, "\nPage %d of %d (%d entries)\n", result.Page, max(result.TotalPages, 1), result.TotalItems)
				loanStatsLine(w, result.FilteredStats)
			})
		},
	}
	filters.register(list, "all, loan-given or loan-taken")
	list.Flags().IntVar(&page.Page, "page", 1, "page number")
	list.Flags().IntVar(&page.PageSize, "page-size", 20, "entries per page")
	cmd.AddCommand(list)

	var addFlags loanFlags
	add := &cobra.Command{
		Use:   "add LOAN_BOOK_ID",
		Short: "Record a loan given or taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := addFlags.input(c.services().Location)
			if err != nil {
				return err
			}
			tx, err := c.services().LoanTransactions.AddLoanTransaction(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.services().Audit.Log("CREATE_LOAN_TRANSACTION", "loan_transaction", tx.ID, services.AuditSourceCLI, map[string]any{
				"loan_book_id": tx.LoanBookID,
				"type":         tx.Type,
				"amount":       tx.Amount.String(),
				"reminder":     tx.Reminder,
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
		Short: "Show a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := c.services().LoanTransactions.GetLoanTransactionByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printer(cmd).emit(tx, func(w io.Writer) {
				loanTable(w, []models.LoanTransaction{*tx}, c.services().Location)
			})
		},
	})

	var editFlags loanFlags
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a loan; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.services().LoanTransactions
			current, err := svc.GetLoanTransactionByID(cmd.Context(), args[0])
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
			keep("due", &editFlags.dueDate, current.DueDate.String())
			keep("reminder", &editFlags.reminder, string(current.Reminder))

			in, err := editFlags.input(c.services().Location)
			if err != nil {
				return err
			}
			tx, err := svc.UpdateLoanTransaction(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.services().Audit.Log("UPDATE_LOAN_TRANSACTION", "loan_transaction", tx.ID, services.AuditSourceCLI, nil)
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
		Short: "Delete a loan and its reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.services().LoanTransactions.DeleteLoanTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.services().Audit.Log("DELETE_LOAN_TRANSACTION", "loan_transaction", args[0], services.AuditSourceCLI, nil)
			return c.printer(cmd).message("Loan transaction deleted successfully")
		},
	})

	return cmd
}
