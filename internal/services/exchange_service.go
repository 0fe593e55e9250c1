package services

import (
	"bytes"
	"context"

	"cashbook/internal/exchange"
	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
)

// BackupFilename is the download name of a JSON export.
const BackupFilename = "cashbook_data.json"

// exchangeService handles JSON backups and CSV import/export.
type exchangeService struct {
	ctrl      *Controller
	reminders ReminderScheduler
}

// NewExchangeService creates a new ExchangeServicer. A nil scheduler
// disables reminder cleanup on import.
func NewExchangeService(ctrl *Controller, reminders ReminderScheduler) ExchangeServicer {
	if reminders == nil {
		reminders = noopScheduler{}
	}
	return &exchangeService{ctrl: ctrl, reminders: reminders}
}

// ExportJSON writes all four collections as an indented JSON document
func (s *exchangeService) ExportJSON(_ context.Context) (*ExportFile, error) {
	var buf bytes.Buffer
	if err := exchange.EncodeJSON(&buf, s.ctrl.Snapshot()); err != nil {
		return nil, translateError(err)
	}
	return &ExportFile{Filename: BackupFilename, ContentType: "application/json", Data: buf.Bytes()}, nil
}

// ImportJSON replaces every collection with the contents of a backup. An
// invalid document leaves the current state untouched. Reminders of loan
// transactions that are not part of the backup are cancelled, and imported
// loans whose reminder is still ahead get one unless it is already pending.
func (s *exchangeService) ImportJSON(ctx context.Context, data []byte) (*ImportSummary, error) {
	doc, err := exchange.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, translateError(err)
	}

	var dropped []models.LoanTransaction
	err = s.ctrl.Update(ctx, ledger.AllSlots, func(st ledger.State) (ledger.State, error) {
		next, err := st.Replace(doc.State())
		if err != nil {
			return st, err
		}
		for _, tx := range st.LoanTransactions {
			if _, ok := next.LoanTransaction(tx.ID); !ok {
				dropped = append(dropped, tx)
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	for _, tx := range dropped {
		if err := s.reminders.Cancel(ctx, tx.ID); err != nil {
			logger.Get().Warnw("failed to cancel reminder", "error", err, "loan_transaction_id", tx.ID)
		}
	}
	s.scheduleImported(ctx, doc.LoanTransactions)

	summary := &ImportSummary{
		Books:            len(doc.Books),
		Transactions:     len(doc.Transactions),
		LoanBooks:        len(doc.LoanBooks),
		LoanTransactions: len(doc.LoanTransactions),
	}
	logger.Get().Infow("backup imported",
		"books", summary.Books,
		"transactions", summary.Transactions,
		"loan_books", summary.LoanBooks,
		"loan_transactions", summary.LoanTransactions,
	)
	return summary, nil
}

func (s *exchangeService) scheduleImported(ctx context.Context, loans []models.LoanTransaction) {
	pending, err := s.reminders.Pending(ctx)
	if err != nil {
		logger.Get().Warnw("failed to list pending reminders", "error", err)
		return
	}
	queued := make(map[string]bool, len(pending))
	for _, task := range pending {
		queued[task.LoanTransactionID] = true
	}

	now := s.ctrl.Now()
	for _, tx := range loans {
		if !tx.Reminder.Enabled() || queued[tx.ID] || !tx.Date.Add(tx.Reminder.Delay()).After(now) {
			continue
		}
		if err := s.reminders.Schedule(ctx, tx); err != nil {
			logger.Get().Warnw("failed to schedule reminder", "error", err, "loan_transaction_id", tx.ID)
		}
	}
}

// ExportCSV writes a book's transactions, newest first, as CSV
func (s *exchangeService) ExportCSV(_ context.Context, bookID string) (*ExportFile, error) {
	st := s.ctrl.Snapshot()
	book, ok := st.Book(bookID)
	if !ok {
		return nil, translateError(ledger.ErrBookNotFound)
	}

	var buf bytes.Buffer
	if err := exchange.WriteCSV(&buf, st.BookTransactions(bookID), s.ctrl.Location()); err != nil {
		return nil, translateError(err)
	}
	return &ExportFile{
		Filename:    exchange.CSVFilename(book.Name),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

// ImportCSV appends the valid rows of a CSV file to a book. Invalid rows are
// skipped and reported in the summary.
func (s *exchangeService) ImportCSV(ctx context.Context, bookID string, data []byte) (*ImportSummary, error) {
	if _, ok := s.ctrl.Snapshot().Book(bookID); !ok {
		return nil, translateError(ledger.ErrBookNotFound)
	}

	reader := &exchange.CSVReader{
		BookID:   bookID,
		Now:      s.ctrl.Now(),
		Location: s.ctrl.Location(),
		NewID:    s.ctrl.newID,
	}
	result, err := reader.Read(bytes.NewReader(data))
	if err != nil {
		return nil, translateError(err)
	}

	err = s.ctrl.Update(ctx, ledger.SlotTransactions, func(st ledger.State) (ledger.State, error) {
		return st.AppendTransactions(result.Transactions)
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Get().Infow("CSV imported",
		"book_id", bookID,
		"imported", len(result.Transactions),
		"skipped", len(result.Skipped),
	)
	return &ImportSummary{Transactions: len(result.Transactions), Skipped: result.Skipped}, nil
}
