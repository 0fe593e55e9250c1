package services

import (
	"context"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
)

// loanBookService handles loan book business logic.
type loanBookService struct {
	ctrl      *Controller
	reminders ReminderScheduler
}

// NewLoanBookService creates a new LoanBookServicer. A nil scheduler
// disables reminders.
func NewLoanBookService(ctrl *Controller, reminders ReminderScheduler) LoanBookServicer {
	if reminders == nil {
		reminders = noopScheduler{}
	}
	return &loanBookService{ctrl: ctrl, reminders: reminders}
}

// CreateLoanBook creates an empty loan book with the given name
func (s *loanBookService) CreateLoanBook(ctx context.Context, name string) (*models.LoanBook, error) {
	var book models.LoanBook
	err := s.ctrl.Update(ctx, ledger.SlotLoanBooks, func(st ledger.State) (ledger.State, error) {
		next, b, err := st.CreateLoanBook(s.ctrl.NewID(), name, s.ctrl.Now())
		book = b
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Get().Infow("loan book created", "loan_book_id", book.ID, "name", book.Name)
	return &book, nil
}

// GetLoanBooks lists every loan book in creation order with its totals
func (s *loanBookService) GetLoanBooks(_ context.Context) ([]LoanBookSummary, error) {
	st := s.ctrl.Snapshot()
	out := make([]LoanBookSummary, 0, len(st.LoanBooks))
	for _, b := range st.LoanBooks {
		out = append(out, summarizeLoanBook(st, b))
	}
	return out, nil
}

// GetLoanBook returns a single loan book with its totals
func (s *loanBookService) GetLoanBook(_ context.Context, loanBookID string) (*LoanBookSummary, error) {
	st := s.ctrl.Snapshot()
	book, ok := st.LoanBook(loanBookID)
	if !ok {
		return nil, translateError(ledger.ErrLoanBookNotFound)
	}
	summary := summarizeLoanBook(st, book)
	return &summary, nil
}

// DeleteLoanBook removes a loan book with all of its transactions and
// cancels their reminders.
func (s *loanBookService) DeleteLoanBook(ctx context.Context, loanBookID string) (int, error) {
	var removed []models.LoanTransaction
	err := s.ctrl.Update(ctx, ledger.SlotLoanBooks|ledger.SlotLoanTransactions, func(st ledger.State) (ledger.State, error) {
		next, txs, err := st.DeleteLoanBook(loanBookID)
		removed = txs
		return next, err
	})
	if err != nil {
		return 0, translateError(err)
	}

	if err := s.reminders.CancelBook(ctx, loanBookID); err != nil {
		logger.Get().Warnw("failed to cancel loan book reminders", "error", err, "loan_book_id", loanBookID)
	}
	logger.Get().Infow("loan book deleted", "loan_book_id", loanBookID, "transactions_removed", len(removed))
	return len(removed), nil
}

// OpenLoanBook marks a loan book as the current selection
func (s *loanBookService) OpenLoanBook(ctx context.Context, loanBookID string) (*models.LoanBook, error) {
	err := s.ctrl.Update(ctx, 0, func(st ledger.State) (ledger.State, error) {
		return st.SelectLoanBook(loanBookID)
	})
	if err != nil {
		return nil, translateError(err)
	}
	book, _ := s.ctrl.Snapshot().LoanBook(loanBookID)
	return &book, nil
}

func summarizeLoanBook(st ledger.State, b models.LoanBook) LoanBookSummary {
	txs := st.LoanBookTransactions(b.ID)
	return LoanBookSummary{LoanBook: b, Stats: ledger.ComputeLoanStats(txs), TransactionCount: len(txs)}
}

// noopScheduler is used when reminders are disabled.
type noopScheduler struct{}

func (noopScheduler) Schedule(context.Context, models.LoanTransaction) error { return nil }
func (noopScheduler) Cancel(context.Context, string) error                   { return nil }
func (noopScheduler) CancelBook(context.Context, string) error               { return nil }
func (noopScheduler) Pending(context.Context) ([]models.ReminderTask, error) {
	return []models.ReminderTask{}, nil
}
