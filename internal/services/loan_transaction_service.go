package services

import (
	"context"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
)

// loanTransactionService handles loan transaction business logic.
type loanTransactionService struct {
	ctrl      *Controller
	reminders ReminderScheduler
}

// NewLoanTransactionService creates a new LoanTransactionServicer. A nil
// scheduler disables reminders.
func NewLoanTransactionService(ctrl *Controller, reminders ReminderScheduler) LoanTransactionServicer {
	if reminders == nil {
		reminders = noopScheduler{}
	}
	return &loanTransactionService{ctrl: ctrl, reminders: reminders}
}

func (in LoanTransactionInput) fields(createdBy string) ledger.LoanTransactionFields {
	return ledger.LoanTransactionFields{
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Contact:     in.Contact,
		DueDate:     in.DueDate,
		Reminder:    in.Reminder,
		Date:        in.Date,
		CreatedBy:   createdBy,
	}
}

// AddLoanTransaction records a loan given or taken and schedules its
// reminder
func (s *loanTransactionService) AddLoanTransaction(ctx context.Context, loanBookID string, in LoanTransactionInput) (*models.LoanTransaction, error) {
	var tx models.LoanTransaction
	err := s.ctrl.Update(ctx, ledger.SlotLoanTransactions, func(st ledger.State) (ledger.State, error) {
		next, created, err := st.AddLoanTransaction(s.ctrl.NewID(), loanBookID, in.fields(s.ctrl.CreatedBy()), s.ctrl.Now())
		tx = created
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.schedule(ctx, tx)
	logger.Get().Infow("loan transaction added",
		"loan_transaction_id", tx.ID,
		"loan_book_id", loanBookID,
		"type", tx.Type,
		"amount", tx.Amount.String(),
		"reminder", tx.Reminder,
	)
	return &tx, nil
}

// GetLoanBookTransactions returns one page of a loan book's filtered
// transactions, newest first
func (s *loanTransactionService) GetLoanBookTransactions(_ context.Context, loanBookID string, filter ledger.Filter, page pagination.PageRequest) (*LoanTransactionList, error) {
	st := s.ctrl.Snapshot()
	if _, ok := st.LoanBook(loanBookID); !ok {
		return nil, translateError(ledger.ErrLoanBookNotFound)
	}

	all := st.LoanBookTransactions(loanBookID)
	filtered := ledger.ApplyLoanFilters(all, filter, s.ctrl.Now())

	return &LoanTransactionList{
		PageResponse:  pagination.Slice(filtered, page),
		Stats:         ledger.ComputeLoanStats(all),
		FilteredStats: ledger.ComputeLoanStats(filtered),
		Filter:        filter,
	}, nil
}

// GetLoanTransactionByID returns a single loan transaction
func (s *loanTransactionService) GetLoanTransactionByID(_ context.Context, loanTxID string) (*models.LoanTransaction, error) {
	tx, ok := s.ctrl.Snapshot().LoanTransaction(loanTxID)
	if !ok {
		return nil, translateError(ledger.ErrLoanTransactionNotFound)
	}
	return &tx, nil
}

// UpdateLoanTransaction replaces the editable fields of a loan transaction.
// The reminder is rescheduled when its delay or the loan date changed.
func (s *loanTransactionService) UpdateLoanTransaction(ctx context.Context, loanTxID string, in LoanTransactionInput) (*models.LoanTransaction, error) {
	var before, after models.LoanTransaction
	err := s.ctrl.Update(ctx, ledger.SlotLoanTransactions, func(st ledger.State) (ledger.State, error) {
		before, _ = st.LoanTransaction(loanTxID)
		next, updated, err := st.UpdateLoanTransaction(loanTxID, in.fields(""))
		after = updated
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	if before.Reminder != after.Reminder || !before.Date.Equal(after.Date) {
		s.cancel(ctx, loanTxID)
		s.schedule(ctx, after)
	}
	logger.Get().Infow("loan transaction updated", "loan_transaction_id", after.ID, "loan_book_id", after.LoanBookID)
	return &after, nil
}

// DeleteLoanTransaction removes a loan transaction and cancels its reminder
func (s *loanTransactionService) DeleteLoanTransaction(ctx context.Context, loanTxID string) error {
	var tx models.LoanTransaction
	err := s.ctrl.Update(ctx, ledger.SlotLoanTransactions, func(st ledger.State) (ledger.State, error) {
		next, removed, err := st.DeleteLoanTransaction(loanTxID)
		tx = removed
		return next, err
	})
	if err != nil {
		return translateError(err)
	}

	s.cancel(ctx, loanTxID)
	logger.Get().Infow("loan transaction deleted", "loan_transaction_id", tx.ID, "loan_book_id", tx.LoanBookID)
	return nil
}

func (s *loanTransactionService) schedule(ctx context.Context, tx models.LoanTransaction) {
	if err := s.reminders.Schedule(ctx, tx); err != nil {
		logger.Get().Warnw("failed to schedule reminder", "error", err, "loan_transaction_id", tx.ID)
	}
}

func (s *loanTransactionService) cancel(ctx context.Context, loanTxID string) {
	if err := s.reminders.Cancel(ctx, loanTxID); err != nil {
		logger.Get().Warnw("failed to cancel reminder", "error", err, "loan_transaction_id", loanTxID)
	}
}
