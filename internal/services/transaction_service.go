package services

import (
	"context"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
)

// transactionService handles cash transaction business logic.
type transactionService struct {
	ctrl *Controller
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(ctrl *Controller) TransactionServicer {
	return &transactionService{ctrl: ctrl}
}

func (in TransactionInput) fields(createdBy string) ledger.TransactionFields {
	return ledger.TransactionFields{
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Contact:     in.Contact,
		Category:    in.Category,
		Date:        in.Date,
		CreatedBy:   createdBy,
	}
}

// AddTransaction records a cash-in or cash-out in a book
func (s *transactionService) AddTransaction(ctx context.Context, bookID string, in TransactionInput) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.ctrl.Update(ctx, ledger.SlotTransactions, func(st ledger.State) (ledger.State, error) {
		next, created, err := st.AddTransaction(s.ctrl.NewID(), bookID, in.fields(s.ctrl.CreatedBy()), s.ctrl.Now())
		tx = created
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Get().Infow("transaction added",
		"transaction_id", tx.ID,
		"book_id", bookID,
		"type", tx.Type,
		"amount", tx.Amount.String(),
	)
	return &tx, nil
}

// GetBookTransactions returns one page of a book's filtered transactions,
// newest first, with totals for the whole book and for the filtered view
func (s *transactionService) GetBookTransactions(_ context.Context, bookID string, filter ledger.Filter, page pagination.PageRequest) (*TransactionList, error) {
	st := s.ctrl.Snapshot()
	if _, ok := st.Book(bookID); !ok {
		return nil, translateError(ledger.ErrBookNotFound)
	}

	all := st.BookTransactions(bookID)
	filtered := ledger.ApplyFilters(all, filter, s.ctrl.Now())

	return &TransactionList{
		PageResponse:  pagination.Slice(filtered, page),
		Stats:         ledger.ComputeStats(all),
		FilteredStats: ledger.ComputeStats(filtered),
		Filter:        filter,
	}, nil
}

// GetTransactionByID returns a single transaction
func (s *transactionService) GetTransactionByID(_ context.Context, transactionID string) (*models.Transaction, error) {
	tx, ok := s.ctrl.Snapshot().Transaction(transactionID)
	if !ok {
		return nil, translateError(ledger.ErrTransactionNotFound)
	}
	return &tx, nil
}

// UpdateTransaction replaces the editable fields of a transaction
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, in TransactionInput) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.ctrl.Update(ctx, ledger.SlotTransactions, func(st ledger.State) (ledger.State, error) {
		next, updated, err := st.UpdateTransaction(transactionID, in.fields(""))
		tx = updated
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Get().Infow("transaction updated", "transaction_id", tx.ID, "book_id", tx.BookID)
	return &tx, nil
}

// DeleteTransaction removes a transaction
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	var tx models.Transaction
	err := s.ctrl.Update(ctx, ledger.SlotTransactions, func(st ledger.State) (ledger.State, error) {
		next, removed, err := st.DeleteTransaction(transactionID)
		tx = removed
		return next, err
	})
	if err != nil {
		return translateError(err)
	}

	logger.Get().Infow("transaction deleted", "transaction_id", tx.ID, "book_id", tx.BookID)
	return nil
}
