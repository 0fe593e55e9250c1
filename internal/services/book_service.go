package services

import (
	"context"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
)

// bookService handles cash book business logic.
type bookService struct {
	ctrl *Controller
}

// NewBookService creates a new BookServicer.
func NewBookService(ctrl *Controller) BookServicer {
	return &bookService{ctrl: ctrl}
}

// CreateBook creates an empty book with the given name
func (s *bookService) CreateBook(ctx context.Context, name string) (*models.Book, error) {
	var book models.Book
	err := s.ctrl.Update(ctx, ledger.SlotBooks, func(st ledger.State) (ledger.State, error) {
		next, b, err := st.CreateBook(s.ctrl.NewID(), name, s.ctrl.Now())
		book = b
		return next, err
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Get().Infow("book created", "book_id", book.ID, "name", book.Name)
	return &book, nil
}

// GetBooks lists every book, oldest first, with its totals
func (s *bookService) GetBooks(_ context.Context) ([]BookSummary, error) {
	st := s.ctrl.Snapshot()
	books := st.SortedBooks()

	out := make([]BookSummary, 0, len(books))
	for _, b := range books {
		out = append(out, summarizeBook(st, b))
	}
	return out, nil
}

// GetBook returns a single book with its totals
func (s *bookService) GetBook(_ context.Context, bookID string) (*BookSummary, error) {
	st := s.ctrl.Snapshot()
	book, ok := st.Book(bookID)
	if !ok {
		return nil, translateError(ledger.ErrBookNotFound)
	}
	summary := summarizeBook(st, book)
	return &summary, nil
}

// DeleteBook removes a book and all of its transactions. It returns the
// number of transactions removed with it.
func (s *bookService) DeleteBook(ctx context.Context, bookID string) (int, error) {
	var removed []models.Transaction
	err := s.ctrl.Update(ctx, ledger.SlotBooks|ledger.SlotTransactions, func(st ledger.State) (ledger.State, error) {
		next, txs, err := st.DeleteBook(bookID)
		removed = txs
		return next, err
	})
	if err != nil {
		return 0, translateError(err)
	}

	logger.Get().Infow("book deleted", "book_id", bookID, "transactions_removed", len(removed))
	return len(removed), nil
}

// OpenBook marks a book as the current selection
func (s *bookService) OpenBook(ctx context.Context, bookID string) (*models.Book, error) {
	err := s.ctrl.Update(ctx, 0, func(st ledger.State) (ledger.State, error) {
		return st.SelectBook(bookID)
	})
	if err != nil {
		return nil, translateError(err)
	}
	book, _ := s.ctrl.Snapshot().Book(bookID)
	return &book, nil
}

// GetSelection returns the open book and loan book, if any
func (s *bookService) GetSelection(_ context.Context) (*Selection, error) {
	st := s.ctrl.Snapshot()
	sel := &Selection{}
	if b, ok := st.Book(st.SelectedBookID); ok {
		sel.Book = &b
	}
	if lb, ok := st.LoanBook(st.SelectedLoanBookID); ok {
		sel.LoanBook = &lb
	}
	return sel, nil
}

func summarizeBook(st ledger.State, b models.Book) BookSummary {
	txs := st.BookTransactions(b.ID)
	return BookSummary{Book: b, Stats: ledger.ComputeStats(txs), TransactionCount: len(txs)}
}
