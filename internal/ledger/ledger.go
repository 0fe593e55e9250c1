// Package ledger holds the in-memory cashbook state and every pure operation
// on it: book and transaction lifecycle, aggregation and filtering.
//
// State is a value. Operations never modify the receiver; they return a new
// State whose changed collections are freshly allocated, so a snapshot handed
// to a reader stays valid forever. A failed operation returns the receiver
// unchanged together with an error.
package ledger

import (
	"cmp"
	"errors"
	"slices"

	"cashbook/internal/models"
)

var (
	ErrEmptyName               = errors.New("name is required")
	ErrMissingAmount           = errors.New("amount is required")
	ErrInvalidAmount           = errors.New("amount must be a non-negative number")
	ErrMissingDescription      = errors.New("description is required")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrInvalidReminder         = errors.New("invalid reminder")
	ErrMissingID               = errors.New("id is required")
	ErrDuplicateID             = errors.New("duplicate id")
	ErrBookNotFound            = errors.New("book not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrLoanBookNotFound        = errors.New("loan book not found")
	ErrLoanTransactionNotFound = errors.New("loan transaction not found")
)

// State is the whole application state: the four persisted collections plus
// the current selection.
type State struct {
	Books            []models.Book            `json:"books"`
	Transactions     []models.Transaction     `json:"transactions"`
	LoanBooks        []models.LoanBook        `json:"loanBooks"`
	LoanTransactions []models.LoanTransaction `json:"loanTransactions"`

	SelectedBookID     string `json:"selectedBookId,omitempty"`
	SelectedLoanBookID string `json:"selectedLoanBookId,omitempty"`
}

// Book returns the book with the given id.
func (s State) Book(id string) (models.Book, bool) {
	i := slices.IndexFunc(s.Books, func(b models.Book) bool { return b.ID == id })
	if i < 0 {
		return models.Book{}, false
	}
	return s.Books[i], true
}

// LoanBook returns the loan book with the given id.
func (s State) LoanBook(id string) (models.LoanBook, bool) {
	i := slices.IndexFunc(s.LoanBooks, func(b models.LoanBook) bool { return b.ID == id })
	if i < 0 {
		return models.LoanBook{}, false
	}
	return s.LoanBooks[i], true
}

// Transaction returns the cash transaction with the given id.
func (s State) Transaction(id string) (models.Transaction, bool) {
	i := s.transactionIndex(id)
	if i < 0 {
		return models.Transaction{}, false
	}
	return s.Transactions[i], true
}

// LoanTransaction returns the loan transaction with the given id.
func (s State) LoanTransaction(id string) (models.LoanTransaction, bool) {
	i := s.loanTransactionIndex(id)
	if i < 0 {
		return models.LoanTransaction{}, false
	}
	return s.LoanTransactions[i], true
}

// BookTransactions returns the transactions of a book, newest first.
// Entries with equal dates keep their insertion order.
func (s State) BookTransactions(bookID string) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range s.Transactions {
		if tx.BookID == bookID {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// LoanBookTransactions returns the transactions of a loan book, newest first.
func (s State) LoanBookTransactions(loanBookID string) []models.LoanTransaction {
	out := make([]models.LoanTransaction, 0)
	for _, tx := range s.LoanTransactions {
		if tx.LoanBookID == loanBookID {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b models.LoanTransaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// SortedBooks returns the books ordered by creation time, oldest first.
func (s State) SortedBooks() []models.Book {
	out := slices.Clone(s.Books)
	slices.SortStableFunc(out, func(a, b models.Book) int { return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) })
	return out
}

func (s State) transactionIndex(id string) int {
	return slices.IndexFunc(s.Transactions, func(tx models.Transaction) bool { return tx.ID == id })
}

func (s State) loanTransactionIndex(id string) int {
	return slices.IndexFunc(s.LoanTransactions, func(tx models.LoanTransaction) bool { return tx.ID == id })
}

// appendCopy returns a new slice holding xs followed by vs.
func appendCopy[T any](xs []T, vs ...T) []T {
	out := make([]T, 0, len(xs)+len(vs))
	out = append(out, xs...)
	return append(out, vs...)
}

// replaceAt returns a copy of xs with element i set to v.
func replaceAt[T any](xs []T, i int, v T) []T {
	out := slices.Clone(xs)
	out[i] = v
	return out
}

// removeWhere returns a new slice without the elements matching drop.
func removeWhere[T any](xs []T, drop func(T) bool) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if !drop(x) {
			out = append(out, x)
		}
	}
	return out
}
