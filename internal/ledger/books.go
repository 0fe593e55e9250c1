package ledger

import (
	"fmt"
	"strings"
	"time"

	"cashbook/internal/models"
)

// TransactionFields is the user-editable part of a cash transaction.
//
// On add, a zero Type defaults to cash-in, an empty Category to Cash, a zero
// Date to now and an empty CreatedBy to "User". On update the zero values of
// Type, Category and Date keep the stored value; Description and Contact are
// always replaced.
type TransactionFields struct {
	Type        models.TransactionType
	Amount      string
	Description string
	Contact     string
	Category    string
	Date        time.Time
	CreatedBy   string
}

// CreateBook appends a new book with a trimmed name.
func (s State) CreateBook(id, name string, now time.Time) (State, models.Book, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, models.Book{}, ErrEmptyName
	}
	if id == "" {
		return s, models.Book{}, ErrMissingID
	}
	if _, exists := s.Book(id); exists {
		return s, models.Book{}, fmt.Errorf("%w: book %s", ErrDuplicateID, id)
	}

	book := models.Book{ID: id, Name: name, CreatedAt: now}
	s.Books = appendCopy(s.Books, book)
	return s, book, nil
}

// DeleteBook removes a book together with all of its transactions, and
// clears the selection if it pointed at that book.
func (s State) DeleteBook(id string) (State, []models.Transaction, error) {
	if _, ok := s.Book(id); !ok {
		return s, nil, ErrBookNotFound
	}

	var removed []models.Transaction
	s.Transactions = removeWhere(s.Transactions, func(tx models.Transaction) bool {
		if tx.BookID == id {
			removed = append(removed, tx)
			return true
		}
		return false
	})
	s.Books = removeWhere(s.Books, func(b models.Book) bool { return b.ID == id })
	if s.SelectedBookID == id {
		s.SelectedBookID = ""
	}
	return s, removed, nil
}

// SelectBook marks a book as the one currently open.
func (s State) SelectBook(id string) (State, error) {
	if id != "" {
		if _, ok := s.Book(id); !ok {
			return s, ErrBookNotFound
		}
	}
	s.SelectedBookID = id
	return s, nil
}

// AddTransaction appends a transaction to an existing book.
func (s State) AddTransaction(id, bookID string, f TransactionFields, now time.Time) (State, models.Transaction, error) {
	if _, ok := s.Book(bookID); !ok {
		return s, models.Transaction{}, ErrBookNotFound
	}
	if id == "" {
		return s, models.Transaction{}, ErrMissingID
	}
	if s.transactionIndex(id) >= 0 {
		return s, models.Transaction{}, fmt.Errorf("%w: transaction %s", ErrDuplicateID, id)
	}

	tx := models.Transaction{
		ID:        id,
		BookID:    bookID,
		Type:      models.TransactionTypeCashIn,
		Category:  models.CategoryCash,
		Date:      now,
		CreatedBy: models.CreatedByUser,
	}
	if f.CreatedBy != "" {
		tx.CreatedBy = f.CreatedBy
	}
	tx, err := applyTransactionFields(tx, f)
	if err != nil {
		return s, models.Transaction{}, err
	}

	s.Transactions = appendCopy(s.Transactions, tx)
	return s, tx, nil
}

// UpdateTransaction replaces the editable fields of a transaction. The id,
// book and author never change.
func (s State) UpdateTransaction(id string, f TransactionFields) (State, models.Transaction, error) {
	i := s.transactionIndex(id)
	if i < 0 {
		return s, models.Transaction{}, ErrTransactionNotFound
	}

	tx, err := applyTransactionFields(s.Transactions[i], f)
	if err != nil {
		return s, models.Transaction{}, err
	}

	s.Transactions = replaceAt(s.Transactions, i, tx)
	return s, tx, nil
}

// DeleteTransaction removes a single transaction.
func (s State) DeleteTransaction(id string) (State, models.Transaction, error) {
	i := s.transactionIndex(id)
	if i < 0 {
		return s, models.Transaction{}, ErrTransactionNotFound
	}
	removed := s.Transactions[i]
	s.Transactions = removeWhere(s.Transactions, func(tx models.Transaction) bool { return tx.ID == id })
	return s, removed, nil
}

// AppendTransactions adds already-built transactions, as produced by an
// import. Every transaction must reference an existing book and carry a
// fresh id. Either all are appended or none.
func (s State) AppendTransactions(txs []models.Transaction) (State, error) {
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			return s, ErrMissingID
		}
		if seen[tx.ID] || s.transactionIndex(tx.ID) >= 0 {
			return s, fmt.Errorf("%w: transaction %s", ErrDuplicateID, tx.ID)
		}
		seen[tx.ID] = true
		if _, ok := s.Book(tx.BookID); !ok {
			return s, fmt.Errorf("%w: %s", ErrBookNotFound, tx.BookID)
		}
		if !tx.Type.Valid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidType, tx.Type)
		}
		if tx.Amount.IsNegative() {
			return s, ErrInvalidAmount
		}
	}
	s.Transactions = appendCopy(s.Transactions, txs...)
	return s, nil
}

func applyTransactionFields(tx models.Transaction, f TransactionFields) (models.Transaction, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return tx, err
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return tx, ErrMissingDescription
	}
	if f.Type != "" {
		if !f.Type.Valid() {
			return tx, fmt.Errorf("%w: %q", ErrInvalidType, f.Type)
		}
		tx.Type = f.Type
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		tx.Category = category
	}
	if !f.Date.IsZero() {
		tx.Date = f.Date
	}

	tx.Amount = amount
	tx.Description = description
	tx.Contact = strings.TrimSpace(f.Contact)
	return tx, nil
}
