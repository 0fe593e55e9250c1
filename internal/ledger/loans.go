package ledger

import (
	"fmt"
	"strings"
	"time"

	"cashbook/internal/models"
)

// LoanTransactionFields is the user-editable part of a loan transaction.
// Defaults follow TransactionFields: a zero Type is loan-given and a zero
// Reminder is none on add, while on update they keep the stored value.
// DueDate is always replaced.
type LoanTransactionFields struct {
	Type        models.LoanType
	Amount      string
	Description string
	Contact     string
	DueDate     models.Date
	Reminder    models.Reminder
	Date        time.Time
	CreatedBy   string
}

// CreateLoanBook appends a new loan book with a trimmed name.
func (s State) CreateLoanBook(id, name string, now time.Time) (State, models.LoanBook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, models.LoanBook{}, ErrEmptyName
	}
	if id == "" {
		return s, models.LoanBook{}, ErrMissingID
	}
	if _, exists := s.LoanBook(id); exists {
		return s, models.LoanBook{}, fmt.Errorf("%w: loan book %s", ErrDuplicateID, id)
	}

	book := models.LoanBook{ID: id, Name: name, CreatedAt: now}
	s.LoanBooks = appendCopy(s.LoanBooks, book)
	return s, book, nil
}

// DeleteLoanBook removes a loan book and all of its transactions.
func (s State) DeleteLoanBook(id string) (State, []models.LoanTransaction, error) {
	if _, ok := s.LoanBook(id); !ok {
		return s, nil, ErrLoanBookNotFound
	}

	var removed []models.LoanTransaction
	s.LoanTransactions = removeWhere(s.LoanTransactions, func(tx models.LoanTransaction) bool {
		if tx.LoanBookID == id {
			removed = append(removed, tx)
			return true
		}
		return false
	})
	s.LoanBooks = removeWhere(s.LoanBooks, func(b models.LoanBook) bool { return b.ID == id })
	if s.SelectedLoanBookID == id {
		s.SelectedLoanBookID = ""
	}
	return s, removed, nil
}

// SelectLoanBook marks a loan book as the one currently open.
func (s State) SelectLoanBook(id string) (State, error) {
	if id != "" {
		if _, ok := s.LoanBook(id); !ok {
			return s, ErrLoanBookNotFound
		}
	}
	s.SelectedLoanBookID = id
	return s, nil
}

// AddLoanTransaction appends a loan transaction to an existing loan book.
func (s State) AddLoanTransaction(id, loanBookID string, f LoanTransactionFields, now time.Time) (State, models.LoanTransaction, error) {
	if _, ok := s.LoanBook(loanBookID); !ok {
		return s, models.LoanTransaction{}, ErrLoanBookNotFound
	}
	if id == "" {
		return s, models.LoanTransaction{}, ErrMissingID
	}
	if s.loanTransactionIndex(id) >= 0 {
		return s, models.LoanTransaction{}, fmt.Errorf("%w: loan transaction %s", ErrDuplicateID, id)
	}

	tx := models.LoanTransaction{
		ID:         id,
		LoanBookID: loanBookID,
		Type:       models.LoanTypeGiven,
		Reminder:   models.ReminderNone,
		Date:       now,
		CreatedBy:  models.CreatedByUser,
	}
	if f.CreatedBy != "" {
		tx.CreatedBy = f.CreatedBy
	}
	tx, err := applyLoanFields(tx, f)
	if err != nil {
		return s, models.LoanTransaction{}, err
	}

	s.LoanTransactions = appendCopy(s.LoanTransactions, tx)
	return s, tx, nil
}

// UpdateLoanTransaction replaces the editable fields of a loan transaction.
func (s State) UpdateLoanTransaction(id string, f LoanTransactionFields) (State, models.LoanTransaction, error) {
	i := s.loanTransactionIndex(id)
	if i < 0 {
		return s, models.LoanTransaction{}, ErrLoanTransactionNotFound
	}

	tx, err := applyLoanFields(s.LoanTransactions[i], f)
	if err != nil {
		return s, models.LoanTransaction{}, err
	}

	s.LoanTransactions = replaceAt(s.LoanTransactions, i, tx)
	return s, tx, nil
}

// DeleteLoanTransaction removes a single loan transaction.
func (s State) DeleteLoanTransaction(id string) (State, models.LoanTransaction, error) {
	i := s.loanTransactionIndex(id)
	if i < 0 {
		return s, models.LoanTransaction{}, ErrLoanTransactionNotFound
	}
	removed := s.LoanTransactions[i]
	s.LoanTransactions = removeWhere(s.LoanTransactions, func(tx models.LoanTransaction) bool { return tx.ID == id })
	return s, removed, nil
}

func applyLoanFields(tx models.LoanTransaction, f LoanTransactionFields) (models.LoanTransaction, error) {
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
	if f.Reminder != "" {
		if !f.Reminder.Valid() {
			return tx, fmt.Errorf("%w: %q", ErrInvalidReminder, f.Reminder)
		}
		tx.Reminder = f.Reminder
	}
	if !f.Date.IsZero() {
		tx.Date = f.Date
	}

	tx.Amount = amount
	tx.Description = description
	tx.Contact = strings.TrimSpace(f.Contact)
	tx.DueDate = f.DueDate
	return tx, nil
}
