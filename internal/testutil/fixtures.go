package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// FixedNow is the reference instant used by fixtures.
var FixedNow = time.Date(2024, 6, 10, 11, 30, 0, 0, time.UTC)

// Clock returns a clock that always reads t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// IDs returns a generator of predictable, unique ids with the given prefix.
func IDs(prefix string) func(time.Time) string {
	return func(time.Time) string {
		return fmt.Sprintf("%s-%d", prefix, nextID())
	}
}

// NewBook returns a book with a unique id and name.
func NewBook() models.Book {
	n := nextID()
	return models.Book{ID: fmt.Sprintf("book-%d", n), Name: fmt.Sprintf("Test Book %d", n), CreatedAt: FixedNow}
}

// NewTransaction returns a transaction of the given type and amount in bookID.
func NewTransaction(bookID string, txType models.TransactionType, amount int64) models.Transaction {
	n := nextID()
	return models.Transaction{
		ID:          fmt.Sprintf("tx-%d", n),
		BookID:      bookID,
		Type:        txType,
		Amount:      decimal.NewFromInt(amount),
		Description: fmt.Sprintf("Test Transaction %d", n),
		Category:    models.CategoryCash,
		Date:        FixedNow,
		CreatedBy:   models.CreatedByUser,
	}
}

// NewLoanBook returns a loan book with a unique id and name.
func NewLoanBook() models.LoanBook {
	n := nextID()
	return models.LoanBook{ID: fmt.Sprintf("loanbook-%d", n), Name: fmt.Sprintf("Test Loan Book %d", n), CreatedAt: FixedNow}
}

// NewLoanTransaction returns a loan transaction in loanBookID.
func NewLoanTransaction(loanBookID string, loanType models.LoanType, amount int64, reminder models.Reminder) models.LoanTransaction {
	n := nextID()
	return models.LoanTransaction{
		ID:          fmt.Sprintf("loan-%d", n),
		LoanBookID:  loanBookID,
		Type:        loanType,
		Amount:      decimal.NewFromInt(amount),
		Description: fmt.Sprintf("Test Loan %d", n),
		Contact:     "Asha",
		Reminder:    reminder,
		Date:        FixedNow,
		CreatedBy:   models.CreatedByUser,
	}
}

// SampleState returns a state with one book holding a cash-in of 500 and a
// cash-out of 200, and one loan book holding a loan given of 1000.
func SampleState() ledger.State {
	book := NewBook()
	loanBook := NewLoanBook()
	in := NewTransaction(book.ID, models.TransactionTypeCashIn, 500)
	in.Description = "Sale"
	out := NewTransaction(book.ID, models.TransactionTypeCashOut, 200)
	out.Description = "Rent"
	return ledger.State{
		Books:            []models.Book{book},
		Transactions:     []models.Transaction{in, out},
		LoanBooks:        []models.LoanBook{loanBook},
		LoanTransactions: []models.LoanTransaction{NewLoanTransaction(loanBook.ID, models.LoanTypeGiven, 1000, models.ReminderNone)},
	}
}

// CreateTestReminderTask stores a pending reminder task due at dueAt.
func CreateTestReminderTask(t *testing.T, db *gorm.DB, loanTxID, loanBookID string, dueAt time.Time) *models.ReminderTask {
	t.Helper()

	task := &models.ReminderTask{
		LoanTransactionID: loanTxID,
		LoanBookID:        loanBookID,
		DueAt:             dueAt,
		Status:            models.ReminderStatusPending,
		Title:             "Loan Reminder",
		Body:              fmt.Sprintf("Reminder %d", nextID()),
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test reminder task: %v", err)
	}
	return task
}
