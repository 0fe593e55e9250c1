package services

import (
	"context"
	"time"

	"cashbook/internal/exchange"
	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
)

// StateStore loads and persists the ledger collections. Update must run its
// read, fn and write atomically with respect to other writers of the same
// store, including other processes.
type StateStore interface {
	Load(ctx context.Context) (ledger.State, error)
	Update(ctx context.Context, changed ledger.Slots, fn func(ledger.State) (ledger.State, error)) (ledger.State, error)
}

// ReminderScheduler queues and cancels loan reminders.
type ReminderScheduler interface {
	Schedule(ctx context.Context, tx models.LoanTransaction) error
	Cancel(ctx context.Context, loanTxID string) error
	CancelBook(ctx context.Context, loanBookID string) error
	Pending(ctx context.Context) ([]models.ReminderTask, error)
}

// BookSummary is a book together with its totals.
type BookSummary struct {
	models.Book
	Stats            ledger.Stats `json:"stats"`
	TransactionCount int          `json:"transactionCount"`
}

// LoanBookSummary is a loan book together with its totals.
type LoanBookSummary struct {
	models.LoanBook
	Stats            ledger.LoanStats `json:"stats"`
	TransactionCount int              `json:"transactionCount"`
}

// Selection is the currently open book and loan book.
type Selection struct {
	Book     *models.Book     `json:"book"`
	LoanBook *models.LoanBook `json:"loanBook"`
}

// BookServicer defines the contract for cash book management.
type BookServicer interface {
	CreateBook(ctx context.Context, name string) (*models.Book, error)
	GetBooks(ctx context.Context) ([]BookSummary, error)
	GetBook(ctx context.Context, bookID string) (*BookSummary, error)
	DeleteBook(ctx context.Context, bookID string) (int, error)
	OpenBook(ctx context.Context, bookID string) (*models.Book, error)
	GetSelection(ctx context.Context) (*Selection, error)
}

// TransactionInput carries user-supplied transaction fields. Amount is kept
// as text so that it is parsed in exactly one place.
type TransactionInput struct {
	Type        models.TransactionType
	Amount      string
	Description string
	Contact     string
	Category    string
	Date        time.Time
}

// TransactionList is one page of a book's filtered transactions. Stats cover
// the whole book, FilteredStats only the matching entries.
type TransactionList struct {
	pagination.PageResponse[models.Transaction]
	Stats         ledger.Stats  `json:"stats"`
	FilteredStats ledger.Stats  `json:"filteredStats"`
	Filter        ledger.Filter `json:"filter"`
}

// TransactionServicer defines the contract for cash transactions.
type TransactionServicer interface {
	AddTransaction(ctx context.Context, bookID string, in TransactionInput) (*models.Transaction, error)
	GetBookTransactions(ctx context.Context, bookID string, filter ledger.Filter, page pagination.PageRequest) (*TransactionList, error)
	GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// LoanBookServicer defines the contract for loan book management.
type LoanBookServicer interface {
	CreateLoanBook(ctx context.Context, name string) (*models.LoanBook, error)
	GetLoanBooks(ctx context.Context) ([]LoanBookSummary, error)
	GetLoanBook(ctx context.Context, loanBookID string) (*LoanBookSummary, error)
	DeleteLoanBook(ctx context.Context, loanBookID string) (int, error)
	OpenLoanBook(ctx context.Context, loanBookID string) (*models.LoanBook, error)
}

// LoanTransactionInput carries user-supplied loan transaction fields.
type LoanTransactionInput struct {
	Type        models.LoanType
	Amount      string
	Description string
	Contact     string
	DueDate     models.Date
	Reminder    models.Reminder
	Date        time.Time
}

// LoanTransactionList is one page of a loan book's filtered transactions.
type LoanTransactionList struct {
	pagination.PageResponse[models.LoanTransaction]
	Stats         ledger.LoanStats `json:"stats"`
	FilteredStats ledger.LoanStats `json:"filteredStats"`
	Filter        ledger.Filter    `json:"filter"`
}

// LoanTransactionServicer defines the contract for loan transactions.
type LoanTransactionServicer interface {
	AddLoanTransaction(ctx context.Context, loanBookID string, in LoanTransactionInput) (*models.LoanTransaction, error)
	GetLoanBookTransactions(ctx context.Context, loanBookID string, filter ledger.Filter, page pagination.PageRequest) (*LoanTransactionList, error)
	GetLoanTransactionByID(ctx context.Context, loanTxID string) (*models.LoanTransaction, error)
	UpdateLoanTransaction(ctx context.Context, loanTxID string, in LoanTransactionInput) (*models.LoanTransaction, error)
	DeleteLoanTransaction(ctx context.Context, loanTxID string) error
}

// ExportFile is a generated download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportSummary reports what an import changed.
type ImportSummary struct {
	Books            int                   `json:"books"`
	Transactions     int                   `json:"transactions"`
	LoanBooks        int                   `json:"loanBooks"`
	LoanTransactions int                   `json:"loanTransactions"`
	Skipped          []exchange.SkippedRow `json:"skipped,omitempty"`
}

// ExchangeServicer defines the contract for JSON and CSV import/export.
type ExchangeServicer interface {
	ExportJSON(ctx context.Context) (*ExportFile, error)
	ImportJSON(ctx context.Context, data []byte) (*ImportSummary, error)
	ExportCSV(ctx context.Context, bookID string) (*ExportFile, error)
	ImportCSV(ctx context.Context, bookID string, data []byte) (*ImportSummary, error)
}

// ReportServicer defines the contract for PDF reports.
type ReportServicer interface {
	GenerateReport(ctx context.Context, bookID string, filter ledger.Filter) (*ExportFile, error)
}

// ReminderServicer exposes the reminder queue.
type ReminderServicer interface {
	PendingReminders(ctx context.Context) ([]models.ReminderTask, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, source string, changes map[string]any)
	GetActivity(page pagination.PageRequest, resourceType string) (*pagination.PageResponse[models.AuditLog], error)
}
