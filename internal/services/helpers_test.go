package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cashbook/internal/database"
	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/testutil"
)

func init() {
	logger.Init("test")
}

var errSaveFailed = errors.New("disk full")

// flakyStore wraps a StateStore, records every save and fails them while
// fail is set.
type flakyStore struct {
	StateStore
	fail  bool
	saves []ledger.Slots
}

func (s *flakyStore) Update(ctx context.Context, changed ledger.Slots, fn func(ledger.State) (ledger.State, error)) (ledger.State, error) {
	return s.StateStore.Update(ctx, changed, func(st ledger.State) (ledger.State, error) {
		next, err := fn(st)
		if err != nil {
			return next, err
		}
		if s.fail {
			return ledger.State{}, errSaveFailed
		}
		s.saves = append(s.saves, changed)
		return next, nil
	})
}

// newTestController returns a controller on a fresh database with a fixed
// clock, predictable ids and UTC dates.
func newTestController(t *testing.T) (*Controller, *flakyStore) {
	t.Helper()
	store := &flakyStore{StateStore: database.NewSlotRepository(testutil.SetupTestDB(t))}
	ctrl, err := NewController(context.Background(), store,
		WithClock(testutil.Clock(testutil.FixedNow)),
		WithIDGenerator(testutil.IDs("id")),
		WithLocation(time.UTC),
	)
	testutil.AssertNoError(t, err)
	return ctrl, store
}

// fakeScheduler records reminder calls.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []models.LoanTransaction
	cancelled []string
	books     []string
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, tx models.LoanTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.Reminder.Enabled() {
		f.scheduled = append(f.scheduled, tx)
	}
	return f.err
}

func (f *fakeScheduler) Cancel(_ context.Context, loanTxID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, loanTxID)
	return f.err
}

func (f *fakeScheduler) CancelBook(_ context.Context, loanBookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = append(f.books, loanBookID)
	return f.err
}

func (f *fakeScheduler) Pending(context.Context) ([]models.ReminderTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]models.ReminderTask, 0, len(f.scheduled))
	for _, tx := range f.scheduled {
		tasks = append(tasks, models.ReminderTask{LoanTransactionID: tx.ID, LoanBookID: tx.LoanBookID})
	}
	return tasks, f.err
}

var _ ReminderScheduler = (*fakeScheduler)(nil)

func mustCreateBook(t *testing.T, ctrl *Controller, name string) *models.Book {
	t.Helper()
	book, err := NewBookService(ctrl).CreateBook(context.Background(), name)
	testutil.AssertNoError(t, err)
	return book
}

func mustAddTransaction(t *testing.T, ctrl *Controller, bookID string, txType models.TransactionType, amount, description string) *models.Transaction {
	t.Helper()
	tx, err := NewTransactionService(ctrl).AddTransaction(context.Background(), bookID, TransactionInput{
		Type:        txType,
		Amount:      amount,
		Description: description,
	})
	testutil.AssertNoError(t, err)
	return tx
}
