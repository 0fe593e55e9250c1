package services

import (
	"context"
	"testing"
	"time"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
	"cashbook/internal/testutil"
)

func newLoanServices(t *testing.T) (*Controller, *fakeScheduler, LoanBookServicer, LoanTransactionServicer) {
	t.Helper()
	ctrl, _ := newTestController(t)
	sched := &fakeScheduler{}
	return ctrl, sched, NewLoanBookService(ctrl, sched), NewLoanTransactionService(ctrl, sched)
}

func TestLoanBooks(t *testing.T) {
	ctx := context.Background()
	_, _, books, txs := newLoanServices(t)

	book, err := books.CreateLoanBook(ctx, "Friends")
	testutil.AssertNoError(t, err)

	_, err = books.CreateLoanBook(ctx, "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, err = txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Type: models.LoanTypeGiven, Amount: "1000", Description: "Trip"})
	testutil.AssertNoError(t, err)
	_, err = txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Type: models.LoanTypeTaken, Amount: "300", Description: "Dinner"})
	testutil.AssertNoError(t, err)

	list, err := books.GetLoanBooks(ctx)
	testutil.AssertNoError(t, err)
	if len(list) != 1 || list[0].TransactionCount != 2 {
		t.Fatalf("unexpected summaries %+v", list)
	}
	if list[0].Stats.TotalGiven.String() != "1000" || list[0].Stats.TotalTaken.String() != "300" || list[0].Stats.NetBalance.String() != "700" {
		t.Errorf("unexpected loan stats %+v", list[0].Stats)
	}

	opened, err := books.OpenLoanBook(ctx, book.ID)
	testutil.AssertNoError(t, err)
	if opened.Name != "Friends" {
		t.Errorf("expected Friends, got %s", opened.Name)
	}

	_, err = books.GetLoanBook(ctx, "missing")
	testutil.AssertAppError(t, err, "LOAN_BOOK_NOT_FOUND")
}

func TestAddLoanTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("schedules reminder", func(t *testing.T) {
		_, sched, books, txs := newLoanServices(t)
		book, err := books.CreateLoanBook(ctx, "Friends")
		testutil.AssertNoError(t, err)

		tx, err := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{
			Type:        models.LoanTypeGiven,
			Amount:      "1000",
			Description: "Trip",
			Contact:     "Ravi",
			DueDate:     models.NewDate(testutil.FixedNow.AddDate(0, 1, 0)),
			Reminder:    models.ReminderWeek,
		})
		testutil.AssertNoError(t, err)

		if len(sched.scheduled) != 1 || sched.scheduled[0].ID != tx.ID {
			t.Errorf("expected reminder scheduled for %s, got %+v", tx.ID, sched.scheduled)
		}
		if tx.DueDate.String() != "2024-07-10" {
			t.Errorf("expected due date 2024-07-10, got %s", tx.DueDate)
		}
	})

	t.Run("defaults to no reminder", func(t *testing.T) {
		_, sched, books, txs := newLoanServices(t)
		book, _ := books.CreateLoanBook(ctx, "Friends")

		tx, err := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea"})
		testutil.AssertNoError(t, err)
		if tx.Reminder != models.ReminderNone || tx.Type != models.LoanTypeGiven {
			t.Errorf("unexpected defaults %+v", tx)
		}
		if len(sched.scheduled) != 0 {
			t.Errorf("expected nothing scheduled, got %d", len(sched.scheduled))
		}
	})

	t.Run("invalid reminder", func(t *testing.T) {
		_, _, books, txs := newLoanServices(t)
		book, _ := books.CreateLoanBook(ctx, "Friends")

		_, err := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea", Reminder: "2days"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown loan book", func(t *testing.T) {
		_, _, _, txs := newLoanServices(t)
		_, err := txs.AddLoanTransaction(ctx, "missing", LoanTransactionInput{Amount: "10", Description: "Tea"})
		testutil.AssertAppError(t, err, "LOAN_BOOK_NOT_FOUND")
	})

	t.Run("scheduler failure does not fail the add", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		sched := &fakeScheduler{err: errSaveFailed}
		book, err := NewLoanBookService(ctrl, sched).CreateLoanBook(ctx, "Friends")
		testutil.AssertNoError(t, err)

		_, err = NewLoanTransactionService(ctrl, sched).AddLoanTransaction(ctx, book.ID, LoanTransactionInput{
			Amount: "10", Description: "Tea", Reminder: models.ReminderMinute,
		})
		testutil.AssertNoError(t, err)
		if len(ctrl.Snapshot().LoanTransactions) != 1 {
			t.Error("expected the loan transaction to be stored")
		}
	})
}

func TestUpdateLoanTransaction(t *testing.T) {
	ctx := context.Background()
	_, sched, books, txs := newLoanServices(t)
	book, _ := books.CreateLoanBook(ctx, "Friends")
	tx, err := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea", Reminder: models.ReminderWeek})
	testutil.AssertNoError(t, err)

	t.Run("same reminder does not reschedule", func(t *testing.T) {
		_, err := txs.UpdateLoanTransaction(ctx, tx.ID, LoanTransactionInput{Amount: "20", Description: "Tea and snacks"})
		testutil.AssertNoError(t, err)
		if len(sched.cancelled) != 0 || len(sched.scheduled) != 1 {
			t.Errorf("expected no reschedule, got cancelled=%v scheduled=%d", sched.cancelled, len(sched.scheduled))
		}
	})

	t.Run("changed reminder reschedules", func(t *testing.T) {
		updated, err := txs.UpdateLoanTransaction(ctx, tx.ID, LoanTransactionInput{Amount: "20", Description: "Tea", Reminder: models.ReminderMonth})
		testutil.AssertNoError(t, err)
		if updated.Reminder != models.ReminderMonth {
			t.Errorf("expected 1month, got %s", updated.Reminder)
		}
		if len(sched.cancelled) != 1 || sched.cancelled[0] != tx.ID {
			t.Errorf("expected %s cancelled, got %v", tx.ID, sched.cancelled)
		}
		if len(sched.scheduled) != 2 || sched.scheduled[1].Reminder != models.ReminderMonth {
			t.Errorf("expected reschedule, got %+v", sched.scheduled)
		}
	})

	t.Run("changed date reschedules", func(t *testing.T) {
		_, err := txs.UpdateLoanTransaction(ctx, tx.ID, LoanTransactionInput{
			Amount: "20", Description: "Tea", Date: testutil.FixedNow.Add(-time.Hour),
		})
		testutil.AssertNoError(t, err)
		if len(sched.scheduled) != 3 {
			t.Errorf("expected third schedule, got %d", len(sched.scheduled))
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := txs.UpdateLoanTransaction(ctx, "missing", LoanTransactionInput{Amount: "1", Description: "x"})
		testutil.AssertAppError(t, err, "LOAN_TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("delete transaction cancels reminder", func(t *testing.T) {
		_, sched, books, txs := newLoanServices(t)
		book, _ := books.CreateLoanBook(ctx, "Friends")
		tx, _ := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea", Reminder: models.ReminderMinute})

		testutil.AssertNoError(t, txs.DeleteLoanTransaction(ctx, tx.ID))
		if len(sched.cancelled) != 1 || sched.cancelled[0] != tx.ID {
			t.Errorf("expected %s cancelled, got %v", tx.ID, sched.cancelled)
		}
		_, err := txs.GetLoanTransactionByID(ctx, tx.ID)
		testutil.AssertAppError(t, err, "LOAN_TRANSACTION_NOT_FOUND")
	})

	t.Run("delete book cascades and cancels", func(t *testing.T) {
		ctrl, sched, books, txs := newLoanServices(t)
		book, _ := books.CreateLoanBook(ctx, "Friends")
		for i := 0; i < 3; i++ {
			_, err := txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea"})
			testutil.AssertNoError(t, err)
		}

		removed, err := books.DeleteLoanBook(ctx, book.ID)
		testutil.AssertNoError(t, err)
		if removed != 3 {
			t.Errorf("expected 3 removed, got %d", removed)
		}
		if len(sched.books) != 1 || sched.books[0] != book.ID {
			t.Errorf("expected book reminders cancelled, got %v", sched.books)
		}
		if n := len(ctrl.Snapshot().LoanTransactions); n != 0 {
			t.Errorf("expected no loan transactions, got %d", n)
		}

		_, err = books.DeleteLoanBook(ctx, book.ID)
		testutil.AssertAppError(t, err, "LOAN_BOOK_NOT_FOUND")
	})
}

func TestGetLoanBookTransactions(t *testing.T) {
	ctx := context.Background()
	_, _, books, txs := newLoanServices(t)
	book, _ := books.CreateLoanBook(ctx, "Friends")
	_, _ = txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Type: models.LoanTypeGiven, Amount: "100", Description: "Books", Contact: "Ravi"})
	_, _ = txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Type: models.LoanTypeTaken, Amount: "40", Description: "Lunch", Contact: "Meera"})

	list, err := txs.GetLoanBookTransactions(ctx, book.ID, ledger.Filter{SearchTerm: "meera"}, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if list.TotalItems != 1 || list.Data[0].Contact != "Meera" {
		t.Errorf("expected Meera's entry, got %+v", list.Data)
	}
	if list.Stats.NetBalance.String() != "60" {
		t.Errorf("expected net 60, got %s", list.Stats.NetBalance)
	}
	if list.FilteredStats.TotalTaken.String() != "40" {
		t.Errorf("expected filtered taken 40, got %s", list.FilteredStats.TotalTaken)
	}

	_, err = txs.GetLoanBookTransactions(ctx, "missing", ledger.Filter{}, pagination.PageRequest{})
	testutil.AssertAppError(t, err, "LOAN_BOOK_NOT_FOUND")
}

func TestPendingReminders(t *testing.T) {
	ctx := context.Background()

	tasks, err := NewReminderService(nil).PendingReminders(ctx)
	testutil.AssertNoError(t, err)
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil list, got %v", tasks)
	}

	_, sched, books, txs := newLoanServices(t)
	book, _ := books.CreateLoanBook(ctx, "Friends")
	_, _ = txs.AddLoanTransaction(ctx, book.ID, LoanTransactionInput{Amount: "10", Description: "Tea", Reminder: models.ReminderYear})

	tasks, err = NewReminderService(sched).PendingReminders(ctx)
	testutil.AssertNoError(t, err)
	if len(tasks) != 1 {
		t.Errorf("expected 1 pending, got %d", len(tasks))
	}
}
