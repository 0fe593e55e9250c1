package services

import (
	"context"
	"testing"

	"cashbook/internal/models"
	"cashbook/internal/testutil"
)

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		svc := NewBookService(ctrl)

		book, err := svc.CreateBook(ctx, "  Shop  ")
		testutil.AssertNoError(t, err)
		if book.Name != "Shop" {
			t.Errorf("expected trimmed name Shop, got %q", book.Name)
		}
		if book.ID == "" {
			t.Error("expected an id")
		}
		if !book.CreatedAt.Equal(testutil.FixedNow) {
			t.Errorf("expected createdAt %v, got %v", testutil.FixedNow, book.CreatedAt)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		svc := NewBookService(ctrl)

		_, err := svc.CreateBook(ctx, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		if n := len(ctrl.Snapshot().Books); n != 0 {
			t.Errorf("expected no books, got %d", n)
		}
	})
}

func TestGetBooks(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)
	svc := NewBookService(ctrl)

	shop := mustCreateBook(t, ctrl, "Shop")
	mustCreateBook(t, ctrl, "Home")
	mustAddTransaction(t, ctrl, shop.ID, models.TransactionTypeCashIn, "500", "Sale")
	mustAddTransaction(t, ctrl, shop.ID, models.TransactionTypeCashOut, "200", "Rent")

	books, err := svc.GetBooks(ctx)
	testutil.AssertNoError(t, err)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].Name != "Shop" || books[0].TransactionCount != 2 {
		t.Errorf("unexpected first summary: %+v", books[0])
	}
	if books[0].Stats.TotalIn.String() != "500" || books[0].Stats.TotalOut.String() != "200" || books[0].Stats.NetBalance.String() != "300" {
		t.Errorf("unexpected stats: %+v", books[0].Stats)
	}
	if !books[1].Stats.NetBalance.IsZero() {
		t.Errorf("expected empty book to have zero balance, got %s", books[1].Stats.NetBalance)
	}

	t.Run("get one", func(t *testing.T) {
		got, err := svc.GetBook(ctx, shop.ID)
		testutil.AssertNoError(t, err)
		if got.TransactionCount != 2 {
			t.Errorf("expected 2 transactions, got %d", got.TransactionCount)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetBook(ctx, "missing")
		testutil.AssertAppError(t, err, "BOOK_NOT_FOUND")
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to transactions", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		svc := NewBookService(ctrl)
		book := mustCreateBook(t, ctrl, "Shop")
		other := mustCreateBook(t, ctrl, "Home")
		for _, d := range []string{"a", "b", "c"} {
			mustAddTransaction(t, ctrl, book.ID, models.TransactionTypeCashIn, "1", d)
		}
		kept := mustAddTransaction(t, ctrl, other.ID, models.TransactionTypeCashIn, "1", "kept")
		_, err := svc.OpenBook(ctx, book.ID)
		testutil.AssertNoError(t, err)

		removed, err := svc.DeleteBook(ctx, book.ID)
		testutil.AssertNoError(t, err)
		if removed != 3 {
			t.Errorf("expected 3 transactions removed, got %d", removed)
		}

		st := ctrl.Snapshot()
		if len(st.Books) != 1 || len(st.Transactions) != 1 || st.Transactions[0].ID != kept.ID {
			t.Errorf("unexpected state after delete: %+v", st)
		}
		if st.SelectedBookID != "" {
			t.Errorf("expected selection cleared, got %q", st.SelectedBookID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		_, err := NewBookService(ctrl).DeleteBook(ctx, "missing")
		testutil.AssertAppError(t, err, "BOOK_NOT_FOUND")
	})
}

func TestSelection(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)
	svc := NewBookService(ctrl)
	book := mustCreateBook(t, ctrl, "Shop")

	sel, err := svc.GetSelection(ctx)
	testutil.AssertNoError(t, err)
	if sel.Book != nil || sel.LoanBook != nil {
		t.Errorf("expected empty selection, got %+v", sel)
	}

	opened, err := svc.OpenBook(ctx, book.ID)
	testutil.AssertNoError(t, err)
	if opened.ID != book.ID {
		t.Errorf("expected %s, got %s", book.ID, opened.ID)
	}

	sel, err = svc.GetSelection(ctx)
	testutil.AssertNoError(t, err)
	if sel.Book == nil || sel.Book.ID != book.ID {
		t.Errorf("expected %s selected, got %+v", book.ID, sel.Book)
	}

	_, err = svc.OpenBook(ctx, "missing")
	testutil.AssertAppError(t, err, "BOOK_NOT_FOUND")
}
