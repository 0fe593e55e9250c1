package services

import (
	"context"
	"errors"
	"testing"

	"cashbook/internal/database"
	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/testutil"
)

type brokenStore struct{}

func (brokenStore) Load(context.Context) (ledger.State, error) {
	return ledger.State{}, errors.New("unreadable")
}

func (brokenStore) Update(context.Context, ledger.Slots, func(ledger.State) (ledger.State, error)) (ledger.State, error) {
	return ledger.State{}, errors.New("unwritable")
}

func TestNewController(t *testing.T) {
	t.Run("loads persisted state", func(t *testing.T) {
		ctx := context.Background()
		repo := database.NewSlotRepository(testutil.SetupTestDB(t))
		testutil.AssertNoError(t, repo.Save(ctx, testutil.SampleState(), ledger.AllSlots))

		ctrl, err := NewController(ctx, repo)
		testutil.AssertNoError(t, err)

		st := ctrl.Snapshot()
		if len(st.Books) != 1 || len(st.Transactions) != 2 || len(st.LoanTransactions) != 1 {
			t.Errorf("unexpected state after load: %+v", st)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		if _, err := NewController(context.Background(), brokenStore{}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestController_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("persists only changed slots", func(t *testing.T) {
		ctrl, store := newTestController(t)
		mustCreateBook(t, ctrl, "Shop")

		if len(store.saves) != 1 || store.saves[0] != ledger.SlotBooks {
			t.Errorf("expected a single books save, got %v", store.saves)
		}

		reloaded, err := NewController(ctx, store)
		testutil.AssertNoError(t, err)
		if len(reloaded.Snapshot().Books) != 1 {
			t.Errorf("expected book to survive reload")
		}
	})

	t.Run("failed save keeps previous state", func(t *testing.T) {
		ctrl, store := newTestController(t)
		book := mustCreateBook(t, ctrl, "Shop")
		before := ctrl.Snapshot()

		store.fail = true
		_, err := NewTransactionService(ctrl).AddTransaction(ctx, book.ID, TransactionInput{Amount: "10", Description: "Tea"})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
		testutil.AssertErrorIs(t, err, errSaveFailed)

		if after := ctrl.Snapshot(); len(after.Transactions) != len(before.Transactions) {
			t.Errorf("expected no transaction after failed save, got %d", len(after.Transactions))
		}
	})

	t.Run("selection is not persisted", func(t *testing.T) {
		ctrl, store := newTestController(t)
		book := mustCreateBook(t, ctrl, "Shop")
		saves := len(store.saves)

		_, err := NewBookService(ctrl).OpenBook(ctx, book.ID)
		testutil.AssertNoError(t, err)
		if len(store.saves) != saves {
			t.Errorf("expected no save for selection, got %v", store.saves)
		}
		if ctrl.Snapshot().SelectedBookID != book.ID {
			t.Errorf("expected %s selected", book.ID)
		}
	})

	t.Run("snapshots are immutable", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		book := mustCreateBook(t, ctrl, "Shop")
		snap := ctrl.Snapshot()

		mustAddTransaction(t, ctrl, book.ID, models.TransactionTypeCashIn, "5", "Sale")
		if len(snap.Transactions) != 0 {
			t.Errorf("expected old snapshot unchanged, got %d transactions", len(snap.Transactions))
		}
	})
}

func TestController_SharedDatabase(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	open := func(prefix string) *Controller {
		t.Helper()
		ctrl, err := NewController(ctx, database.NewSlotRepository(db),
			WithClock(testutil.Clock(testutil.FixedNow)),
			WithIDGenerator(testutil.IDs(prefix)),
		)
		testutil.AssertNoError(t, err)
		return ctrl
	}
	cli := open("cli")
	server := open("server")

	mustCreateBook(t, cli, "From CLI")
	fromServer := mustCreateBook(t, server, "From server")

	t.Run("neither write is lost", func(t *testing.T) {
		fresh := open("fresh")
		names := make(map[string]bool)
		for _, b := range fresh.Snapshot().Books {
			names[b.Name] = true
		}
		if len(names) != 2 || !names["From CLI"] || !names["From server"] {
			t.Errorf("expected both books persisted, got %v", names)
		}
		if len(server.Snapshot().Books) != 2 {
			t.Errorf("expected the writing controller to see both books, got %d", len(server.Snapshot().Books))
		}
	})

	t.Run("selection of a book deleted elsewhere is dropped", func(t *testing.T) {
		_, err := NewBookService(server).OpenBook(ctx, fromServer.ID)
		testutil.AssertNoError(t, err)

		_, err = NewBookService(cli).DeleteBook(ctx, fromServer.ID)
		testutil.AssertNoError(t, err)

		mustCreateBook(t, server, "Another")
		if sel := server.Snapshot().SelectedBookID; sel != "" {
			t.Errorf("expected selection cleared, got %q", sel)
		}
	})
}
