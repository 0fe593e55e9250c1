package services

import (
	"bytes"
	"context"
	"testing"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
	"cashbook/internal/testutil"
)

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)
	svc := NewReportService(ctrl)
	book := mustCreateBook(t, ctrl, "Shop & Co")
	mustAddTransaction(t, ctrl, book.ID, models.TransactionTypeCashIn, "500", "Sale")
	mustAddTransaction(t, ctrl, book.ID, models.TransactionTypeCashOut, "200", "Rent")

	t.Run("whole book", func(t *testing.T) {
		file, err := svc.GenerateReport(ctx, book.ID, ledger.Filter{})
		testutil.AssertNoError(t, err)
		if file.Filename != "Shop___Co_Report_2024-06-10.pdf" {
			t.Errorf("unexpected filename %q", file.Filename)
		}
		if file.ContentType != "application/pdf" || !bytes.HasPrefix(file.Data, []byte("%PDF")) {
			t.Errorf("expected a PDF, got %s", file.ContentType)
		}
	})

	t.Run("filtered view", func(t *testing.T) {
		file, err := svc.GenerateReport(ctx, book.ID, ledger.Filter{SearchTerm: "nothing matches"})
		testutil.AssertNoError(t, err)
		if len(file.Data) == 0 {
			t.Error("expected output")
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := svc.GenerateReport(ctx, "missing", ledger.Filter{})
		testutil.AssertAppError(t, err, "BOOK_NOT_FOUND")
	})
}
