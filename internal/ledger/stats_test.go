package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"cashbook/internal/models"
)

func TestComputeStats(t *testing.T) {
	t.Run("shop scenario", func(t *testing.T) {
		s := mustCreateBook(t, State{}, "shop", "Shop")
		s = mustAdd(t, s, "t1", "shop", models.TransactionTypeCashIn, "500", "Sale", baseTime)
		s = mustAdd(t, s, "t2", "shop", models.TransactionTypeCashOut, "200", "Rent", baseTime)

		stats := ComputeStats(s.BookTransactions("shop"))
		assertDecimal(t, "totalIn", stats.TotalIn, "500")
		assertDecimal(t, "totalOut", stats.TotalOut, "200")
		assertDecimal(t, "netBalance", stats.NetBalance, "300")
	})

	t.Run("empty", func(t *testing.T) {
		stats := ComputeStats(nil)
		assertDecimal(t, "netBalance", stats.NetBalance, "0")
	})

	t.Run("exact decimal sums", func(t *testing.T) {
		txs := []models.Transaction{
			{Type: models.TransactionTypeCashIn, Amount: decimal.RequireFromString("0.1")},
			{Type: models.TransactionTypeCashIn, Amount: decimal.RequireFromString("0.2")},
		}
		assertDecimal(t, "totalIn", ComputeStats(txs).TotalIn, "0.3")
	})

	t.Run("additive over disjoint sets", func(t *testing.T) {
		a := []models.Transaction{
			{Type: models.TransactionTypeCashIn, Amount: decimal.NewFromInt(70)},
			{Type: models.TransactionTypeCashOut, Amount: decimal.NewFromInt(20)},
		}
		b := []models.Transaction{
			{Type: models.TransactionTypeCashOut, Amount: decimal.NewFromInt(90)},
			{Type: models.TransactionTypeCashIn, Amount: decimal.RequireFromString("12.5")},
		}
		union := append(append([]models.Transaction{}, a...), b...)

		whole := ComputeStats(union)
		parts := ComputeStats(a).Add(ComputeStats(b))
		assertDecimal(t, "totalIn", whole.TotalIn, parts.TotalIn.String())
		assertDecimal(t, "totalOut", whole.TotalOut, parts.TotalOut.String())
		assertDecimal(t, "netBalance", whole.NetBalance, parts.NetBalance.String())
	})
}

func TestComputeLoanStats(t *testing.T) {
	txs := []models.LoanTransaction{
		{Type: models.LoanTypeGiven, Amount: decimal.NewFromInt(1000)},
		{Type: models.LoanTypeTaken, Amount: decimal.NewFromInt(300)},
		{Type: models.LoanTypeGiven, Amount: decimal.NewFromInt(50)},
	}
	stats := ComputeLoanStats(txs)
	assertDecimal(t, "totalGiven", stats.TotalGiven, "1050")
	assertDecimal(t, "totalTaken", stats.TotalTaken, "300")
	assertDecimal(t, "netBalance", stats.NetBalance, "750")

	split := ComputeLoanStats(txs[:1]).Add(ComputeLoanStats(txs[1:]))
	assertDecimal(t, "split netBalance", split.NetBalance, "750")
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s %s, got %s", name, want, got)
	}
}
