package ledger

import (
	"github.com/shopspring/decimal"

	"cashbook/internal/models"
)

// Stats summarizes a set of cash transactions.
type Stats struct {
	TotalIn    decimal.Decimal `json:"totalIn"`
	TotalOut   decimal.Decimal `json:"totalOut"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// ComputeStats sums cash-in and cash-out amounts. The net balance is
// always TotalIn - TotalOut.
func ComputeStats(txs []models.Transaction) Stats {
	in, out := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeCashIn:
			in = in.Add(tx.Amount)
		case models.TransactionTypeCashOut:
			out = out.Add(tx.Amount)
		}
	}
	return Stats{TotalIn: in, TotalOut: out, NetBalance: in.Sub(out)}
}

// Add combines two summaries. ComputeStats(a ++ b) == ComputeStats(a).Add(ComputeStats(b)).
func (s Stats) Add(o Stats) Stats {
	in := s.TotalIn.Add(o.TotalIn)
	out := s.TotalOut.Add(o.TotalOut)
	return Stats{TotalIn: in, TotalOut: out, NetBalance: in.Sub(out)}
}

// LoanStats summarizes a set of loan transactions.
type LoanStats struct {
	TotalGiven decimal.Decimal `json:"totalGiven"`
	TotalTaken decimal.Decimal `json:"totalTaken"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// ComputeLoanStats sums loans given and taken. A positive net balance means
// more money is owed to the user than by the user.
func ComputeLoanStats(txs []models.LoanTransaction) LoanStats {
	given, taken := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.LoanTypeGiven:
			given = given.Add(tx.Amount)
		case models.LoanTypeTaken:
			taken = taken.Add(tx.Amount)
		}
	}
	return LoanStats{TotalGiven: given, TotalTaken: taken, NetBalance: given.Sub(taken)}
}

// Add combines two loan summaries.
func (s LoanStats) Add(o LoanStats) LoanStats {
	given := s.TotalGiven.Add(o.TotalGiven)
	taken := s.TotalTaken.Add(o.TotalTaken)
	return LoanStats{TotalGiven: given, TotalTaken: taken, NetBalance: given.Sub(taken)}
}
