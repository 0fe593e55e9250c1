package ledger

import (
	"errors"
	"fmt"
)

// ErrInconsistent wraps every violation reported by Validate.
var ErrInconsistent = errors.New("inconsistent ledger")

// Validate checks that ids are present and unique per collection, that every
// transaction references a live parent and that types and amounts are sane.
func Validate(s State) error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	books := make(map[string]bool, len(s.Books))
	for _, b := range s.Books {
		if b.ID == "" {
			report("book %q has no id", b.Name)
		} else if books[b.ID] {
			report("duplicate book id %s", b.ID)
		}
		books[b.ID] = true
	}

	txIDs := make(map[string]bool, len(s.Transactions))
	for _, tx := range s.Transactions {
		switch {
		case tx.ID == "":
			report("transaction %q has no id", tx.Description)
		case txIDs[tx.ID]:
			report("duplicate transaction id %s", tx.ID)
		}
		txIDs[tx.ID] = true
		if !books[tx.BookID] {
			report("transaction %s references missing book %s", tx.ID, tx.BookID)
		}
		if !tx.Type.Valid() {
			report("transaction %s has invalid type %q", tx.ID, tx.Type)
		}
		if tx.Amount.IsNegative() {
			report("transaction %s has negative amount", tx.ID)
		}
	}

	loanBooks := make(map[string]bool, len(s.LoanBooks))
	for _, b := range s.LoanBooks {
		if b.ID == "" {
			report("loan book %q has no id", b.Name)
		} else if loanBooks[b.ID] {
			report("duplicate loan book id %s", b.ID)
		}
		loanBooks[b.ID] = true
	}

	loanIDs := make(map[string]bool, len(s.LoanTransactions))
	for _, tx := range s.LoanTransactions {
		switch {
		case tx.ID == "":
			report("loan transaction %q has no id", tx.Description)
		case loanIDs[tx.ID]:
			report("duplicate loan transaction id %s", tx.ID)
		}
		loanIDs[tx.ID] = true
		if !loanBooks[tx.LoanBookID] {
			report("loan transaction %s references missing loan book %s", tx.ID, tx.LoanBookID)
		}
		if !tx.Type.Valid() {
			report("loan transaction %s has invalid type %q", tx.ID, tx.Type)
		}
		if !tx.Reminder.Valid() {
			report("loan transaction %s has invalid reminder %q", tx.ID, tx.Reminder)
		}
		if tx.Amount.IsNegative() {
			report("loan transaction %s has negative amount", tx.ID)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(problems...))
}

// Replace swaps in all four collections at once, as done by a full import.
// The new collections must pass Validate. A selection pointing at a book
// that no longer exists is cleared.
func (s State) Replace(next State) (State, error) {
	if err := Validate(next); err != nil {
		return s, err
	}
	out := State{
		Books:              appendCopy(next.Books),
		Transactions:       appendCopy(next.Transactions),
		LoanBooks:          appendCopy(next.LoanBooks),
		LoanTransactions:   appendCopy(next.LoanTransactions),
		SelectedBookID:     s.SelectedBookID,
		SelectedLoanBookID: s.SelectedLoanBookID,
	}
	if _, ok := out.Book(out.SelectedBookID); !ok {
		out.SelectedBookID = ""
	}
	if _, ok := out.LoanBook(out.SelectedLoanBookID); !ok {
		out.SelectedLoanBookID = ""
	}
	return out, nil
}
