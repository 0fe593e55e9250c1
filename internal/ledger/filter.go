package ledger

import (
	"fmt"
	"strings"
	"time"

	"cashbook/internal/models"
)

// DateRange selects transactions by recency relative to "now".
type DateRange string

const (
	DateRangeAll   DateRange = "all"
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
)

// EntryTypeAll disables the entry type predicate.
const EntryTypeAll = "all"

// ParseDateRange validates a date range. The empty string means all.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "", DateRangeAll:
		return DateRangeAll, nil
	case DateRangeToday, DateRangeWeek, DateRangeMonth:
		return r, nil
	}
	return "", fmt.Errorf("invalid date range %q", s)
}

// Start returns the inclusive lower bound of the range in now's location.
// ok is false when the range is unbounded.
func (r DateRange) Start(now time.Time) (start time.Time, ok bool) {
	switch r {
	case DateRangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return now.AddDate(0, -1, 0), true
	}
	return time.Time{}, false
}

// ValidCashEntryType reports whether s is all, cash-in or cash-out.
func ValidCashEntryType(s string) bool {
	return s == "" || s == EntryTypeAll || models.TransactionType(s).Valid()
}

// ValidLoanEntryType reports whether s is all, loan-given or loan-taken.
func ValidLoanEntryType(s string) bool {
	return s == "" || s == EntryTypeAll || models.LoanType(s).Valid()
}

// Filter is the combination of predicates applied to a transaction list.
type Filter struct {
	DateRange  DateRange `json:"dateRange"`
	EntryType  string    `json:"entryType"`
	SearchTerm string    `json:"searchTerm"`
}

// Active reports whether any predicate would exclude something.
func (f Filter) Active() bool {
	return (f.DateRange != "" && f.DateRange != DateRangeAll) ||
		(f.EntryType != "" && f.EntryType != EntryTypeAll) ||
		f.SearchTerm != ""
}

type matcher struct {
	since     time.Time
	bounded   bool
	entryType string
	term      string
}

func (f Filter) matcher(now time.Time) matcher {
	m := matcher{term: strings.ToLower(f.SearchTerm)}
	m.since, m.bounded = f.DateRange.Start(now)
	if f.EntryType != EntryTypeAll {
		m.entryType = f.EntryType
	}
	return m
}

func (m matcher) match(entryType string, date time.Time, fields ...string) bool {
	if m.entryType != "" && entryType != m.entryType {
		return false
	}
	if m.bounded && date.Before(m.since) {
		return false
	}
	if m.term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), m.term) {
			return true
		}
	}
	return false
}

// ApplyFilters returns the cash transactions matching every predicate of f,
// preserving input order. Search covers description, contact and category.
func ApplyFilters(txs []models.Transaction, f Filter, now time.Time) []models.Transaction {
	m := f.matcher(now)
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if m.match(string(tx.Type), tx.Date, tx.Description, tx.Contact, tx.Category) {
			out = append(out, tx)
		}
	}
	return out
}

// ApplyLoanFilters is ApplyFilters for loan transactions. Search covers
// description and contact.
func ApplyLoanFilters(txs []models.LoanTransaction, f Filter, now time.Time) []models.LoanTransaction {
	m := f.matcher(now)
	out := make([]models.LoanTransaction, 0, len(txs))
	for _, tx := range txs {
		if m.match(string(tx.Type), tx.Date, tx.Description, tx.Contact) {
			out = append(out, tx)
		}
	}
	return out
}
