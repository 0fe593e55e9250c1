package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LoanType represents the direction of a loan
type LoanType string

const (
	LoanTypeGiven LoanType = "loan-given"
	LoanTypeTaken LoanType = "loan-taken"
)

// Valid reports whether t is a known loan type.
func (t LoanType) Valid() bool {
	return t == LoanTypeGiven || t == LoanTypeTaken
}

// Phrase returns the wording used in reminder notifications.
func (t LoanType) Phrase() string {
	if t == LoanTypeGiven {
		return "loan given to"
	}
	return "loan taken from"
}

// Reminder is the delay after the loan date at which a reminder fires.
type Reminder string

const (
	ReminderNone      Reminder = "none"
	ReminderMinute    Reminder = "1min"
	ReminderWeek      Reminder = "1week"
	ReminderHalfMonth Reminder = "halfmonth"
	ReminderMonth     Reminder = "1month"
	ReminderSixMonths Reminder = "6month"
	ReminderYear      Reminder = "1year"
)

var reminderDelays = map[Reminder]time.Duration{
	ReminderMinute:    time.Minute,
	ReminderWeek:      7 * 24 * time.Hour,
	ReminderHalfMonth: 15 * 24 * time.Hour,
	ReminderMonth:     30 * 24 * time.Hour,
	ReminderSixMonths: 180 * 24 * time.Hour,
	ReminderYear:      365 * 24 * time.Hour,
}

// Valid reports whether r is a known reminder. The empty string counts as none.
func (r Reminder) Valid() bool {
	if r == "" || r == ReminderNone {
		return true
	}
	_, ok := reminderDelays[r]
	return ok
}

// Delay returns the reminder delay, or zero for none.
func (r Reminder) Delay() time.Duration {
	return reminderDelays[r]
}

// Enabled reports whether a reminder should be scheduled.
func (r Reminder) Enabled() bool {
	return r.Delay() > 0
}

// LoanTransaction is a single loan given or taken in a LoanBook.
type LoanTransaction struct {
	ID          string          `json:"id"`
	LoanBookID  string          `json:"loanBookId"`
	Type        LoanType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Contact     string          `json:"contact"`
	DueDate     Date            `json:"dueDate"`
	Reminder    Reminder        `json:"reminder"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"createdBy"`
}

// UnmarshalJSON accepts numeric ids as written by older exports.
func (t *LoanTransaction) UnmarshalJSON(data []byte) error {
	type alias LoanTransaction
	aux := struct {
		*alias
		ID         flexID `json:"id"`
		LoanBookID flexID `json:"loanBookId"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID, t.LoanBookID = string(aux.ID), string(aux.LoanBookID)
	return nil
}
