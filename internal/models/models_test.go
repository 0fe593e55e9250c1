package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateJSON(t *testing.T) {
	t.Run("empty string is zero", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`""`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.IsZero() {
			t.Errorf("expected zero date, got %v", d)
		}
		out, _ := json.Marshal(d)
		if string(out) != `""` {
			t.Errorf("expected empty string, got %s", out)
		}
	})

	t.Run("calendar date round trip", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"2024-04-01"`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, _ := json.Marshal(d)
		if string(out) != `"2024-04-01"` {
			t.Errorf("expected 2024-04-01, got %s", out)
		}
	})

	t.Run("accepts full timestamps", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"2024-04-01T18:30:00Z"`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.String() != "2024-04-01" {
			t.Errorf("expected 2024-04-01, got %s", d)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"tomorrow"`), &d); err == nil {
			t.Error("expected error")
		}
	})
}

func TestTransactionJSON(t *testing.T) {
	t.Run("numeric ids from older exports", func(t *testing.T) {
		raw := `{"id":1718000000000,"bookId":1717999999999,"type":"cash-in","amount":500,"description":"Sale","contact":"","category":"Cash","date":"2024-06-10T06:13:20.000Z","createdBy":"User"}`
		var tx Transaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tx.ID != "1718000000000" || tx.BookID != "1717999999999" {
			t.Errorf("unexpected ids %q %q", tx.ID, tx.BookID)
		}
		if !tx.Amount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected amount 500, got %s", tx.Amount)
		}
	})

	t.Run("amount marshals as a number", func(t *testing.T) {
		tx := Transaction{ID: "a", BookID: "b", Type: TransactionTypeCashOut, Amount: decimal.RequireFromString("12.5"), Date: time.Unix(0, 0).UTC()}
		out, err := json.Marshal(tx)
		if err != nil {
			t.Fatal(err)
		}
		var generic map[string]any
		_ = json.Unmarshal(out, &generic)
		if generic["amount"] != 12.5 {
			t.Errorf("expected numeric amount 12.5, got %#v", generic["amount"])
		}
		if generic["bookId"] != "b" || generic["createdBy"] != "" {
			t.Errorf("unexpected keys: %v", generic)
		}
	})
}

func TestLoanTransactionJSON(t *testing.T) {
	raw := `{"id":"l1","loanBookId":42,"type":"loan-taken","amount":"300","description":"Rent","contact":"Ravi","dueDate":"","reminder":"1week","date":"2024-06-10T06:13:20Z","createdBy":"User"}`
	var tx LoanTransaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.LoanBookID != "42" {
		t.Errorf("expected loanBookId 42, got %q", tx.LoanBookID)
	}
	if tx.Reminder.Delay() != 7*24*time.Hour {
		t.Errorf("expected one week delay, got %v", tx.Reminder.Delay())
	}
	if !tx.DueDate.IsZero() {
		t.Errorf("expected no due date, got %v", tx.DueDate)
	}
}

func TestReminder(t *testing.T) {
	delays := map[Reminder]time.Duration{
		ReminderNone:      0,
		ReminderMinute:    time.Minute,
		ReminderHalfMonth: 15 * 24 * time.Hour,
		ReminderMonth:     30 * 24 * time.Hour,
		ReminderSixMonths: 180 * 24 * time.Hour,
		ReminderYear:      365 * 24 * time.Hour,
	}
	for r, want := range delays {
		if got := r.Delay(); got != want {
			t.Errorf("%s: expected %v, got %v", r, want, got)
		}
	}
	if Reminder("2days").Valid() {
		t.Error("expected unknown reminder to be invalid")
	}
	if !Reminder("").Valid() || Reminder("").Enabled() {
		t.Error("expected empty reminder to be valid and disabled")
	}
}

func TestLoanTypePhrase(t *testing.T) {
	if LoanTypeGiven.Phrase() != "loan given to" || LoanTypeTaken.Phrase() != "loan taken from" {
		t.Errorf("unexpected phrases %q %q", LoanTypeGiven.Phrase(), LoanTypeTaken.Phrase())
	}
}
