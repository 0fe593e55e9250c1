package exchange

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/testutil"
)

func newReader() *CSVReader {
	return &CSVReader{
		BookID:   "book-1",
		Now:      testutil.FixedNow,
		Location: time.UTC,
		NewID:    testutil.IDs("imp"),
	}
}

func TestCSVFilename(t *testing.T) {
	cases := map[string]string{
		"Shop":         "Shop_transactions.csv",
		"My Shop #2":   "My.Shop..2_transactions.csv",
		"Café/Kitchen": "Caf..Kitchen_transactions.csv",
	}
	for name, want := range cases {
		if got := CSVFilename(name); got != want {
			t.Errorf("CSVFilename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	t.Run("quotes every field", func(t *testing.T) {
		txs := []models.Transaction{{
			ID:          "t1",
			Type:        models.TransactionTypeCashOut,
			Amount:      decimal.RequireFromString("12.5"),
			Description: `Paint "blue", 2L`,
			Category:    "Bank",
			Date:        time.Date(2024, 6, 10, 14, 5, 9, 0, time.UTC),
			CreatedBy:   "User",
		}}

		var buf bytes.Buffer
		testutil.AssertNoError(t, WriteCSV(&buf, txs, time.UTC))

		want := "ID,Type,Amount,Description,Contact,Category,Date,Created By\n" +
			`"t1","cash-out","12.5","Paint ""blue"", 2L","","Bank","6/10/2024, 2:05:09 PM","User"` + "\n"
		if buf.String() != want {
			t.Errorf("unexpected CSV:\n%s\nwant:\n%s", buf.String(), want)
		}
	})

	t.Run("renders dates in the given location", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		txs := []models.Transaction{{ID: "t1", Type: models.TransactionTypeCashIn, Date: time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)}}
		var buf bytes.Buffer
		testutil.AssertNoError(t, WriteCSV(&buf, txs, ist))
		if !strings.Contains(buf.String(), `"6/11/2024, 1:30:00 AM"`) {
			t.Errorf("expected IST date, got %s", buf.String())
		}
	})

	t.Run("empty book", func(t *testing.T) {
		err := WriteCSV(&bytes.Buffer{}, nil, time.UTC)
		if !errors.Is(err, ErrNothingToExport) {
			t.Errorf("expected ErrNothingToExport, got %v", err)
		}
	})
}

func TestCSVRoundTrip(t *testing.T) {
	txs := []models.Transaction{
		{ID: "a", Type: models.TransactionTypeCashIn, Amount: decimal.NewFromInt(500), Description: "Sale", Contact: "Ravi", Category: "Cash", Date: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), CreatedBy: "User"},
		{ID: "b", Type: models.TransactionTypeCashOut, Amount: decimal.NewFromInt(200), Description: "Rent, June", Category: "Bank", Date: time.Date(2024, 6, 9, 18, 30, 0, 0, time.UTC), CreatedBy: "User"},
	}
	var buf bytes.Buffer
	testutil.AssertNoError(t, WriteCSV(&buf, txs, time.UTC))

	got, err := newReader().Read(&buf)
	testutil.AssertNoError(t, err)
	if len(got.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d (%+v)", len(got.Transactions), got.Skipped)
	}
	for i, tx := range got.Transactions {
		want := txs[i]
		if tx.Type != want.Type || !tx.Amount.Equal(want.Amount) || tx.Description != want.Description ||
			tx.Contact != want.Contact || tx.Category != want.Category || !tx.Date.Equal(want.Date) {
			t.Errorf("row %d: expected %+v, got %+v", i, want, tx)
		}
		if tx.BookID != "book-1" || tx.ID == want.ID {
			t.Errorf("row %d: expected fresh id in book-1, got %s in %s", i, tx.ID, tx.BookID)
		}
	}
}

func TestCSVReaderRead(t *testing.T) {
	t.Run("skips a malformed row and keeps the valid one", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		defer logger.Replace(zap.New(core))()

		input := "Type,Amount,Description,Contact,Category,Date,Created By\n" +
			"cash-in,abc,Broken,,,,\n" +
			"cash-out,200,Rent,Landlord,Bank,2024-06-01,Alice\n"

		got, err := newReader().Read(strings.NewReader(input))
		testutil.AssertNoError(t, err)
		if len(got.Transactions) != 1 {
			t.Fatalf("expected exactly 1 transaction, got %d", len(got.Transactions))
		}
		tx := got.Transactions[0]
		if tx.Description != "Rent" || tx.CreatedBy != "Alice" || tx.Date.Format("2006-01-02") != "2024-06-01" {
			t.Errorf("unexpected transaction: %+v", tx)
		}
		if len(got.Skipped) != 1 || got.Skipped[0].Line != 2 {
			t.Errorf("expected line 2 skipped, got %+v", got.Skipped)
		}
		if logs.FilterMessage("skipping invalid CSV row").Len() != 1 {
			t.Errorf("expected one warning, got %d", logs.Len())
		}
	})

	t.Run("headers are case-insensitive and order-independent", func(t *testing.T) {
		input := `"CREATED BY","date","Category","contact","Description","AMOUNT","type","extra"` + "\n" +
			`"","","","","Walk-in sale","75","Cash-In","ignored"` + "\n"

		got, err := newReader().Read(strings.NewReader(input))
		testutil.AssertNoError(t, err)
		tx := got.Transactions[0]
		if tx.Type != models.TransactionTypeCashIn || tx.Amount.IntPart() != 75 {
			t.Errorf("unexpected transaction: %+v", tx)
		}
		if tx.Category != models.CategoryOther || tx.CreatedBy != models.CreatedByImported || tx.Contact != "" {
			t.Errorf("expected defaults, got %+v", tx)
		}
		if !tx.Date.Equal(testutil.FixedNow) {
			t.Errorf("expected import time for empty date, got %v", tx.Date)
		}
	})

	t.Run("row level rejections", func(t *testing.T) {
		input := "type,amount,description,contact,category,date,created by\n" +
			"refund,10,Bad type,,,,\n" +
			"cash-in,-5,Negative,,,,\n" +
			"cash-in,5,,,,,\n" +
			"cash-in,5,Bad date,,,someday,\n" +
			"\n" +
			"cash-in,5,Good,,,,\n"

		got, err := newReader().Read(strings.NewReader(input))
		testutil.AssertNoError(t, err)
		if len(got.Transactions) != 1 || got.Transactions[0].Description != "Good" {
			t.Errorf("expected only Good, got %+v", got.Transactions)
		}
		if len(got.Skipped) != 4 {
			t.Errorf("expected 4 skipped rows, got %+v", got.Skipped)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		_, err := newReader().Read(strings.NewReader("type,amount,description\ncash-in,5,x\n"))
		if !errors.Is(err, ErrMissingHeaders) {
			t.Fatalf("expected ErrMissingHeaders, got %v", err)
		}
		if !strings.Contains(err.Error(), "created by") {
			t.Errorf("expected missing column names in %q", err.Error())
		}
	})

	t.Run("header only", func(t *testing.T) {
		_, err := newReader().Read(strings.NewReader("type,amount,description,contact,category,date,created by\n"))
		if !errors.Is(err, ErrEmptyCSV) {
			t.Errorf("expected ErrEmptyCSV, got %v", err)
		}
	})

	t.Run("no valid rows", func(t *testing.T) {
		input := "type,amount,description,contact,category,date,created by\ncash-in,x,y,,,,\n"
		_, err := newReader().Read(strings.NewReader(input))
		if !errors.Is(err, ErrNoValidRows) {
			t.Errorf("expected ErrNoValidRows, got %v", err)
		}
	})
}
