package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/exchange"
	"cashbook/internal/ledger"
	"cashbook/internal/services"
)

func setupExchangeRouter(ex *mockExchangeService, rep *mockReportService, audit *mockAuditService) *gin.Engine {
	h := NewExchangeHandler(ex, rep, audit)
	r := gin.New()
	r.GET("/export", h.ExportJSON)
	r.POST("/import", h.ImportJSON)
	r.GET("/books/:id/export.csv", h.ExportCSV)
	r.POST("/books/:id/transactions/import", h.ImportCSV)
	r.GET("/books/:id/report.pdf", h.GetReport)
	return r
}

func TestExportJSON(t *testing.T) {
	ex := &mockExchangeService{exportJSONFn: func(context.Context) (*services.ExportFile, error) {
		return &services.ExportFile{Filename: "cashbook_data.json", ContentType: "application/json", Data: []byte(`{"books":[]}`)}, nil
	}}
	rec := doRequest(setupExchangeRouter(ex, nil, &mockAuditService{}), http.MethodGet, "/export", nil)

	assertStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="cashbook_data.json"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("unexpected Content-Type %q", got)
	}
	if rec.Body.String() != `{"books":[]}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestImportJSON(t *testing.T) {
	payload := []byte(`{"books":[],"transactions":[],"loanBooks":[],"loanTransactions":[]}`)

	newService := func(got *[]byte) *mockExchangeService {
		return &mockExchangeService{importJSONFn: func(_ context.Context, data []byte) (*services.ImportSummary, error) {
			*got = data
			return &services.ImportSummary{Books: 1}, nil
		}}
	}

	t.Run("raw_body", func(t *testing.T) {
		var got []byte
		audit := &mockAuditService{}
		rec := doRaw(setupExchangeRouter(newService(&got), nil, audit), http.MethodPost, "/import", "application/json", payload)

		assertStatus(t, rec, http.StatusOK)
		if !bytes.Equal(got, payload) {
			t.Errorf("service received %q", got)
		}
		summary, ok := parseJSON(t, rec)["summary"].(map[string]interface{})
		if !ok || summary["books"] != float64(1) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		assertAudited(t, audit, "IMPORT_JSON")
	})

	t.Run("multipart_file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "cashbook_data.json")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(payload)
		mw.Close()

		var got []byte
		rec := doRaw(setupExchangeRouter(newService(&got), nil, &mockAuditService{}), http.MethodPost, "/import", mw.FormDataContentType(), buf.Bytes())
		assertStatus(t, rec, http.StatusOK)
		if !bytes.Equal(got, payload) {
			t.Errorf("service received %q", got)
		}
	})

	t.Run("empty_body", func(t *testing.T) {
		var got []byte
		rec := doRaw(setupExchangeRouter(newService(&got), nil, &mockAuditService{}), http.MethodPost, "/import", "application/json", nil)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, rec, "INVALID_INPUT")
	})

	t.Run("invalid_document", func(t *testing.T) {
		ex := &mockExchangeService{importJSONFn: func(context.Context, []byte) (*services.ImportSummary, error) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidImport, exchange.ErrInvalidDocument)
		}}
		audit := &mockAuditService{}
		rec := doRaw(setupExchangeRouter(ex, nil, audit), http.MethodPost, "/import", "application/json", []byte(`{}`))
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, rec, "INVALID_IMPORT")
		assertAudited(t, audit)
	})
}

func TestExportCSV(t *testing.T) {
	ex := &mockExchangeService{exportCSVFn: func(_ context.Context, bookID string) (*services.ExportFile, error) {
		if bookID == "empty" {
			return nil, apperrors.ErrNothingToExport
		}
		return &services.ExportFile{Filename: "Shop_transactions.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("\"ID\"\n")}, nil
	}}
	r := setupExchangeRouter(ex, nil, &mockAuditService{})

	rec := doRequest(r, http.MethodGet, "/books/b1/export.csv", nil)
	assertStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Shop_transactions.csv"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}

	rec = doRequest(r, http.MethodGet, "/books/empty/export.csv", nil)
	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assertErrorCode(t, rec, "NOTHING_TO_EXPORT")
}

func TestImportCSV(t *testing.T) {
	var gotBook string
	ex := &mockExchangeService{importCSVFn: func(_ context.Context, bookID string, data []byte) (*services.ImportSummary, error) {
		gotBook = bookID
		return &services.ImportSummary{
			Transactions: 2,
			Skipped:      []exchange.SkippedRow{{Line: 4, Reason: "amount is required"}},
		}, nil
	}}
	audit := &mockAuditService{}
	rec := doRaw(setupExchangeRouter(ex, nil, audit), http.MethodPost, "/books/b1/transactions/import", "text/csv", []byte("Type,Amount\n"))

	assertStatus(t, rec, http.StatusOK)
	if gotBook != "b1" {
		t.Errorf("expected book b1, got %q", gotBook)
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if skipped, ok := summary["skipped"].([]interface{}); !ok || len(skipped) != 1 {
		t.Errorf("expected one skipped row, got %v", summary["skipped"])
	}
	assertAudited(t, audit, "IMPORT_CSV")
	if audit.entries[0].Changes["skipped"] != 1 {
		t.Errorf("expected skipped count in audit, got %v", audit.entries[0].Changes)
	}
}

func TestGetReport(t *testing.T) {
	var gotFilter ledger.Filter
	rep := &mockReportService{generateFn: func(_ context.Context, bookID string, filter ledger.Filter) (*services.ExportFile, error) {
		gotFilter = filter
		if bookID != "b1" {
			return nil, apperrors.ErrBookNotFound
		}
		return &services.ExportFile{Filename: "Shop_Report_2024-06-10.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
	}}
	r := setupExchangeRouter(&mockExchangeService{}, rep, &mockAuditService{})

	rec := doRequest(r, http.MethodGet, "/books/b1/report.pdf?entry_type=cash-out", nil)
	assertStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("unexpected Content-Type %q", got)
	}
	if gotFilter.EntryType != "cash-out" {
		t.Errorf("expected cash-out filter, got %+v", gotFilter)
	}

	rec = doRequest(r, http.MethodGet, "/books/nope/report.pdf", nil)
	assertStatus(t, rec, http.StatusNotFound)

	rec = doRequest(r, http.MethodGet, "/books/b1/report.pdf?date_range=decade", nil)
	assertStatus(t, rec, http.StatusBadRequest)
}
