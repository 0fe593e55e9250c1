package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
	"cashbook/internal/services"
	"cashbook/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// doRequest sends a JSON request (or no body when body is nil) to r.
func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// doRaw sends data as the request body with the given content type.
func doRaw(r *gin.Engine, method, path, contentType string, data []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode string) {
	t.Helper()
	body := parseJSON(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %v", body)
	}
	if code, _ := errObj["code"].(string); code != wantCode {
		t.Errorf("expected error code %q, got %q", wantCode, code)
	}
}

var testNow = time.Date(2024, 6, 10, 11, 30, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// mockAuditService
// ---------------------------------------------------------------------------

type auditEntry struct {
	Action       string
	ResourceType string
	ResourceID   string
	Source       string
	Changes      map[string]any
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry

	getActivityFn func(page pagination.PageRequest, resourceType string) (*pagination.PageResponse[models.AuditLog], error)
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Log(action, resourceType, resourceID, source string, changes map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{action, resourceType, resourceID, source, changes})
}

func (m *mockAuditService) GetActivity(page pagination.PageRequest, resourceType string) (*pagination.PageResponse[models.AuditLog], error) {
	if m.getActivityFn != nil {
		return m.getActivityFn(page, resourceType)
	}
	resp := pagination.NewPageResponse[models.AuditLog](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

func assertAudited(t *testing.T, audit *mockAuditService, want ...string) {
	t.Helper()
	got := audit.actions()
	if len(got) != len(want) {
		t.Fatalf("expected audit actions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected audit actions %v, got %v", want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// mockBookService
// ---------------------------------------------------------------------------

type mockBookService struct {
	createBookFn   func(ctx context.Context, name string) (*models.Book, error)
	getBooksFn     func(ctx context.Context) ([]services.BookSummary, error)
	getBookFn      func(ctx context.Context, bookID string) (*services.BookSummary, error)
	deleteBookFn   func(ctx context.Context, bookID string) (int, error)
	openBookFn     func(ctx context.Context, bookID string) (*models.Book, error)
	getSelectionFn func(ctx context.Context) (*services.Selection, error)
}

var _ services.BookServicer = (*mockBookService)(nil)

func (m *mockBookService) CreateBook(ctx context.Context, name string) (*models.Book, error) {
	return m.createBookFn(ctx, name)
}

func (m *mockBookService) GetBooks(ctx context.Context) ([]services.BookSummary, error) {
	return m.getBooksFn(ctx)
}

func (m *mockBookService) GetBook(ctx context.Context, bookID string) (*services.BookSummary, error) {
	return m.getBookFn(ctx, bookID)
}

func (m *mockBookService) DeleteBook(ctx context.Context, bookID string) (int, error) {
	return m.deleteBookFn(ctx, bookID)
}

func (m *mockBookService) OpenBook(ctx context.Context, bookID string) (*models.Book, error) {
	return m.openBookFn(ctx, bookID)
}

func (m *mockBookService) GetSelection(ctx context.Context) (*services.Selection, error) {
	return m.getSelectionFn(ctx)
}

// ---------------------------------------------------------------------------
// mockTransactionService
// ---------------------------------------------------------------------------

type mockTransactionService struct {
	addTransactionFn      func(ctx context.Context, bookID string, in services.TransactionInput) (*models.Transaction, error)
	getBookTransactionsFn func(ctx context.Context, bookID string, filter ledger.Filter, page pagination.PageRequest) (*services.TransactionList, error)
	getTransactionByIDFn  func(ctx context.Context, id string) (*models.Transaction, error)
	updateTransactionFn   func(ctx context.Context, id string, in services.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn   func(ctx context.Context, id string) error
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func (m *mockTransactionService) AddTransaction(ctx context.Context, bookID string, in services.TransactionInput) (*models.Transaction, error) {
	return m.addTransactionFn(ctx, bookID, in)
}

func (m *mockTransactionService) GetBookTransactions(ctx context.Context, bookID string, filter ledger.Filter, page pagination.PageRequest) (*services.TransactionList, error) {
	return m.getBookTransactionsFn(ctx, bookID, filter, page)
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	return m.getTransactionByIDFn(ctx, id)
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, id string, in services.TransactionInput) (*models.Transaction, error) {
	return m.updateTransactionFn(ctx, id, in)
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, id string) error {
	return m.deleteTransactionFn(ctx, id)
}

// ---------------------------------------------------------------------------
// mockLoanBookService / mockLoanTransactionService
// ---------------------------------------------------------------------------

type mockLoanBookService struct {
	createLoanBookFn func(ctx context.Context, name string) (*models.LoanBook, error)
	getLoanBooksFn   func(ctx context.Context) ([]services.LoanBookSummary, error)
	getLoanBookFn    func(ctx context.Context, id string) (*services.LoanBookSummary, error)
	deleteLoanBookFn func(ctx context.Context, id string) (int, error)
	openLoanBookFn   func(ctx context.Context, id string) (*models.LoanBook, error)
}

var _ services.LoanBookServicer = (*mockLoanBookService)(nil)

func (m *mockLoanBookService) CreateLoanBook(ctx context.Context, name string) (*models.LoanBook, error) {
	return m.createLoanBookFn(ctx, name)
}

func (m *mockLoanBookService) GetLoanBooks(ctx context.Context) ([]services.LoanBookSummary, error) {
	return m.getLoanBooksFn(ctx)
}

func (m *mockLoanBookService) GetLoanBook(ctx context.Context, id string) (*services.LoanBookSummary, error) {
	return m.getLoanBookFn(ctx, id)
}

func (m *mockLoanBookService) DeleteLoanBook(ctx context.Context, id string) (int, error) {
	return m.deleteLoanBookFn(ctx, id)
}

func (m *mockLoanBookService) OpenLoanBook(ctx context.Context, id string) (*models.LoanBook, error) {
	return m.openLoanBookFn(ctx, id)
}

type mockLoanTransactionService struct {
	addFn    func(ctx context.Context, loanBookID string, in services.LoanTransactionInput) (*models.LoanTransaction, error)
	listFn   func(ctx context.Context, loanBookID string, filter ledger.Filter, page pagination.PageRequest) (*services.LoanTransactionList, error)
	getFn    func(ctx context.Context, id string) (*models.LoanTransaction, error)
	updateFn func(ctx context.Context, id string, in services.LoanTransactionInput) (*models.LoanTransaction, error)
	deleteFn func(ctx context.Context, id string) error
}

var _ services.LoanTransactionServicer = (*mockLoanTransactionService)(nil)

func (m *mockLoanTransactionService) AddLoanTransaction(ctx context.Context, loanBookID string, in services.LoanTransactionInput) (*models.LoanTransaction, error) {
	return m.addFn(ctx, loanBookID, in)
}

func (m *mockLoanTransactionService) GetLoanBookTransactions(ctx context.Context, loanBookID string, filter ledger.Filter, page pagination.PageRequest) (*services.LoanTransactionList, error) {
	return m.listFn(ctx, loanBookID, filter, page)
}

func (m *mockLoanTransactionService) GetLoanTransactionByID(ctx context.Context, id string) (*models.LoanTransaction, error) {
	return m.getFn(ctx, id)
}

func (m *mockLoanTransactionService) UpdateLoanTransaction(ctx context.Context, id string, in services.LoanTransactionInput) (*models.LoanTransaction, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockLoanTransactionService) DeleteLoanTransaction(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// ---------------------------------------------------------------------------
// mockExchangeService / mockReportService / mockReminderService
// ---------------------------------------------------------------------------

type mockExchangeService struct {
	exportJSONFn func(ctx context.Context) (*services.ExportFile, error)
	importJSONFn func(ctx context.Context, data []byte) (*services.ImportSummary, error)
	exportCSVFn  func(ctx context.Context, bookID string) (*services.ExportFile, error)
	importCSVFn  func(ctx context.Context, bookID string, data []byte) (*services.ImportSummary, error)
}

var _ services.ExchangeServicer = (*mockExchangeService)(nil)

func (m *mockExchangeService) ExportJSON(ctx context.Context) (*services.ExportFile, error) {
	return m.exportJSONFn(ctx)
}

func (m *mockExchangeService) ImportJSON(ctx context.Context, data []byte) (*services.ImportSummary, error) {
	return m.importJSONFn(ctx, data)
}

func (m *mockExchangeService) ExportCSV(ctx context.Context, bookID string) (*services.ExportFile, error) {
	return m.exportCSVFn(ctx, bookID)
}

func (m *mockExchangeService) ImportCSV(ctx context.Context, bookID string, data []byte) (*services.ImportSummary, error) {
	return m.importCSVFn(ctx, bookID, data)
}

type mockReportService struct {
	generateFn func(ctx context.Context, bookID string, filter ledger.Filter) (*services.ExportFile, error)
}

var _ services.ReportServicer = (*mockReportService)(nil)

func (m *mockReportService) GenerateReport(ctx context.Context, bookID string, filter ledger.Filter) (*services.ExportFile, error) {
	return m.generateFn(ctx, bookID, filter)
}

type mockReminderService struct {
	pendingFn func(ctx context.Context) ([]models.ReminderTask, error)
}

var _ services.ReminderServicer = (*mockReminderService)(nil)

func (m *mockReminderService) PendingReminders(ctx context.Context) ([]models.ReminderTask, error) {
	return m.pendingFn(ctx)
}
