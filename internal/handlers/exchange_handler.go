package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashbook/internal/services"
)

// ExchangeHandler handles backups, CSV files and PDF reports.
type ExchangeHandler struct {
	exchangeService services.ExchangeServicer
	reportService   services.ReportServicer
	auditService    services.AuditServicer
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchangeService services.ExchangeServicer, reportService services.ReportServicer, auditService services.AuditServicer) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService, reportService: reportService, auditService: auditService}
}

// ExportJSON handles downloading a full backup
// @Summary     Export backup
// @Description Download all books, transactions, loan books and loan transactions as JSON
// @Tags        exchange
// @Produce     json
// @Success     200 {file} file "cashbook_data.json"
// @Router      /export [get]
func (h *ExchangeHandler) ExportJSON(c *gin.Context) {
	file, err := h.exchangeService.ExportJSON(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	sendFile(c, file)
}

// ImportJSON handles restoring a backup
// @Summary     Import backup
// @Description Replace all data with a JSON backup. The body is the file itself or a multipart "file" field.
// @Tags        exchange
// @Accept      json
// @Produce     json
// @Success     200 {object} services.ImportSummary "Imported"
// @Failure     400 {object} ErrorResponse "Invalid backup"
// @Router      /import [post]
func (h *ExchangeHandler) ImportJSON(c *gin.Context) {
	data, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.exchangeService.ImportJSON(c.Request.Context(), data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("IMPORT_JSON", "backup", "", c.ClientIP(), map[string]any{
		"books":             summary.Books,
		"transactions":      summary.Transactions,
		"loan_books":        summary.LoanBooks,
		"loan_transactions": summary.LoanTransactions,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Data imported successfully", "summary": summary})
}

// ExportCSV handles downloading a book as CSV
// @Summary     Export book as CSV
// @Tags        exchange
// @Produce     text/csv
// @Param       id path string true "Book ID"
// @Success     200 {file} file "CSV file"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Failure     422 {object} ErrorResponse "Nothing to export"
// @Router      /books/{id}/export.csv [get]
func (h *ExchangeHandler) ExportCSV(c *gin.Context) {
	file, err := h.exchangeService.ExportCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	sendFile(c, file)
}

// ImportCSV handles importing transactions from CSV into a book
// @Summary     Import CSV into a book
// @Description Append the valid rows of a CSV file to a book. Invalid rows are skipped and listed.
// @Tags        exchange
// @Accept      text/csv
// @Produce     json
// @Param       id path string true "Book ID"
// @Success     200 {object} services.ImportSummary "Imported"
// @Failure     400 {object} ErrorResponse "Invalid file"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Router      /books/{id}/transactions/import [post]
func (h *ExchangeHandler) ImportCSV(c *gin.Context) {
	data, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bookID := c.Param("id")
	summary, err := h.exchangeService.ImportCSV(c.Request.Context(), bookID, data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("IMPORT_CSV", "book", bookID, c.ClientIP(), map[string]any{
		"imported": summary.Transactions,
		"skipped":  len(summary.Skipped),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Transactions imported successfully", "summary": summary})
}

// GetReport handles downloading a PDF report of a book
// @Summary     Book report
// @Description Download a PDF statement of a book. When a filter is given only matching entries are listed.
// @Tags        exchange
// @Produce     application/pdf
// @Param       id         path  string true  "Book ID"
// @Param       date_range query string false "all, today, week or month"
// @Param       entry_type query string false "all, cash-in or cash-out"
// @Param       search     query string false "Search term"
// @Success     200 {file} file "PDF report"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Failure     500 {object} ErrorResponse "Report failed"
// @Router      /books/{id}/report.pdf [get]
func (h *ExchangeHandler) GetReport(c *gin.Context) {
	filter, err := parseCashFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := h.reportService.GenerateReport(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sendFile(c, file)
}
