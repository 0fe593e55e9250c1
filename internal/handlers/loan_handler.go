package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
	"cashbook/internal/services"
)

// LoanHandler handles loan book and loan transaction requests.
type LoanHandler struct {
	loanBookService        services.LoanBookServicer
	loanTransactionService services.LoanTransactionServicer
	auditService           services.AuditServicer
	location               *time.Location
}

// NewLoanHandler creates a new LoanHandler. Dates without a zone are read
// in loc.
func NewLoanHandler(
	loanBookService services.LoanBookServicer,
	loanTransactionService services.LoanTransactionServicer,
	auditService services.AuditServicer,
	loc *time.Location,
) *LoanHandler {
	return &LoanHandler{
		loanBookService:        loanBookService,
		loanTransactionService: loanTransactionService,
		auditService:           auditService,
		location:               loc,
	}
}

// LoanTransactionRequest represents the request payload for adding or
// editing a loan transaction
type LoanTransactionRequest struct {
	Type        models.LoanType `json:"type" binding:"omitempty,loan_type"`
	Amount      Amount          `json:"amount" binding:"required" swaggertype:"string" example:"1000"`
	Description string          `json:"description" binding:"required,max=500"`
	Contact     string          `json:"contact" binding:"max=200"`
	DueDate     string          `json:"dueDate" binding:"omitempty,calendar_date" example:"2024-07-01"`
	Reminder    models.Reminder `json:"reminder" binding:"omitempty,reminder"`
	Date        *string         `json:"date"`
}

func (r LoanTransactionRequest) input(loc *time.Location) (services.LoanTransactionInput, error) {
	date, err := parseOptionalTime(r.Date, loc)
	if err != nil {
		return services.LoanTransactionInput{}, err
	}
	due, err := models.ParseDate(r.DueDate)
	if err != nil {
		return services.LoanTransactionInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return services.LoanTransactionInput{
		Type:        r.Type,
		Amount:      string(r.Amount),
		Description: r.Description,
		Contact:     r.Contact,
		DueDate:     due,
		Reminder:    r.Reminder,
		Date:        date,
	}, nil
}

// CreateLoanBook handles the creation of a loan book
// @Summary     Create a loan book
// @Description Create a new, empty loan book
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       request body CreateBookRequest true "Loan book details"
// @Success     201 {object} map[string]models.LoanBook "Loan book created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /loan-books [post]
func (h *LoanHandler) CreateLoanBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	book, err := h.loanBookService.CreateLoanBook(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_LOAN_BOOK", "loan_book", book.ID, c.ClientIP(), map[string]any{"name": book.Name})

	c.JSON(http.StatusCreated, gin.H{"loan_book": book})
}

// GetLoanBooks handles listing loan books
// @Summary     List loan books
// @Description List every loan book with its totals
// @Tags        loans
// @Produce     json
// @Success     200 {object} map[string][]services.LoanBookSummary "Loan books"
// @Router      /loan-books [get]
func (h *LoanHandler) GetLoanBooks(c *gin.Context) {
	books, err := h.loanBookService.GetLoanBooks(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan_books": books})
}

// GetLoanBook handles retrieval of a single loan book
// @Summary     Get loan book
// @Tags        loans
// @Produce     json
// @Param       id path string true "Loan book ID"
// @Success     200 {object} map[string]services.LoanBookSummary "Loan book"
// @Failure     404 {object} ErrorResponse "Loan book not found"
// @Router      /loan-books/{id} [get]
func (h *LoanHandler) GetLoanBook(c *gin.Context) {
	book, err := h.loanBookService.GetLoanBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan_book": book})
}

// DeleteLoanBook handles deletion of a loan book
// @Summary     Delete loan book
// @Description Delete a loan book with all of its transactions and cancel their reminders
// @Tags        loans
// @Produce     json
// @Param       id path string true "Loan book ID"
// @Success     200 {object} MessageResponse "Loan book deleted"
// @Failure     404 {object} ErrorResponse "Loan book not found"
// @Router      /loan-books/{id} [delete]
func (h *LoanHandler) DeleteLoanBook(c *gin.Context) {
	bookID := c.Param("id")
	removed, err := h.loanBookService.DeleteLoanBook(c.Request.Context(), bookID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_LOAN_BOOK", "loan_book", bookID, c.ClientIP(), map[string]any{"transactions_removed": removed})

	c.JSON(http.StatusOK, gin.H{
		"message":              "Loan book deleted successfully",
		"transactions_removed": removed,
	})
}

// OpenLoanBook handles selecting a loan book
// @Summary     Open loan book
// @Tags        loans
// @Produce     json
// @Param       id path string true "Loan book ID"
// @Success     200 {object} map[string]models.LoanBook "Opened loan book"
// @Failure     404 {object} ErrorResponse "Loan book not found"
// @Router      /loan-books/{id}/open [post]
func (h *LoanHandler) OpenLoanBook(c *gin.Context) {
	book, err := h.loanBookService.OpenLoanBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan_book": book})
}

// AddLoanTransaction handles adding a loan transaction
// @Summary     Add a loan transaction
// @Description Record a loan given or taken; a reminder other than none is scheduled
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       id      path string                 true "Loan book ID"
// @Param       request body LoanTransactionRequest true "Loan transaction details"
// @Success     201 {object} map[string]models.LoanTransaction "Loan transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Loan book not found"
// @Router      /loan-books/{id}/transactions [post]
func (h *LoanHandler) AddLoanTransaction(c *gin.Context) {
	var req LoanTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.loanTransactionService.AddLoanTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_LOAN_TRANSACTION", "loan_transaction", tx.ID, c.ClientIP(), map[string]any{
		"loan_book_id": tx.LoanBookID,
		"type":         tx.Type,
		"amount":       tx.Amount.String(),
		"reminder":     tx.Reminder,
	})

	c.JSON(http.StatusCreated, gin.H{"loan_transaction": tx})
}

// GetLoanBookTransactions handles listing a loan book's transactions
// @Summary     List loan transactions
// @Tags        loans
// @Produce     json
// @Param       id         path  string true  "Loan book ID"
// @Param       date_range query string false "all, today, week or month"
// @Param       entry_type query string false "all, loan-given or loan-taken"
// @Param       search     query string false "Case-insensitive match on description or contact"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} services.LoanTransactionList "Loan transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Loan book not found"
// @Router      /loan-books/{id}/transactions [get]
func (h *LoanHandler) GetLoanBookTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseLoanFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.loanTransactionService.GetLoanBookTransactions(c.Request.Context(), c.Param("id"), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLoanTransactionByID handles retrieval of a single loan transaction
// @Summary     Get loan transaction
// @Tags        loans
// @Produce     json
// @Param       id path string true "Loan transaction ID"
// @Success     200 {object} map[string]models.LoanTransaction "Loan transaction"
// @Failure     404 {object} ErrorResponse "Loan transaction not found"
// @Router      /loan-transactions/{id} [get]
func (h *LoanHandler) GetLoanTransactionByID(c *gin.Context) {
	tx, err := h.loanTransactionService.GetLoanTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan_transaction": tx})
}

// UpdateLoanTransaction handles editing a loan transaction
// @Summary     Update loan transaction
// @Description Replace the editable fields of a loan transaction; the reminder is rescheduled when it or the date changes
// @Tags        loans
// @Accept      json
// @Produce     json
// @Param       id      path string                 true "Loan transaction ID"
// @Param       request body LoanTransactionRequest true "Loan transaction details"
// @Success     200 {object} map[string]models.LoanTransaction "Loan transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Loan transaction not found"
// @Router      /loan-transactions/{id} [put]
func (h *LoanHandler) UpdateLoanTransaction(c *gin.Context) {
	var req LoanTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.loanTransactionService.UpdateLoanTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_LOAN_TRANSACTION", "loan_transaction", tx.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"loan_transaction": tx})
}

// DeleteLoanTransaction handles deletion of a loan transaction
// @Summary     Delete loan transaction
// @Tags        loans
// @Produce     json
// @Param       id path string true "Loan transaction ID"
// @Success     200 {object} MessageResponse "Loan transaction deleted"
// @Failure     404 {object} ErrorResponse "Loan transaction not found"
// @Router      /loan-transactions/{id} [delete]
func (h *LoanHandler) DeleteLoanTransaction(c *gin.Context) {
	txID := c.Param("id")
	if err := h.loanTransactionService.DeleteLoanTransaction(c.Request.Context(), txID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_LOAN_TRANSACTION", "loan_transaction", txID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Loan transaction deleted successfully"})
}
