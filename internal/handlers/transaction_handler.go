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

// TransactionHandler handles cash transaction requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	location           *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Dates without a
// zone are read in loc.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, loc *time.Location) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService, location: loc}
}

// TransactionRequest represents the request payload for adding or editing a
// transaction
type TransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"omitempty,cash_type"`
	Amount      Amount                 `json:"amount" binding:"required" swaggertype:"string" example:"250.50"`
	Description string                 `json:"description" binding:"required,max=500"`
	Contact     string                 `json:"contact" binding:"max=200"`
	Category    string                 `json:"category" binding:"max=100"`
	Date        *string                `json:"date"`
}

func (r TransactionRequest) input(loc *time.Location) (services.TransactionInput, error) {
	date, err := parseOptionalTime(r.Date, loc)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Type:        r.Type,
		Amount:      string(r.Amount),
		Description: r.Description,
		Contact:     r.Contact,
		Category:    r.Category,
		Date:        date,
	}, nil
}

// AddTransaction handles adding a transaction to a book
// @Summary     Add a transaction
// @Description Record a cash-in or cash-out in a book
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Book ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} map[string]models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /books/{id}/transactions [post]
func (h *TransactionHandler) AddTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.AddTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), map[string]any{
		"book_id": transaction.BookID,
		"type":    transaction.Type,
		"amount":  transaction.Amount.String(),
	})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetBookTransactions handles listing a book's transactions
// @Summary     List book transactions
// @Description Get a filtered, paginated list of a book's transactions, newest first, with totals
// @Tags        transactions
// @Produce     json
// @Param       id         path  string true  "Book ID"
// @Param       date_range query string false "all, today, week or month"
// @Param       entry_type query string false "all, cash-in or cash-out"
// @Param       search     query string false "Case-insensitive match on description, contact or category"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} services.TransactionList "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Router      /books/{id}/transactions [get]
func (h *TransactionHandler) GetBookTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseCashFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetBookTransactions(c.Request.Context(), c.Param("id"), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles retrieval of a single transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles editing a transaction
// @Summary     Update transaction
// @Description Replace the editable fields of a transaction. Omitted type, category and date keep their stored values.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} map[string]models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
