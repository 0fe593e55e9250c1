package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/services"
)

// BookHandler handles cash book requests.
type BookHandler struct {
	bookService  services.BookServicer
	auditService services.AuditServicer
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService services.BookServicer, auditService services.AuditServicer) *BookHandler {
	return &BookHandler{bookService: bookService, auditService: auditService}
}

// CreateBookRequest represents the request payload for creating a book
type CreateBookRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateBook handles the creation of a new book
// @Summary     Create a book
// @Description Create a new, empty cash book
// @Tags        books
// @Accept      json
// @Produce     json
// @Param       request body CreateBookRequest true "Book details"
// @Success     201 {object} map[string]models.Book "Book created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_BOOK", "book", book.ID, c.ClientIP(), map[string]any{"name": book.Name})

	c.JSON(http.StatusCreated, gin.H{"book": book})
}

// GetBooks handles listing all books
// @Summary     List books
// @Description List every book, oldest first, with its totals and entry count
// @Tags        books
// @Produce     json
// @Success     200 {object} map[string][]services.BookSummary "Books"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /books [get]
func (h *BookHandler) GetBooks(c *gin.Context) {
	books, err := h.bookService.GetBooks(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook handles retrieval of a single book
// @Summary     Get book
// @Description Get a book with its totals
// @Tags        books
// @Produce     json
// @Param       id path string true "Book ID"
// @Success     200 {object} map[string]services.BookSummary "Book"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Router      /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.bookService.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// DeleteBook handles deletion of a book and its transactions
// @Summary     Delete book
// @Description Delete a book together with all of its transactions
// @Tags        books
// @Produce     json
// @Param       id path string true "Book ID"
// @Success     200 {object} MessageResponse "Book deleted"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID := c.Param("id")
	removed, err := h.bookService.DeleteBook(c.Request.Context(), bookID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_BOOK", "book", bookID, c.ClientIP(), map[string]any{"transactions_removed": removed})

	c.JSON(http.StatusOK, gin.H{
		"message":              "Book deleted successfully",
		"transactions_removed": removed,
	})
}

// OpenBook handles selecting a book
// @Summary     Open book
// @Description Mark a book as the currently open one
// @Tags        books
// @Produce     json
// @Param       id path string true "Book ID"
// @Success     200 {object} map[string]models.Book "Opened book"
// @Failure     404 {object} ErrorResponse "Book not found"
// @Router      /books/{id}/open [post]
func (h *BookHandler) OpenBook(c *gin.Context) {
	book, err := h.bookService.OpenBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// GetSelection handles retrieval of the open book and loan book
// @Summary     Current selection
// @Description Get the currently open book and loan book
// @Tags        books
// @Produce     json
// @Success     200 {object} services.Selection "Selection"
// @Router      /selection [get]
func (h *BookHandler) GetSelection(c *gin.Context) {
	sel, err := h.bookService.GetSelection(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sel)
}
