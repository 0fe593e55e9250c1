// Package router builds the HTTP API on top of a services.Registry.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cashbook/internal/docs" // Import swagger docs
	"cashbook/internal/handlers"
	"cashbook/internal/middleware"
	"cashbook/internal/services"
	"cashbook/internal/validator"
)

// New returns a Gin engine serving the API under /api/v1.
func New(reg *services.Registry) *gin.Engine {
	validator.Register()

	bookHandler := handlers.NewBookHandler(reg.Books, reg.Audit)
	transactionHandler := handlers.NewTransactionHandler(reg.Transactions, reg.Audit, reg.Location)
	loanHandler := handlers.NewLoanHandler(reg.LoanBooks, reg.LoanTransactions, reg.Audit, reg.Location)
	exchangeHandler := handlers.NewExchangeHandler(reg.Exchange, reg.Reports, reg.Audit)
	activityHandler := handlers.NewActivityHandler(reg.Audit, reg.Reminders)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.NoRoute(middleware.NotFound())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Book routes
	books := v1.Group("/books")
	books.POST("", bookHandler.CreateBook)
	books.GET("", bookHandler.GetBooks)
	books.GET("/:id", bookHandler.GetBook)
	books.DELETE("/:id", bookHandler.DeleteBook)
	books.POST("/:id/open", bookHandler.OpenBook)
	books.GET("/:id/transactions", transactionHandler.GetBookTransactions)
	books.POST("/:id/transactions", transactionHandler.AddTransaction)
	books.POST("/:id/transactions/import", exchangeHandler.ImportCSV)
	books.GET("/:id/export.csv", exchangeHandler.ExportCSV)
	books.GET("/:id/report.pdf", exchangeHandler.GetReport)
	v1.GET("/selection", bookHandler.GetSelection)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Loan book routes
	loanBooks := v1.Group("/loan-books")
	loanBooks.POST("", loanHandler.CreateLoanBook)
	loanBooks.GET("", loanHandler.GetLoanBooks)
	loanBooks.GET("/:id", loanHandler.GetLoanBook)
	loanBooks.DELETE("/:id", loanHandler.DeleteLoanBook)
	loanBooks.POST("/:id/open", loanHandler.OpenLoanBook)
	loanBooks.GET("/:id/transactions", loanHandler.GetLoanBookTransactions)
	loanBooks.POST("/:id/transactions", loanHandler.AddLoanTransaction)

	// Loan transaction routes
	loanTransactions := v1.Group("/loan-transactions")
	loanTransactions.GET("/:id", loanHandler.GetLoanTransactionByID)
	loanTransactions.PUT("/:id", loanHandler.UpdateLoanTransaction)
	loanTransactions.DELETE("/:id", loanHandler.DeleteLoanTransaction)

	// Backup, activity and reminders
	v1.GET("/export", exchangeHandler.ExportJSON)
	v1.POST("/import", exchangeHandler.ImportJSON)
	v1.GET("/activity", activityHandler.GetActivity)
	v1.GET("/reminders", activityHandler.GetReminders)

	return router
}
