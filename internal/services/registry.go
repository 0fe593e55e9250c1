package services

import (
	"time"

	"gorm.io/gorm"
)

// Registry bundles every service built on one controller. The API server and
// the CLI both start from it.
type Registry struct {
	Books            BookServicer
	Transactions     TransactionServicer
	LoanBooks        LoanBookServicer
	LoanTransactions LoanTransactionServicer
	Exchange         ExchangeServicer
	Reports          ReportServicer
	Reminders        ReminderServicer
	Audit            AuditServicer
	Location         *time.Location
}

// NewRegistry wires the services. reminders may be nil when reminders are
// disabled.
func NewRegistry(ctrl *Controller, reminders ReminderScheduler, db *gorm.DB) *Registry {
	return &Registry{
		Books:            NewBookService(ctrl),
		Transactions:     NewTransactionService(ctrl),
		LoanBooks:        NewLoanBookService(ctrl, reminders),
		LoanTransactions: NewLoanTransactionService(ctrl, reminders),
		Exchange:         NewExchangeService(ctrl, reminders),
		Reports:          NewReportService(ctrl),
		Reminders:        NewReminderService(reminders),
		Audit:            NewAuditService(db),
		Location:         ctrl.Location(),
	}
}
