package models

import "time"

// ReminderStatus is the lifecycle state of a ReminderTask
type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// ReminderTask is a one-shot notification scheduled for a loan transaction.
type ReminderTask struct {
	Base
	LoanTransactionID string         `gorm:"not null;index" json:"loan_transaction_id"`
	LoanBookID        string         `gorm:"not null;index" json:"loan_book_id"`
	DueAt             time.Time      `gorm:"not null;index" json:"due_at"`
	Status            ReminderStatus `gorm:"not null;default:pending" json:"status"`
	Title             string         `gorm:"not null" json:"title"`
	Body              string         `gorm:"not null" json:"body"`
	SentAt            *time.Time     `json:"sent_at,omitempty"`
}
