package models

import "time"

// Persisted slot keys. Each holds one whole collection as a JSON array.
const (
	SlotBooks            = "cashbook-books"
	SlotTransactions     = "cashbook-transactions"
	SlotLoanBooks        = "cashbook-loan-books"
	SlotLoanTransactions = "cashbook-loan-transactions"
)

// Slot is a single key/value entry of the local store.
type Slot struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
