package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, matching the interchange format.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType represents the direction of a cash transaction
type TransactionType string

const (
	TransactionTypeCashIn  TransactionType = "cash-in"
	TransactionTypeCashOut TransactionType = "cash-out"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCashIn || t == TransactionTypeCashOut
}

// Suggested categories. Any other non-empty text is accepted as well.
const (
	CategoryCash    = "Cash"
	CategoryBank    = "Bank"
	CategoryDigital = "Digital"
	CategoryOther   = "Other"
)

// Categories lists the suggested categories in display order.
var Categories = []string{CategoryCash, CategoryBank, CategoryDigital, CategoryOther}

// Default authors for new records.
const (
	CreatedByUser     = "User"
	CreatedByImported = "Imported"
)

// Transaction is a single cash-in or cash-out entry in a Book.
type Transaction struct {
	ID          string          `json:"id"`
	BookID      string          `json:"bookId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Contact     string          `json:"contact"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"createdBy"`
}

// UnmarshalJSON accepts numeric ids as written by older exports.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		ID     flexID `json:"id"`
		BookID flexID `json:"bookId"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID, t.BookID = string(aux.ID), string(aux.BookID)
	return nil
}
