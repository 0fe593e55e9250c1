package models

import (
	"encoding/json"
	"time"
)

// Book is a named cash ledger.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts numeric ids as written by older exports.
func (b *Book) UnmarshalJSON(data []byte) error {
	type alias Book
	aux := struct {
		*alias
		ID flexID `json:"id"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.ID = string(aux.ID)
	return nil
}

// LoanBook is a named ledger of money lent and borrowed.
type LoanBook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts numeric ids as written by older exports.
func (b *LoanBook) UnmarshalJSON(data []byte) error {
	type alias LoanBook
	aux := struct {
		*alias
		ID flexID `json:"id"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.ID = string(aux.ID)
	return nil
}
