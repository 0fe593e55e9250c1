// Package exchange converts ledger data to and from the interchange
// formats: the full JSON backup and the per-book CSV file.
package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
)

// ErrInvalidDocument is returned when a JSON backup is unreadable or lacks
// one of its four collections.
var ErrInvalidDocument = errors.New("invalid backup file")

// Document is the JSON backup layout.
type Document struct {
	Books            []models.Book            `json:"books"`
	Transactions     []models.Transaction     `json:"transactions"`
	LoanBooks        []models.LoanBook        `json:"loanBooks"`
	LoanTransactions []models.LoanTransaction `json:"loanTransactions"`
}

var documentKeys = []string{"books", "transactions", "loanBooks", "loanTransactions"}

// NewDocument copies the persisted collections of st.
func NewDocument(st ledger.State) Document {
	return Document{
		Books:            orEmpty(st.Books),
		Transactions:     orEmpty(st.Transactions),
		LoanBooks:        orEmpty(st.LoanBooks),
		LoanTransactions: orEmpty(st.LoanTransactions),
	}
}

// State returns the document as a ledger state without a selection.
func (d Document) State() ledger.State {
	return ledger.State{
		Books:            d.Books,
		Transactions:     d.Transactions,
		LoanBooks:        d.LoanBooks,
		LoanTransactions: d.LoanTransactions,
	}
}

// EncodeJSON writes st as an indented JSON backup.
func EncodeJSON(w io.Writer, st ledger.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(st))
}

// DecodeJSON reads a JSON backup. All four collections must be present and
// not null; an empty array is fine.
func DecodeJSON(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	for _, key := range documentKeys {
		v, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return Document{}, fmt.Errorf("%w: missing %q", ErrInvalidDocument, key)
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
