package ledger

// Slots is a set of persisted collections, used to tell the store which
// collections an operation replaced.
type Slots uint8

const (
	SlotBooks Slots = 1 << iota
	SlotTransactions
	SlotLoanBooks
	SlotLoanTransactions

	AllSlots = SlotBooks | SlotTransactions | SlotLoanBooks | SlotLoanTransactions
)

// Has reports whether every slot in o is part of s.
func (s Slots) Has(o Slots) bool {
	return s&o == o
}
