package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
)

// SlotRepository persists the ledger as four JSON slots, one per collection.
type SlotRepository struct {
	db *gorm.DB
}

// NewSlotRepository creates a SlotRepository.
func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Load reads all four slots. A missing slot is an empty collection.
func (r *SlotRepository) Load(ctx context.Context) (ledger.State, error) {
	var rows []models.Slot
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return ledger.State{}, fmt.Errorf("load slots: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	var st ledger.State
	if err := decodeSlot(values, models.SlotBooks, &st.Books); err != nil {
		return ledger.State{}, err
	}
	if err := decodeSlot(values, models.SlotTransactions, &st.Transactions); err != nil {
		return ledger.State{}, err
	}
	if err := decodeSlot(values, models.SlotLoanBooks, &st.LoanBooks); err != nil {
		return ledger.State{}, err
	}
	if err := decodeSlot(values, models.SlotLoanTransactions, &st.LoanTransactions); err != nil {
		return ledger.State{}, err
	}
	return st, nil
}

// Save overwrites the slots named in changed, all in one database
// transaction.
func (r *SlotRepository) Save(ctx context.Context, st ledger.State, changed ledger.Slots) error {
	rows, err := slotRows(st, changed)
	if err != nil || len(rows) == 0 {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertSlots(tx, rows)
	})
}

// Update reads the stored state, applies fn and writes back the slots named
// in changed, all in one database transaction that holds the write lock on
// the slots table. Another process sharing the database therefore never
// loses a write to a stale copy. Nothing is written when fn fails.
func (r *SlotRepository) Update(ctx context.Context, changed ledger.Slots, fn func(ledger.State) (ledger.State, error)) (ledger.State, error) {
	var next ledger.State
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSlots(tx); err != nil {
			return fmt.Errorf("lock slots: %w", err)
		}
		current, err := NewSlotRepository(tx).Load(ctx)
		if err != nil {
			return err
		}
		next, err = fn(current)
		if err != nil {
			return err
		}
		rows, err := slotRows(next, changed)
		if err != nil || len(rows) == 0 {
			return err
		}
		return upsertSlots(tx, rows)
	})
	if err != nil {
		return ledger.State{}, err
	}
	return next, nil
}

// lockSlots takes the write lock before the slots are read. SQLite has no
// row locks, so a no-op UPDATE upgrades the transaction to a writer.
func lockSlots(tx *gorm.DB) error {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Exec("LOCK TABLE slots IN SHARE ROW EXCLUSIVE MODE").Error
	}
	return tx.Exec("UPDATE slots SET value = value WHERE 1 = 0").Error
}

func slotRows(st ledger.State, changed ledger.Slots) ([]models.Slot, error) {
	var rows []models.Slot
	add := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode slot %s: %w", key, err)
		}
		rows = append(rows, models.Slot{Key: key, Value: string(data)})
		return nil
	}

	if changed.Has(ledger.SlotBooks) {
		if err := add(models.SlotBooks, nonNil(st.Books)); err != nil {
			return nil, err
		}
	}
	if changed.Has(ledger.SlotTransactions) {
		if err := add(models.SlotTransactions, nonNil(st.Transactions)); err != nil {
			return nil, err
		}
	}
	if changed.Has(ledger.SlotLoanBooks) {
		if err := add(models.SlotLoanBooks, nonNil(st.LoanBooks)); err != nil {
			return nil, err
		}
	}
	if changed.Has(ledger.SlotLoanTransactions) {
		if err := add(models.SlotLoanTransactions, nonNil(st.LoanTransactions)); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func upsertSlots(tx *gorm.DB, rows []models.Slot) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("save slots: %w", err)
	}
	return nil
}

// ErrCorruptSlot is returned when a stored slot is not valid JSON.
var ErrCorruptSlot = errors.New("corrupt slot")

func decodeSlot[T any](values map[string]string, key string, dst *[]T) error {
	raw, ok := values[key]
	if !ok || raw == "" {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w %s: %w", ErrCorruptSlot, key, err)
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
