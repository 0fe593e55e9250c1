package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cashbook/internal/ledger"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/uuid"
)

// Controller owns the single ledger state. Mutations are serialized: the
// next state is computed, the changed slots are persisted, and only then is
// the new state swapped in. A failed save leaves the old state in place.
type Controller struct {
	store     StateStore
	now       func() time.Time
	newID     uuid.Generator
	location  *time.Location
	createdBy string

	mu    sync.RWMutex
	state ledger.State
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(gen uuid.Generator) ControllerOption {
	return func(c *Controller) { c.newID = gen }
}

// WithLocation sets the timezone used for date filters, CSV and reports.
func WithLocation(loc *time.Location) ControllerOption {
	return func(c *Controller) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithCreatedBy sets the author recorded on new entries.
func WithCreatedBy(name string) ControllerOption {
	return func(c *Controller) {
		if name != "" {
			c.createdBy = name
		}
	}
}

// NewController loads the persisted state and returns a controller for it.
func NewController(ctx context.Context, store StateStore, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		store:     store,
		now:       time.Now,
		newID:     uuid.NewAt,
		location:  time.Local,
		createdBy: models.CreatedByUser,
	}
	for _, opt := range opts {
		opt(c)
	}

	st, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if err := ledger.Validate(st); err != nil {
		logger.Get().Warnw("persisted ledger is inconsistent", "error", err)
	}
	c.state = st

	logger.Get().Infow("ledger loaded",
		"books", len(st.Books),
		"transactions", len(st.Transactions),
		"loan_books", len(st.LoanBooks),
		"loan_transactions", len(st.LoanTransactions),
	)
	return c, nil
}

// Snapshot returns the current state. The returned value is never modified.
func (c *Controller) Snapshot() ledger.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Now returns the current time in the configured location.
func (c *Controller) Now() time.Time {
	return c.now().In(c.location)
}

// Location returns the configured timezone.
func (c *Controller) Location() *time.Location {
	return c.location
}

// NewID returns a fresh record id.
func (c *Controller) NewID() string {
	return c.newID(c.now())
}

// CreatedBy returns the author recorded on new entries.
func (c *Controller) CreatedBy() string {
	return c.createdBy
}

// Update applies fn to the stored state and persists the slots it changed.
// The state is re-read from the store first, so writes made by another
// process since the last update are kept. When fn or the save fails the
// state is left as it was.
func (c *Controller) Update(ctx context.Context, changed ledger.Slots, fn func(ledger.State) (ledger.State, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if changed == 0 {
		current, err := c.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		next, err := fn(c.withSelection(current))
		if err != nil {
			return err
		}
		c.state = next
		return nil
	}

	var applyErr error
	next, err := c.store.Update(ctx, changed, func(current ledger.State) (ledger.State, error) {
		next, err := fn(c.withSelection(current))
		applyErr = err
		return next, err
	})
	if applyErr != nil {
		return applyErr
	}
	if err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	c.state = next
	return nil
}

// withSelection carries the in-memory selection over to a freshly loaded
// state, dropping it when the selected book no longer exists.
func (c *Controller) withSelection(st ledger.State) ledger.State {
	if _, ok := st.Book(c.state.SelectedBookID); ok {
		st.SelectedBookID = c.state.SelectedBookID
	}
	if _, ok := st.LoanBook(c.state.SelectedLoanBookID); ok {
		st.SelectedLoanBookID = c.state.SelectedLoanBookID
	}
	return st
}
