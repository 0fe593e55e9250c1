// Package reminder schedules one-shot notifications for loan transactions.
//
// A task is created when a loan transaction with a reminder is added. It is
// due at the loan date plus the reminder delay, persisted through a Store,
// and fired by Run once due. Deleting the loan transaction or its loan book
// cancels the task.
package reminder

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"cashbook/internal/logger"
	"cashbook/internal/models"
)

// Title is the heading of every reminder notification.
const Title = "Loan Reminder"

// idleWait bounds how long Run sleeps when nothing is queued.
const idleWait = time.Hour

// defaultRefresh is how often Run reloads the queue from the store, so tasks
// written by another process are picked up.
const defaultRefresh = time.Minute

// Message builds the notification text for a loan transaction.
func Message(tx models.LoanTransaction) (title, body string) {
	contact := tx.Contact
	if contact == "" {
		contact = "contact"
	}
	return Title, fmt.Sprintf("Reminder for %s %s: %s", tx.Type.Phrase(), contact, tx.Description)
}

// Scheduler owns the queue of pending reminder tasks.
type Scheduler struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	log      *zap.SugaredLogger
	refresh  time.Duration

	mu    sync.Mutex
	queue taskQueue
	wake  chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRefresh sets how often Run reloads pending tasks from the store. Zero
// disables reloading.
func WithRefresh(d time.Duration) Option {
	return func(s *Scheduler) { s.refresh = d }
}

// New creates a Scheduler. A nil notifier logs reminders instead of
// delivering them.
func New(store Store, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		log:      logger.Named("reminder"),
		refresh:  defaultRefresh,
		wake:     make(chan struct{}, 1),
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues a reminder for tx. Transactions without a reminder are
// ignored.
func (s *Scheduler) Schedule(ctx context.Context, tx models.LoanTransaction) error {
	if !tx.Reminder.Enabled() {
		return nil
	}

	title, body := Message(tx)
	task := &models.ReminderTask{
		LoanTransactionID: tx.ID,
		LoanBookID:        tx.LoanBookID,
		DueAt:             tx.Date.Add(tx.Reminder.Delay()),
		Status:            models.ReminderStatusPending,
		Title:             title,
		Body:              body,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return fmt.Errorf("store reminder: %w", err)
	}

	s.mu.Lock()
	if !slices.ContainsFunc(s.queue, func(t *models.ReminderTask) bool { return t.ID == task.ID }) {
		heap.Push(&s.queue, task)
	}
	s.mu.Unlock()
	s.signal()

	s.log.Infow("reminder scheduled",
		"task_id", task.ID,
		"loan_transaction_id", tx.ID,
		"due_at", task.DueAt,
	)
	return nil
}

// Cancel drops the pending reminders of one loan transaction.
func (s *Scheduler) Cancel(ctx context.Context, loanTxID string) error {
	if err := s.store.CancelLoanTransaction(ctx, loanTxID); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	s.drop(func(t *models.ReminderTask) bool { return t.LoanTransactionID == loanTxID })
	return nil
}

// CancelBook drops the pending reminders of every transaction in a loan book.
func (s *Scheduler) CancelBook(ctx context.Context, loanBookID string) error {
	if err := s.store.CancelLoanBook(ctx, loanBookID); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	s.drop(func(t *models.ReminderTask) bool { return t.LoanBookID == loanBookID })
	return nil
}

// Restore loads the pending tasks from the store, replacing the queue.
// It returns how many tasks were loaded.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	tasks, err := s.store.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending reminders: %w", err)
	}

	q := make(taskQueue, 0, len(tasks))
	for i := range tasks {
		q = append(q, &tasks[i])
	}
	heap.Init(&q)

	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
	s.signal()
	return len(q), nil
}

// Pending returns the tasks still waiting to fire, earliest first.
func (s *Scheduler) Pending(ctx context.Context) ([]models.ReminderTask, error) {
	return s.store.Pending(ctx)
}

// Run fires due reminders until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("reminder scheduler started")

	var reload <-chan time.Time
	if s.refresh > 0 {
		ticker := time.NewTicker(s.refresh)
		defer ticker.Stop()
		reload = ticker.C
	}

	for {
		s.fireDue(ctx, s.now())

		timer := time.NewTimer(s.nextWait())
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("reminder scheduler stopped")
			return nil
		case <-s.wake:
			timer.Stop()
		case <-reload:
			timer.Stop()
			if _, err := s.Restore(ctx); err != nil {
				s.log.Errorw("failed to reload reminders", "error", err)
			}
		case <-timer.C:
		}
	}
}

// fireDue delivers every task due at or before now and returns how many
// were fired. Each task is claimed in the store before its notification is
// sent, so a task cancelled after it left the queue, here or by another
// process, is skipped. Delivery is best effort: a failed notification is
// logged and the task stays sent.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []*models.ReminderTask
	for next := s.queue.peek(); next != nil && !next.DueAt.After(now); next = s.queue.peek() {
		due = append(due, heap.Pop(&s.queue).(*models.ReminderTask))
	}
	s.mu.Unlock()

	fired := 0
	for _, task := range due {
		claimed, err := s.store.MarkSent(ctx, task.ID, now)
		if err != nil {
			s.log.Errorw("failed to mark reminder sent", "error", err, "task_id", task.ID)
			continue
		}
		if !claimed {
			s.log.Infow("skipping reminder that is no longer pending", "task_id", task.ID)
			continue
		}

		if err := s.notifier.Notify(ctx, *task); err != nil {
			s.log.Errorw("failed to deliver reminder", "error", err, "task_id", task.ID)
		} else {
			s.log.Infow("reminder fired", "task_id", task.ID, "loan_transaction_id", task.LoanTransactionID)
		}
		fired++
	}
	return fired
}

func (s *Scheduler) nextWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.queue.peek()
	if next == nil {
		return idleWait
	}
	return max(next.DueAt.Sub(s.now()), 0)
}

func (s *Scheduler) drop(match func(*models.ReminderTask) bool) {
	s.mu.Lock()
	before := len(s.queue)
	s.queue = slices.DeleteFunc(s.queue, match)
	if len(s.queue) != before {
		heap.Init(&s.queue)
	}
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
