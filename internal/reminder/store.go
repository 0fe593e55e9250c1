package reminder

import (
	"context"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"cashbook/internal/models"
	"cashbook/internal/uuid"
)

// Store persists reminder tasks so that pending ones survive a restart.
type Store interface {
	Create(ctx context.Context, task *models.ReminderTask) error
	Pending(ctx context.Context) ([]models.ReminderTask, error)
	CancelLoanTransaction(ctx context.Context, loanTxID string) error
	CancelLoanBook(ctx context.Context, loanBookID string) error
	// MarkSent moves a pending task to sent and reports whether it did. A
	// task that is no longer pending, for example because it was cancelled,
	// is left alone and reported as false.
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
}

// GormStore keeps tasks in the reminder_tasks table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, task *models.ReminderTask) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *GormStore) Pending(ctx context.Context) ([]models.ReminderTask, error) {
	var tasks []models.ReminderTask
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ReminderStatusPending).
		Order("due_at asc").
		Find(&tasks).Error
	return tasks, err
}

func (s *GormStore) CancelLoanTransaction(ctx context.Context, loanTxID string) error {
	return s.cancelWhere(ctx, "loan_transaction_id = ?", loanTxID)
}

func (s *GormStore) CancelLoanBook(ctx context.Context, loanBookID string) error {
	return s.cancelWhere(ctx, "loan_book_id = ?", loanBookID)
}

func (s *GormStore) cancelWhere(ctx context.Context, query string, arg string) error {
	return s.db.WithContext(ctx).
		Model(&models.ReminderTask{}).
		Where(query, arg).
		Where("status = ?", models.ReminderStatusPending).
		Update("status", models.ReminderStatusCancelled).Error
}

func (s *GormStore) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.ReminderTask{}).
		Where("id = ?", id).
		Where("status = ?", models.ReminderStatusPending).
		Updates(map[string]any{"status": models.ReminderStatusSent, "sent_at": at})
	return result.RowsAffected > 0, result.Error
}

// MemoryStore is a Store for the CLI and tests, where reminders do not need
// to outlive the process.
type MemoryStore struct {
	mu    sync.Mutex
	tasks []models.ReminderTask
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, task *models.ReminderTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = models.ReminderStatusPending
	}
	s.tasks = append(s.tasks, *task)
	return nil
}

func (s *MemoryStore) Pending(context.Context) ([]models.ReminderTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReminderTask
	for _, t := range s.tasks {
		if t.Status == models.ReminderStatusPending {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.ReminderTask) int { return a.DueAt.Compare(b.DueAt) })
	return out, nil
}

func (s *MemoryStore) CancelLoanTransaction(_ context.Context, loanTxID string) error {
	s.update(func(t *models.ReminderTask) bool { return t.LoanTransactionID == loanTxID }, func(t *models.ReminderTask) {
		t.Status = models.ReminderStatusCancelled
	})
	return nil
}

func (s *MemoryStore) CancelLoanBook(_ context.Context, loanBookID string) error {
	s.update(func(t *models.ReminderTask) bool { return t.LoanBookID == loanBookID }, func(t *models.ReminderTask) {
		t.Status = models.ReminderStatusCancelled
	})
	return nil
}

func (s *MemoryStore) MarkSent(_ context.Context, id string, at time.Time) (bool, error) {
	n := s.update(func(t *models.ReminderTask) bool { return t.ID == id }, func(t *models.ReminderTask) {
		t.Status = models.ReminderStatusSent
		t.SentAt = &at
	})
	return n > 0, nil
}

// All returns every task regardless of status.
func (s *MemoryStore) All() []models.ReminderTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// update applies fn to every pending task that matches and returns how many
// it changed.
func (s *MemoryStore) update(match func(*models.ReminderTask) bool, apply func(*models.ReminderTask)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Status == models.ReminderStatusPending && match(t) {
			apply(t)
			n++
		}
	}
	return n
}
