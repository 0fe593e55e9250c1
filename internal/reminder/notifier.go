package reminder

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"cashbook/internal/logger"
	"cashbook/internal/models"
)

// Notifier delivers a fired reminder somewhere a person will see it.
type Notifier interface {
	Notify(ctx context.Context, task models.ReminderTask) error
}

// LogNotifier writes reminders to the application log.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier creates a LogNotifier on the "reminder" logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Named("reminder")}
}

func (n *LogNotifier) Notify(_ context.Context, task models.ReminderTask) error {
	n.log.Infow(task.Title, "body", task.Body, "loan_transaction_id", task.LoanTransactionID, "due_at", task.DueAt)
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, task models.ReminderTask) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, task); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
