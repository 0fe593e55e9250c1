package services

import (
	"context"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/models"
)

// reminderService exposes the pending reminder queue.
type reminderService struct {
	reminders ReminderScheduler
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(reminders ReminderScheduler) ReminderServicer {
	if reminders == nil {
		reminders = noopScheduler{}
	}
	return &reminderService{reminders: reminders}
}

func (s *reminderService) PendingReminders(ctx context.Context) ([]models.ReminderTask, error) {
	tasks, err := s.reminders.Pending(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if tasks == nil {
		tasks = []models.ReminderTask{}
	}
	return tasks, nil
}
