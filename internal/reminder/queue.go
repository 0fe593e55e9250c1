package reminder

import "cashbook/internal/models"

// taskQueue is a min-heap of pending tasks ordered by due time.
type taskQueue []*models.ReminderTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].DueAt.Equal(q[j].DueAt) {
		return q[i].ID < q[j].ID
	}
	return q[i].DueAt.Before(q[j].DueAt)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*models.ReminderTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return task
}

func (q taskQueue) peek() *models.ReminderTask {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
