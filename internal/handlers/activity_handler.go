package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/pagination"
	"cashbook/internal/services"
)

// ActivityHandler handles the audit feed and the reminder queue.
type ActivityHandler struct {
	auditService    services.AuditServicer
	reminderService services.ReminderServicer
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(auditService services.AuditServicer, reminderService services.ReminderServicer) *ActivityHandler {
	return &ActivityHandler{auditService: auditService, reminderService: reminderService}
}

// GetActivity handles listing recent changes
// @Summary     Activity feed
// @Description Paginated audit log, newest first
// @Tags        activity
// @Produce     json
// @Param       resource_type query string false "book, transaction, loan_book, loan_transaction or backup"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Activity"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /activity [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.auditService.GetActivity(page, c.Query("resource_type"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReminders handles listing pending reminders
// @Summary     Pending reminders
// @Description Reminder tasks that have not fired yet, earliest first
// @Tags        activity
// @Produce     json
// @Success     200 {object} map[string][]models.ReminderTask "Reminders"
// @Router      /reminders [get]
func (h *ActivityHandler) GetReminders(c *gin.Context) {
	tasks, err := h.reminderService.PendingReminders(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": tasks})
}
