package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "cashbook/internal/errors"
	"cashbook/internal/logger"
	"cashbook/internal/models"
	"cashbook/internal/pagination"
)

// Audit sources other than an HTTP client address.
const AuditSourceCLI = "cli"

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(action, resourceType, resourceID, source string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Source:       source,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// GetActivity returns audit entries, newest first, optionally limited to one
// resource type
func (s *auditService) GetActivity(page pagination.PageRequest, resourceType string) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	scoped := func() *gorm.DB {
		q := s.db.Model(&models.AuditLog{})
		if resourceType != "" {
			q = q.Where("resource_type = ?", resourceType)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.AuditLog
	if err := scoped().Order("created_at desc, id desc").Scopes(pagination.Paginate(page, total)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &result, nil
}
