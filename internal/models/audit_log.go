package models

// AuditLog records every ledger mutation so the activity feed can show what
// changed and from where (HTTP client address or "cli").
type AuditLog struct {
	Base
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null;index" json:"resource_type"`
	ResourceID   string `gorm:"index" json:"resource_id"`
	Source       string `json:"source"`
	Changes      string `json:"changes,omitempty"`
}
