package models

import (
	"time"

	"taskhive/authz"
)

// TaskShare grants one user direct access to one task. Only the task owner
// creates and revokes shares, and a task is never shared with its own owner.
// Like TeamMember, shares hard-delete so a revoked pair can be reshared.
type TaskShare struct {
	ID               uint                  `gorm:"primaryKey" json:"id"`
	TaskID           uint                  `gorm:"not null;index;uniqueIndex:idx_task_shares_task_user" json:"task_id"`
	SharedWithUserID uint                  `gorm:"not null;index;uniqueIndex:idx_task_shares_task_user" json:"shared_with_user_id"`
	SharedByUserID   uint                  `gorm:"not null" json:"shared_by_user_id"`
	Permission       authz.SharePermission `gorm:"not null;size:10" json:"permission"`
	SharedAt         time.Time             `gorm:"autoCreateTime" json:"shared_at"`

	// Relations
	Task       Task `json:"-"`
	SharedWith User `gorm:"foreignKey:SharedWithUserID" json:"-"`
}
