package models

import (
	"gorm.io/gorm"

	"taskhive/authz"
)

// Task is the unit of work. UserID is the creator and never changes;
// TeamID is optional and set at creation time only — a NULL TeamID means a
// personal task. Team deletion nulls TeamID on its tasks, which is the only
// way back to personal.
type Task struct {
	gorm.Model
	Title       string `gorm:"not null;size:255" json:"title"`
	Description string `json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	TeamID      *uint  `gorm:"index" json:"team_id"`

	// Relations
	User   User        `json:"-"`
	Team   *Team       `json:"-"`
	Shares []TaskShare `gorm:"foreignKey:TaskID" json:"shares,omitempty"`
}

// Ref reduces the task to what the access resolver needs.
func (t *Task) Ref() authz.TaskRef {
	return authz.TaskRef{ID: t.ID, OwnerID: t.UserID, TeamID: t.TeamID}
}
