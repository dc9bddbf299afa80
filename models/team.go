package models

import (
	"time"

	"gorm.io/gorm"

	"taskhive/authz"
)

// Team represents a collaboration group. OwnerID is denormalized from the
// unique owner-role membership row; every ownership transfer updates both in
// the same transaction so they never drift.
type Team struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Tasks   []Task       `gorm:"foreignKey:TeamID" json:"tasks,omitempty"`
}

// TeamMember is a user's role in a team. A user holds at most one role per
// team; exactly one member holds the owner role at all times. No soft delete:
// removed members must be re-invitable without tripping the unique index.
type TeamMember struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	TeamID   uint       `gorm:"not null;index;uniqueIndex:idx_team_members_team_user" json:"team_id"`
	UserID   uint       `gorm:"not null;index;uniqueIndex:idx_team_members_team_user" json:"user_id"`
	Role     authz.Role `gorm:"not null;size:20;default:'member'" json:"role"`
	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}
