// Package store owns the persisted authorization state: teams, memberships,
// shares, and tasks. Multi-record writes (ownership transfer, team deletion,
// task deletion) run in single transactions; partial application is treated
// as a correctness bug.
package store

import (
	"errors"

	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

// Directory implements authz.Directory against the database.
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

func (d *Directory) TeamRole(teamID, userID uint) (authz.Role, bool, error) {
	var member models.TeamMember
	err := d.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return member.Role, true, nil
}

func (d *Directory) SharePermission(taskID, userID uint) (authz.SharePermission, bool, error) {
	var share models.TaskShare
	err := d.DB.Where("task_id = ? AND shared_with_user_id = ?", taskID, userID).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return share.Permission, true, nil
}
