package store

import (
	"errors"

	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

// ShareStore owns TaskShare records. Ownership checks happen upstream via
// the resolver; this layer enforces the record-level rules.
type ShareStore struct {
	DB *gorm.DB
}

func NewShareStore(db *gorm.DB) *ShareStore {
	return &ShareStore{DB: db}
}

// Create grants a user direct access to a task. Self-shares are rejected and
// an existing (task, user) pair is a hard Conflict: changing the level means
// revoke then reshare, which keeps the grant history explicit.
func (s *ShareStore) Create(task *models.Task, sharedByUserID, targetUserID uint, perm authz.SharePermission) (*models.TaskShare, error) {
	if targetUserID == task.UserID {
		return nil, authz.BadRequest("a task cannot be shared with its owner")
	}

	var user models.User
	if err := s.DB.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.NotFound("user not found")
		}
		return nil, authz.Internal("failed to load user", err)
	}

	var existing int64
	if err := s.DB.Model(&models.TaskShare{}).
		Where("task_id = ? AND shared_with_user_id = ?", task.ID, targetUserID).
		Count(&existing).Error; err != nil {
		return nil, authz.Internal("failed to check existing share", err)
	}
	if existing > 0 {
		return nil, authz.Conflict("task is already shared with this user")
	}

	share := models.TaskShare{
		TaskID:           task.ID,
		SharedWithUserID: targetUserID,
		SharedByUserID:   sharedByUserID,
		Permission:       perm,
	}
	if err := s.DB.Create(&share).Error; err != nil {
		// Concurrent share of the same pair: the unique constraint decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authz.Conflict("task is already shared with this user")
		}
		return nil, authz.Internal("failed to create share", err)
	}
	return &share, nil
}

// Revoke removes a share. Revoking a share that does not exist is NotFound,
// matching the other mutations.
func (s *ShareStore) Revoke(taskID, targetUserID uint) error {
	res := s.DB.Where("task_id = ? AND shared_with_user_id = ?", taskID, targetUserID).
		Delete(&models.TaskShare{})
	if res.Error != nil {
		return authz.Internal("failed to revoke share", res.Error)
	}
	if res.RowsAffected == 0 {
		return authz.NotFound("share not found")
	}
	return nil
}

// ListForTask returns the task's shares for the owner's share-management view.
func (s *ShareStore) ListForTask(taskID uint) ([]models.TaskShare, error) {
	var shares []models.TaskShare
	if err := s.DB.Where("task_id = ?", taskID).Order("shared_at DESC, id DESC").Find(&shares).Error; err != nil {
		return nil, authz.Internal("failed to list shares", err)
	}
	return shares, nil
}
