package store

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

// TaskStore owns Task records and the visibility union query.
type TaskStore struct {
	DB *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{DB: db}
}

// TaskWithAccess is a task annotated with how the requesting user reached it.
type TaskWithAccess struct {
	models.Task
	Access authz.AccessDecision `json:"access"`
}

// TaskInput is the mutable surface of a task.
type TaskInput struct {
	Title       string
	Description string
	TeamID      *uint
}

// Create makes a task for the user. Attaching it to a team requires a
// membership there with a role that may create team tasks; the association
// is fixed at creation time.
func (s *TaskStore) Create(userID uint, in TaskInput) (*models.Task, error) {
	if in.TeamID != nil {
		var member models.TeamMember
		err := s.DB.Where("team_id = ? AND user_id = ?", *in.TeamID, userID).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.NotFound("team not found")
		}
		if err != nil {
			return nil, authz.Internal("failed to load membership", err)
		}
		if !member.Role.CanCreateTeamTask() {
			return nil, authz.Forbidden("viewers cannot create team tasks")
		}
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		UserID:      userID,
		TeamID:      in.TeamID,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, authz.Internal("failed to create task", err)
	}
	return &task, nil
}

// Get loads a task by id. Absence is NotFound; access is the caller's
// problem — resolve before returning anything to a user.
func (s *TaskStore) Get(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.NotFound("task not found")
		}
		return nil, authz.Internal("failed to load task", err)
	}
	return &task, nil
}

// Update writes title/description/completed. Team association is immutable
// after creation; re-parenting is rejected upstream.
func (s *TaskStore) Update(task *models.Task, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := s.DB.Model(task).Updates(updates).Error; err != nil {
		return authz.Internal("failed to update task", err)
	}
	return nil
}

// Delete removes the task and cascades its shares in one transaction.
func (s *TaskStore) Delete(task *models.Task) error {
	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskShare{}).Error; err != nil {
		tx.Rollback()
		return authz.Internal("failed to delete task shares", err)
	}
	if err := tx.Delete(task).Error; err != nil {
		tx.Rollback()
		return authz.Internal("failed to delete task", err)
	}
	if err := tx.Commit().Error; err != nil {
		return authz.Internal("failed to commit task deletion", err)
	}
	return nil
}

// ForTeam lists a team's tasks. Membership checks happen upstream.
func (s *TaskStore) ForTeam(teamID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.DB.Where("team_id = ?", teamID).Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, authz.Internal("failed to list team tasks", err)
	}
	return tasks, nil
}

// VisibleTo returns every task the user can see: owned tasks, tasks of teams
// they belong to, and tasks shared with them directly. The three branches
// are merged into one map keyed by task id and each entry is annotated with
// the same decision Resolve would produce, so list and detail views never
// disagree.
func (s *TaskStore) VisibleTo(userID uint) ([]TaskWithAccess, error) {
	var memberships []models.TeamMember
	if err := s.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, authz.Internal("failed to load memberships", err)
	}
	roleByTeam := make(map[uint]authz.Role, len(memberships))
	teamIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		roleByTeam[m.TeamID] = m.Role
		teamIDs = append(teamIDs, m.TeamID)
	}

	var shares []models.TaskShare
	if err := s.DB.Where("shared_with_user_id = ?", userID).Find(&shares).Error; err != nil {
		return nil, authz.Internal("failed to load shares", err)
	}
	permByTask := make(map[uint]authz.SharePermission, len(shares))
	sharedTaskIDs := make([]uint, 0, len(shares))
	for _, sh := range shares {
		permByTask[sh.TaskID] = sh.Permission
		sharedTaskIDs = append(sharedTaskIDs, sh.TaskID)
	}

	byID := make(map[uint]TaskWithAccess)

	var owned []models.Task
	if err := s.DB.Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, authz.Internal("failed to list owned tasks", err)
	}
	for _, t := range owned {
		byID[t.ID] = TaskWithAccess{Task: t, Access: authz.OwnerDecision()}
	}

	if len(teamIDs) > 0 {
		var teamTasks []models.Task
		if err := s.DB.Where("team_id IN ?", teamIDs).Find(&teamTasks).Error; err != nil {
			return nil, authz.Internal("failed to list team tasks", err)
		}
		for _, t := range teamTasks {
			if _, seen := byID[t.ID]; seen {
				// Ownership outranks the team path.
				continue
			}
			byID[t.ID] = TaskWithAccess{Task: t, Access: authz.TeamDecision(roleByTeam[*t.TeamID])}
		}
	}

	if len(sharedTaskIDs) > 0 {
		var sharedTasks []models.Task
		if err := s.DB.Where("id IN ?", sharedTaskIDs).Find(&sharedTasks).Error; err != nil {
			return nil, authz.Internal("failed to list shared tasks", err)
		}
		for _, t := range sharedTasks {
			if _, seen := byID[t.ID]; seen {
				// Ownership and team role both outrank a direct share.
				continue
			}
			byID[t.ID] = TaskWithAccess{Task: t, Access: authz.ShareDecision(permByTask[t.ID])}
		}
	}

	out := make([]TaskWithAccess, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Audience returns the user ids that currently resolve to a granted decision
// for the task: the owner, the task's team members, and share grantees.
func (s *TaskStore) Audience(task *models.Task) ([]uint, error) {
	seen := map[uint]struct{}{task.UserID: {}}
	ids := []uint{task.UserID}

	if task.TeamID != nil {
		var members []models.TeamMember
		if err := s.DB.Where("team_id = ?", *task.TeamID).Find(&members).Error; err != nil {
			return nil, authz.Internal("failed to load team audience", err)
		}
		for _, m := range members {
			if _, ok := seen[m.UserID]; !ok {
				seen[m.UserID] = struct{}{}
				ids = append(ids, m.UserID)
			}
		}
	}

	var shares []models.TaskShare
	if err := s.DB.Where("task_id = ?", task.ID).Find(&shares).Error; err != nil {
		return nil, authz.Internal("failed to load share audience", err)
	}
	for _, sh := range shares {
		if _, ok := seen[sh.SharedWithUserID]; !ok {
			seen[sh.SharedWithUserID] = struct{}{}
			ids = append(ids, sh.SharedWithUserID)
		}
	}
	return ids, nil
}
