package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhive/authz"
	"taskhive/models"
)

// TeamStore owns Team and TeamMember records and the role state machine.
type TeamStore struct {
	DB *gorm.DB
}

func NewTeamStore(db *gorm.DB) *TeamStore {
	return &TeamStore{DB: db}
}

// Create makes a team and its owner membership row in one transaction, so
// there is no moment where the team exists without exactly one owner.
func (s *TeamStore) Create(ownerID uint, name, description string) (*models.Team, error) {
	team := models.Team{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	tx := s.DB.Begin()
	if err := tx.Create(&team).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authz.Conflict("a team with this name already exists")
		}
		return nil, authz.Internal("failed to create team", err)
	}

	member := models.TeamMember{
		TeamID: team.ID,
		UserID: ownerID,
		Role:   authz.RoleOwner,
	}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		return nil, authz.Internal("failed to create owner membership", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, authz.Internal("failed to commit team creation", err)
	}
	return &team, nil
}

// Get returns the team with its members preloaded. Callers decide whether
// the requesting user may see it.
func (s *TeamStore) Get(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := s.DB.Preload("Members").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.NotFound("team not found")
		}
		return nil, authz.Internal("failed to load team", err)
	}
	return &team, nil
}

// Membership returns the user's membership row in the team, if any.
func (s *TeamStore) Membership(teamID, userID uint) (*models.TeamMember, bool, error) {
	var member models.TeamMember
	err := s.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, authz.Internal("failed to load membership", err)
	}
	return &member, true, nil
}

// requireMembership hides team existence from non-members: absence of a
// membership row reads as "team not found".
func (s *TeamStore) requireMembership(teamID, userID uint) (*models.TeamMember, error) {
	member, ok, err := s.Membership(teamID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, authz.NotFound("team not found")
	}
	return member, nil
}

// ListForUser returns the teams the user belongs to, with their membership
// rows attached for role display.
func (s *TeamStore) ListForUser(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Members").
		Order("teams.created_at DESC").
		Find(&teams).Error
	if err != nil {
		return nil, authz.Internal("failed to list teams", err)
	}
	return teams, nil
}

// Update changes name/description. Owner or admin only.
func (s *TeamStore) Update(actorID, teamID uint, name, description *string) (*models.Team, error) {
	actor, err := s.requireMembership(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageTeam() {
		return nil, authz.Forbidden("only the team owner or an admin can update the team")
	}

	team, err := s.Get(teamID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return team, nil
	}

	if err := s.DB.Model(team).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authz.Conflict("a team with this name already exists")
		}
		return nil, authz.Internal("failed to update team", err)
	}
	return team, nil
}

// AddMember creates a membership row with the requested role. The owner role
// is never assignable here; ownership only moves via ChangeRole.
func (s *TeamStore) AddMember(actorID, teamID, userID uint, role authz.Role) (*models.TeamMember, error) {
	actor, err := s.requireMembership(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanInvite() {
		return nil, authz.Forbidden("only the team owner or an admin can add members")
	}
	if role == authz.RoleOwner {
		return nil, authz.BadRequest("ownership cannot be granted by invite")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.NotFound("user not found")
		}
		return nil, authz.Internal("failed to load user", err)
	}

	if _, exists, err := s.Membership(teamID, userID); err != nil {
		return nil, err
	} else if exists {
		return nil, authz.Conflict("user is already a member of this team")
	}

	member := models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	if err := s.DB.Create(&member).Error; err != nil {
		// Lost a race with a concurrent invite: the unique (team_id, user_id)
		// constraint is the source of truth.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, authz.Conflict("user is already a member of this team")
		}
		return nil, authz.Internal("failed to add member", err)
	}
	return &member, nil
}

// ChangeRole moves a member to a new role per the management hierarchy.
// Promoting to owner is an atomic ownership transfer: the current owner row
// is demoted to admin and the target promoted in one transaction, with the
// team's membership rows locked so two concurrent transfers cannot both
// succeed and the team never has zero or two owners.
func (s *TeamStore) ChangeRole(actorID, teamID, targetUserID uint, newRole authz.Role) (*models.TeamMember, error) {
	actor, err := s.requireMembership(teamID, actorID)
	if err != nil {
		return nil, err
	}

	if newRole == authz.RoleOwner {
		return s.transferOwnership(actor, teamID, targetUserID)
	}

	target, ok, err := s.Membership(teamID, targetUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, authz.NotFound("member not found")
	}
	if target.Role == authz.RoleOwner {
		return nil, authz.Forbidden("the owner role can only change via ownership transfer")
	}
	if !actor.Role.CanAssign(target.Role, newRole) {
		return nil, authz.Forbidden("your role cannot assign this role")
	}

	if err := s.DB.Model(target).Update("role", newRole).Error; err != nil {
		return nil, authz.Internal("failed to change role", err)
	}
	target.Role = newRole
	return target, nil
}

func (s *TeamStore) transferOwnership(actor *models.TeamMember, teamID, targetUserID uint) (*models.TeamMember, error) {
	if actor.Role != authz.RoleOwner {
		return nil, authz.Forbidden("only the team owner can transfer ownership")
	}
	if actor.UserID == targetUserID {
		return nil, authz.BadRequest("you already own this team")
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Lock every membership row of the team for the duration of the swap.
	// Postgres honors FOR UPDATE; the sqlite test dialect serializes writes
	// on its own.
	q := tx.Where("team_id = ?", teamID)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var members []models.TeamMember
	if err := q.Find(&members).Error; err != nil {
		tx.Rollback()
		return nil, authz.Internal("failed to lock memberships", err)
	}

	var ownerRow, targetRow *models.TeamMember
	for i := range members {
		switch {
		case members[i].Role == authz.RoleOwner:
			ownerRow = &members[i]
		case members[i].UserID == targetUserID:
			targetRow = &members[i]
		}
	}
	if targetRow == nil {
		tx.Rollback()
		return nil, authz.NotFound("member not found")
	}
	// Re-check under the lock: a concurrent transfer may have already moved
	// ownership away from the actor.
	if ownerRow == nil || ownerRow.UserID != actor.UserID {
		tx.Rollback()
		return nil, authz.Conflict("team ownership changed concurrently")
	}

	if err := tx.Model(ownerRow).Update("role", authz.RoleAdmin).Error; err != nil {
		tx.Rollback()
		return nil, authz.Internal("failed to demote current owner", err)
	}
	if err := tx.Model(targetRow).Update("role", authz.RoleOwner).Error; err != nil {
		tx.Rollback()
		return nil, authz.Internal("failed to promote new owner", err)
	}
	if err := tx.Model(&models.Team{}).Where("id = ?", teamID).
		Update("owner_id", targetUserID).Error; err != nil {
		tx.Rollback()
		return nil, authz.Internal("failed to update team owner", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, authz.Internal("failed to commit ownership transfer", err)
	}
	targetRow.Role = authz.RoleOwner
	return targetRow, nil
}

// RemoveMember deletes the target's membership row. The owner row is never
// removable.
func (s *TeamStore) RemoveMember(actorID, teamID, targetUserID uint) error {
	actor, err := s.requireMembership(teamID, actorID)
	if err != nil {
		return err
	}

	target, ok, err := s.Membership(teamID, targetUserID)
	if err != nil {
		return err
	}
	if !ok {
		return authz.NotFound("member not found")
	}
	if target.Role == authz.RoleOwner {
		return authz.Forbidden("the team owner cannot be removed; transfer ownership first")
	}
	if !actor.Role.CanRemove(target.Role) {
		return authz.Forbidden("your role cannot remove this member")
	}

	if err := s.DB.Delete(target).Error; err != nil {
		return authz.Internal("failed to remove member", err)
	}
	return nil
}

// Leave removes the caller's own membership. The owner must transfer
// ownership first; a team can never be left ownerless.
func (s *TeamStore) Leave(userID, teamID uint) error {
	member, err := s.requireMembership(teamID, userID)
	if err != nil {
		return err
	}
	if member.Role == authz.RoleOwner {
		return authz.Conflict("the owner must transfer ownership before leaving")
	}
	if err := s.DB.Delete(member).Error; err != nil {
		return authz.Internal("failed to leave team", err)
	}
	return nil
}

// Delete removes the team, its memberships, and detaches its tasks, all in
// one transaction. Team tasks become personal tasks of their creators; they
// are never deleted.
func (s *TeamStore) Delete(actorID, teamID uint) error {
	actor, err := s.requireMembership(teamID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanDeleteTeam() {
		return authz.Forbidden("only the team owner can delete the team")
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
		tx.Rollback()
		return authz.Internal("failed to delete memberships", err)
	}
	if err := tx.Model(&models.Task{}).Where("team_id = ?", teamID).
		Update("team_id", nil).Error; err != nil {
		tx.Rollback()
		return authz.Internal("failed to detach team tasks", err)
	}
	if err := tx.Unscoped().Delete(&models.Team{}, teamID).Error; err != nil {
		tx.Rollback()
		return authz.Internal("failed to delete team", err)
	}

	if err := tx.Commit().Error; err != nil {
		return authz.Internal("failed to commit team deletion", err)
	}
	return nil
}
