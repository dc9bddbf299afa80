// Package authz is the authorization engine: it decides, for any
// (user, task) pair, whether access is granted, at what level, and via
// which path — ownership, team role, or a direct share.
package authz

// AccessType names the path that granted access.
type AccessType string

const (
	AccessOwner      AccessType = "owner"
	AccessTeamOwner  AccessType = "team_owner"
	AccessTeamAdmin  AccessType = "team_admin"
	AccessTeamMember AccessType = "team_member"
	AccessTeamViewer AccessType = "team_viewer"
	AccessSharedView AccessType = "shared_view"
	AccessSharedEdit AccessType = "shared_edit"
	AccessNone       AccessType = "none"
)

// AccessDecision is the resolved outcome of asking "can this principal act
// on this task, and how".
type AccessDecision struct {
	Granted    bool       `json:"granted"`
	AccessType AccessType `json:"access_type"`
	CanEdit    bool       `json:"can_edit"`
	CanDelete  bool       `json:"can_delete"`
}

// TaskRef is the slice of a task the resolver needs. A nil TeamID means a
// personal task.
type TaskRef struct {
	ID      uint
	OwnerID uint
	TeamID  *uint
}

// Directory answers the two lookups resolution depends on. The store layer
// implements it against the database; tests implement it in memory.
type Directory interface {
	// TeamRole returns the user's role in the team, if any membership exists.
	TeamRole(teamID, userID uint) (Role, bool, error)
	// SharePermission returns the permission of a direct share of the task
	// with the user, if one exists.
	SharePermission(taskID, userID uint) (SharePermission, bool, error)
}

// Resolver combines ownership, membership, and share lookups into a single
// AccessDecision. It holds no state beyond the directory and is safe for
// concurrent use.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve applies the fixed precedence: ownership, then team role, then
// direct share, then none. First match wins; grants are never merged, so a
// user who is both a team viewer and a share-edit grantee gets the team
// decision. Task ownership is checked before membership, so a creator who
// was removed from the team keeps full access to their own tasks.
func (r *Resolver) Resolve(userID uint, task TaskRef) (AccessDecision, error) {
	if task.OwnerID == userID {
		return OwnerDecision(), nil
	}

	if task.TeamID != nil {
		role, ok, err := r.dir.TeamRole(*task.TeamID, userID)
		if err != nil {
			return AccessDecision{}, Internal("failed to look up team membership", err)
		}
		if ok {
			return TeamDecision(role), nil
		}
	}

	perm, ok, err := r.dir.SharePermission(task.ID, userID)
	if err != nil {
		return AccessDecision{}, Internal("failed to look up task share", err)
	}
	if ok {
		return ShareDecision(perm), nil
	}

	return AccessDecision{Granted: false, AccessType: AccessNone}, nil
}

// OwnerDecision is the decision for the task creator.
func OwnerDecision() AccessDecision {
	return AccessDecision{Granted: true, AccessType: AccessOwner, CanEdit: true, CanDelete: true}
}

// TeamDecision maps a team role to a task-level decision. Owner, admin and
// member may edit; only owner and admin may delete; viewers are read-only.
func TeamDecision(role Role) AccessDecision {
	d := AccessDecision{Granted: true}
	switch role {
	case RoleOwner:
		d.AccessType = AccessTeamOwner
		d.CanEdit, d.CanDelete = true, true
	case RoleAdmin:
		d.AccessType = AccessTeamAdmin
		d.CanEdit, d.CanDelete = true, true
	case RoleMember:
		d.AccessType = AccessTeamMember
		d.CanEdit = true
	case RoleViewer:
		d.AccessType = AccessTeamViewer
	default:
		return AccessDecision{AccessType: AccessNone}
	}
	return d
}

// ShareDecision maps a share permission to a task-level decision. Shared
// access never grants deletion, regardless of level.
func ShareDecision(perm SharePermission) AccessDecision {
	switch perm {
	case PermissionEdit:
		return AccessDecision{Granted: true, AccessType: AccessSharedEdit, CanEdit: true}
	case PermissionView:
		return AccessDecision{Granted: true, AccessType: AccessSharedView}
	}
	return AccessDecision{AccessType: AccessNone}
}
