package authz

// Role is a user's role within a team. Roles are a closed set so the
// management hierarchy below stays exhaustive.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// SharePermission is the level granted by a direct task share.
type SharePermission string

const (
	PermissionView SharePermission = "view"
	PermissionEdit SharePermission = "edit"
)

// ParseRole validates a role string coming in from a request body.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return Role(s), nil
	}
	return "", BadRequest("invalid role: must be one of owner, admin, member, viewer")
}

// ParseInviteRole validates a role for a new member. Ownership is never
// granted via invite, only via transfer.
func ParseInviteRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember, RoleViewer:
		return Role(s), nil
	}
	return "", BadRequest("invalid role: must be one of admin, member, viewer")
}

// ParseSharePermission validates a share permission string.
func ParseSharePermission(s string) (SharePermission, error) {
	switch SharePermission(s) {
	case PermissionView, PermissionEdit:
		return SharePermission(s), nil
	}
	return "", BadRequest("invalid permission: must be view or edit")
}

// Team-management hierarchy. This is distinct from task access: it governs
// who may invite, reassign, remove, and delete within a team.

// CanInvite reports whether the role may add new members.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanAssign reports whether an actor with role r may move a member currently
// holding current to the role next. Owners may assign anything, including
// owner itself (an ownership transfer). Admins manage member/viewer rows only
// and may never touch the owner or another admin.
func (r Role) CanAssign(current, next Role) bool {
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return (current == RoleMember || current == RoleViewer) &&
			(next == RoleMember || next == RoleViewer)
	}
	return false
}

// CanRemove reports whether an actor with role r may remove a member holding
// target. The owner row is never removable; ownership must be transferred
// first.
func (r Role) CanRemove(target Role) bool {
	if target == RoleOwner {
		return false
	}
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target == RoleMember || target == RoleViewer
	}
	return false
}

// CanManageTeam reports whether the role may edit team name/description.
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanDeleteTeam is owner-only.
func (r Role) CanDeleteTeam() bool {
	return r == RoleOwner
}

// CanCreateTeamTask reports whether the role may create tasks under the team.
// Viewers are read-only.
func (r Role) CanCreateTeamTask() bool {
	return r != RoleViewer
}
