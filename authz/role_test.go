package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"owner", "admin", "member", "viewer"} {
		role, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), role)
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestParseInviteRole_NeverOwner(t *testing.T) {
	_, err := ParseInviteRole("owner")
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))

	role, err := ParseInviteRole("viewer")
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, role)
}

func TestParseSharePermission(t *testing.T) {
	perm, err := ParseSharePermission("edit")
	require.NoError(t, err)
	assert.Equal(t, PermissionEdit, perm)

	_, err = ParseSharePermission("admin")
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestRoleHierarchy(t *testing.T) {
	tests := []struct {
		role          Role
		canInvite     bool
		canDeleteTeam bool
	}{
		{RoleOwner, true, true},
		{RoleAdmin, true, false},
		{RoleMember, false, false},
		{RoleViewer, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.canInvite, tt.role.CanInvite())
			assert.Equal(t, tt.canDeleteTeam, tt.role.CanDeleteTeam())
		})
	}
}

func TestRoleCanAssign(t *testing.T) {
	// Owner assigns anything, including a transfer.
	assert.True(t, RoleOwner.CanAssign(RoleMember, RoleOwner))
	assert.True(t, RoleOwner.CanAssign(RoleViewer, RoleAdmin))

	// Admin stays inside member/viewer on both sides.
	assert.True(t, RoleAdmin.CanAssign(RoleMember, RoleViewer))
	assert.True(t, RoleAdmin.CanAssign(RoleViewer, RoleMember))
	assert.False(t, RoleAdmin.CanAssign(RoleMember, RoleAdmin))
	assert.False(t, RoleAdmin.CanAssign(RoleAdmin, RoleMember))
	assert.False(t, RoleAdmin.CanAssign(RoleOwner, RoleMember))

	// Members and viewers assign nothing.
	assert.False(t, RoleMember.CanAssign(RoleViewer, RoleViewer))
	assert.False(t, RoleViewer.CanAssign(RoleViewer, RoleViewer))
}

func TestRoleCanRemove(t *testing.T) {
	// The owner row is untouchable for everyone.
	assert.False(t, RoleOwner.CanRemove(RoleOwner))
	assert.False(t, RoleAdmin.CanRemove(RoleOwner))

	assert.True(t, RoleOwner.CanRemove(RoleAdmin))
	assert.True(t, RoleOwner.CanRemove(RoleMember))
	assert.True(t, RoleAdmin.CanRemove(RoleMember))
	assert.True(t, RoleAdmin.CanRemove(RoleViewer))
	assert.False(t, RoleAdmin.CanRemove(RoleAdmin))
	assert.False(t, RoleMember.CanRemove(RoleViewer))
}
