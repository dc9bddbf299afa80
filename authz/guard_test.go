package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire_NoAccessReadsAsNotFound(t *testing.T) {
	// NONE must surface as 404 for every capability: a 403 would confirm
	// the task exists.
	none := AccessDecision{Granted: false, AccessType: AccessNone}
	for _, c := range []Capability{CapView, CapEdit, CapDelete} {
		err := Require(none, c)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	}
}

func TestRequire_InsufficientAccessIsForbidden(t *testing.T) {
	viewer := TeamDecision(RoleViewer)

	require.NoError(t, Require(viewer, CapView))

	err := Require(viewer, CapEdit)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	err = Require(viewer, CapDelete)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestRequire_SharedEditCannotDelete(t *testing.T) {
	sharedEdit := ShareDecision(PermissionEdit)

	require.NoError(t, Require(sharedEdit, CapEdit))

	err := Require(sharedEdit, CapDelete)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestRequireOwner(t *testing.T) {
	require.NoError(t, RequireOwner(OwnerDecision()))

	err := RequireOwner(TeamDecision(RoleAdmin))
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err), "team admin is not the owner")

	err = RequireOwner(AccessDecision{Granted: false, AccessType: AccessNone})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, KindBadRequest.HTTPStatus())
	assert.Equal(t, 401, KindUnauthorized.HTTPStatus())
	assert.Equal(t, 403, KindForbidden.HTTPStatus())
	assert.Equal(t, 404, KindNotFound.HTTPStatus())
	assert.Equal(t, 409, KindConflict.HTTPStatus())
	assert.Equal(t, 500, KindInternal.HTTPStatus())
}
