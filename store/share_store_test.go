package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/authz"
)

func TestShareCreate(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)
	friend := createUser(t, db)

	task := createTask(t, tasks, owner, "draft", nil)

	share, err := shares.Create(task, owner.ID, friend.ID, authz.PermissionView)
	require.NoError(t, err)
	assert.Equal(t, task.ID, share.TaskID)
	assert.Equal(t, friend.ID, share.SharedWithUserID)
	assert.Equal(t, owner.ID, share.SharedByUserID)
	assert.Equal(t, authz.PermissionView, share.Permission)
}

func TestShareCreate_NoSelfShare(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)

	task := createTask(t, tasks, owner, "draft", nil)

	for _, perm := range []authz.SharePermission{authz.PermissionView, authz.PermissionEdit} {
		_, err := shares.Create(task, owner.ID, owner.ID, perm)
		require.Error(t, err)
		assert.Equal(t, authz.KindBadRequest, authz.KindOf(err))
	}
}

func TestShareCreate_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)
	friend := createUser(t, db)

	task := createTask(t, tasks, owner, "draft", nil)

	_, err := shares.Create(task, owner.ID, friend.ID, authz.PermissionView)
	require.NoError(t, err)

	// No silent upsert: changing the level means revoke, then reshare
	_, err = shares.Create(task, owner.ID, friend.ID, authz.PermissionEdit)
	require.Error(t, err)
	assert.Equal(t, authz.KindConflict, authz.KindOf(err))
}

func TestShareCreate_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)

	task := createTask(t, tasks, owner, "draft", nil)

	_, err := shares.Create(task, owner.ID, 9999, authz.PermissionView)
	require.Error(t, err)
	assert.Equal(t, authz.KindNotFound, authz.KindOf(err))
}

func TestShareRevoke(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)
	friend := createUser(t, db)

	task := createTask(t, tasks, owner, "draft", nil)

	// Revoking an absent share is NotFound
	err := shares.Revoke(task.ID, friend.ID)
	require.Error(t, err)
	assert.Equal(t, authz.KindNotFound, authz.KindOf(err))

	_, err = shares.Create(task, owner.ID, friend.ID, authz.PermissionView)
	require.NoError(t, err)
	require.NoError(t, shares.Revoke(task.ID, friend.ID))

	// The pair can be reshared at a different level afterwards
	_, err = shares.Create(task, owner.ID, friend.ID, authz.PermissionEdit)
	require.NoError(t, err)

	list, err := shares.ListForTask(task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, authz.PermissionEdit, list[0].Permission)
}
