package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

func TestTaskCreate_TeamAttachment(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamStore(db)
	tasks := NewTaskStore(db)
	owner := createUser(t, db)
	member := createUser(t, db)
	viewer := createUser(t, db)
	outsider := createUser(t, db)
	team := createTeamWith(t, teams, owner, "Eng")
	addMember(t, teams, owner, team, member, authz.RoleMember)
	addMember(t, teams, owner, team, viewer, authz.RoleViewer)

	// Members create team tasks
	task, err := tasks.Create(member.ID, TaskInput{Title: "write docs", TeamID: &team.ID})
	require.NoError(t, err)
	require.NotNil(t, task.TeamID)
	assert.Equal(t, team.ID, *task.TeamID)
	assert.Equal(t, member.ID, task.UserID)

	// Viewers are read-only
	_, err = tasks.Create(viewer.ID, TaskInput{Title: "nope", TeamID: &team.ID})
	require.Error(t, err)
	assert.Equal(t, authz.KindForbidden, authz.KindOf(err))

	// Non-members cannot even learn the team exists
	_, err = tasks.Create(outsider.ID, TaskInput{Title: "nope", TeamID: &team.ID})
	require.Error(t, err)
	assert.Equal(t, authz.KindNotFound, authz.KindOf(err))
}

func TestTaskDelete_CascadesShares(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)
	owner := createUser(t, db)
	friend := createUser(t, db)

	task := createTask(t, tasks, owner, "secret plan", nil)
	_, err := shares.Create(task, owner.ID, friend.ID, authz.PermissionView)
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(task))

	var shareRows int64
	require.NoError(t, db.Model(&models.TaskShare{}).Where("task_id = ?", task.ID).Count(&shareRows).Error)
	assert.Zero(t, shareRows)

	err = db.First(&models.Task{}, task.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVisibleTo_Union(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamStore(db)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)

	alice := createUser(t, db)
	bob := createUser(t, db)
	carol := createUser(t, db)

	team := createTeamWith(t, teams, alice, "Eng")
	addMember(t, teams, alice, team, bob, authz.RoleViewer)

	ownTask := createTask(t, tasks, bob, "bob's own", nil)
	teamTask := createTask(t, tasks, alice, "team work", &team.ID)
	sharedTask := createTask(t, tasks, carol, "carol's note", nil)
	_, err := shares.Create(sharedTask, carol.ID, bob.ID, authz.PermissionEdit)
	require.NoError(t, err)
	// Invisible to bob entirely
	createTask(t, tasks, carol, "private", nil)

	visible, err := tasks.VisibleTo(bob.ID)
	require.NoError(t, err)
	require.Len(t, visible, 3)

	byID := map[uint]TaskWithAccess{}
	for _, v := range visible {
		byID[v.ID] = v
	}

	assert.Equal(t, authz.AccessOwner, byID[ownTask.ID].Access.AccessType)
	assert.Equal(t, authz.AccessTeamViewer, byID[teamTask.ID].Access.AccessType)
	assert.False(t, byID[teamTask.ID].Access.CanEdit)
	assert.Equal(t, authz.AccessSharedEdit, byID[sharedTask.ID].Access.AccessType)
	assert.False(t, byID[sharedTask.ID].Access.CanDelete)
}

func TestVisibleTo_PrecedenceAndDedup(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamStore(db)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)

	alice := createUser(t, db)
	bob := createUser(t, db)

	team := createTeamWith(t, teams, alice, "Eng")
	addMember(t, teams, alice, team, bob, authz.RoleViewer)

	// Bob is a team viewer AND has a share-edit grant on the same task.
	// The task appears once, with the team-derived decision.
	teamTask := createTask(t, tasks, alice, "double path", &team.ID)
	_, err := shares.Create(teamTask, alice.ID, bob.ID, authz.PermissionEdit)
	require.NoError(t, err)

	visible, err := tasks.VisibleTo(bob.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, authz.AccessTeamViewer, visible[0].Access.AccessType)
	assert.False(t, visible[0].Access.CanEdit)

	// A second, personal task joins the list without disturbing the first
	createTask(t, tasks, bob, "solo", nil)
	visible, err = tasks.VisibleTo(bob.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestAudience(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamStore(db)
	tasks := NewTaskStore(db)
	shares := NewShareStore(db)

	alice := createUser(t, db)
	bob := createUser(t, db)
	carol := createUser(t, db)

	team := createTeamWith(t, teams, alice, "Eng")
	addMember(t, teams, alice, team, bob, authz.RoleMember)

	task := createTask(t, tasks, alice, "announce", &team.ID)
	_, err := shares.Create(task, alice.ID, carol.ID, authz.PermissionView)
	require.NoError(t, err)

	audience, err := tasks.Audience(task)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID, carol.ID}, audience)
}
