package store

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single in-memory sqlite connection; more would each see an empty DB
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.TaskShare{},
	))
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTeamWith(t *testing.T, teams *TeamStore, owner *models.User, name string) *models.Team {
	t.Helper()
	team, err := teams.Create(owner.ID, name, "")
	require.NoError(t, err)
	return team
}

func addMember(t *testing.T, teams *TeamStore, actor *models.User, team *models.Team, user *models.User, role authz.Role) {
	t.Helper()
	_, err := teams.AddMember(actor.ID, team.ID, user.ID, role)
	require.NoError(t, err)
}

func createTask(t *testing.T, tasks *TaskStore, owner *models.User, title string, teamID *uint) *models.Task {
	t.Helper()
	task, err := tasks.Create(owner.ID, TaskInput{Title: title, TeamID: teamID})
	require.NoError(t, err)
	return task
}

func ownerCount(t *testing.T, db *gorm.DB, teamID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, authz.RoleOwner).
		Count(&n).Error)
	return n
}
