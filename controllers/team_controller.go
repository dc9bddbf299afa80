package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/store"
	"taskhive/utils"
)

type TeamController struct {
	Teams  *store.TeamStore
	Tasks  *store.TaskStore
	Logger *log.Logger
}

func NewTeamController(teams *store.TeamStore, tasks *store.TaskStore, logger *log.Logger) *TeamController {
	return &TeamController{
		Teams:  teams,
		Tasks:  tasks,
		Logger: logger,
	}
}

// CreateTeam makes a team with the caller as owner.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,min=1,max=255"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	team, err := tc.Teams.Create(user.ID, input.Name, input.Description)
	if err != nil {
		return utils.EngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(team)
}

// GetTeams lists the caller's teams.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	teams, err := tc.Teams.ListForUser(user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(teams)
}

// GetTeam returns a team with its members. Non-members get 404, not 403.
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	if _, ok, err := tc.Teams.Membership(teamID, user.ID); err != nil {
		return utils.EngineError(c, err)
	} else if !ok {
		return utils.EngineError(c, authz.NotFound("team not found"))
	}

	team, err := tc.Teams.Get(teamID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(team)
}

// UpdateTeam changes name/description.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	var input struct {
		Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	team, err := tc.Teams.Update(user.ID, teamID, input.Name, input.Description)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(team)
}

// DeleteTeam removes the team; memberships go with it and team tasks become
// personal tasks of their creators.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	if err := tc.Teams.Delete(user.ID, teamID); err != nil {
		return utils.EngineError(c, err)
	}

	logrus.WithFields(logrus.Fields{
		"team_id": teamID,
		"user_id": user.ID,
	}).Info("team deleted")

	return c.JSON(fiber.Map{
		"message": "Team deleted successfully",
	})
}

// AddMember invites a user into the team with a role below owner. Accepts
// either a user id or an email.
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	var input struct {
		UserID uint   `json:"user_id"`
		Email  string `json:"email" validate:"omitempty,email"`
		Role   string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	role, err := authz.ParseInviteRole(input.Role)
	if err != nil {
		return utils.EngineError(c, err)
	}

	targetID := input.UserID
	if targetID == 0 {
		if input.Email == "" {
			return utils.EngineError(c, authz.BadRequest("user_id or email is required"))
		}
		var target models.User
		if err := tc.Teams.DB.Where("email = ?", input.Email).First(&target).Error; err != nil {
			return utils.EngineError(c, authz.NotFound("user not found"))
		}
		targetID = target.ID
	}

	member, err := tc.Teams.AddMember(user.ID, teamID, targetID, role)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// ChangeMemberRole reassigns a member's role; promoting to owner transfers
// ownership atomically.
func (tc *TeamController) ChangeMemberRole(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}
	targetID, err := c.ParamsInt("userID")
	if err != nil || targetID <= 0 {
		return utils.EngineError(c, authz.BadRequest("invalid user ID"))
	}

	var input struct {
		Role string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role, err := authz.ParseRole(input.Role)
	if err != nil {
		return utils.EngineError(c, err)
	}

	member, err := tc.Teams.ChangeRole(user.ID, teamID, uint(targetID), role)
	if err != nil {
		return utils.EngineError(c, err)
	}

	if role == authz.RoleOwner {
		logrus.WithFields(logrus.Fields{
			"team_id":   teamID,
			"old_owner": user.ID,
			"new_owner": targetID,
		}).Info("team ownership transferred")
	}

	return c.JSON(member)
}

// RemoveMember kicks a member out of the team.
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}
	targetID, err := c.ParamsInt("userID")
	if err != nil || targetID <= 0 {
		return utils.EngineError(c, authz.BadRequest("invalid user ID"))
	}

	if err := tc.Teams.RemoveMember(user.ID, teamID, uint(targetID)); err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Member removed successfully",
	})
}

// LeaveTeam removes the caller's own membership.
func (tc *TeamController) LeaveTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	if err := tc.Teams.Leave(user.ID, teamID); err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Left team successfully",
	})
}

// GetTeamTasks lists a team's tasks, tagged with the caller's team-derived
// access.
func (tc *TeamController) GetTeamTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := teamParam(c)
	if err != nil {
		return utils.EngineError(c, err)
	}

	member, ok, err := tc.Teams.Membership(teamID, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	if !ok {
		return utils.EngineError(c, authz.NotFound("team not found"))
	}

	tasks, err := tc.Tasks.ForTeam(teamID)
	if err != nil {
		return utils.EngineError(c, err)
	}

	out := make([]store.TaskWithAccess, 0, len(tasks))
	for _, t := range tasks {
		access := authz.TeamDecision(member.Role)
		if t.UserID == user.ID {
			access = authz.OwnerDecision()
		}
		out = append(out, store.TaskWithAccess{Task: t, Access: access})
	}
	return c.JSON(out)
}

func teamParam(c *fiber.Ctx) (uint, error) {
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return 0, authz.BadRequest("invalid team ID")
	}
	return uint(teamID), nil
}
