package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/store"
	"taskhive/utils"
)

type ShareController struct {
	Tasks    *store.TaskStore
	Shares   *store.ShareStore
	Resolver *authz.Resolver
	Logger   *log.Logger
}

func NewShareController(tasks *store.TaskStore, shares *store.ShareStore, resolver *authz.Resolver, logger *log.Logger) *ShareController {
	return &ShareController{
		Tasks:    tasks,
		Shares:   shares,
		Resolver: resolver,
		Logger:   logger,
	}
}

// CreateShare grants a user direct access to a task. Only the owner shares;
// team members with edit rights do not.
func (sc *ShareController) CreateShare(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		UserID     uint   `json:"user_id"`
		Email      string `json:"email" validate:"omitempty,email"`
		Permission string `json:"permission" validate:"required"`
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

	perm, err := authz.ParseSharePermission(input.Permission)
	if err != nil {
		return utils.EngineError(c, err)
	}

	task, err := sc.ownedTask(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}

	targetID := input.UserID
	if targetID == 0 {
		if input.Email == "" {
			return utils.EngineError(c, authz.BadRequest("user_id or email is required"))
		}
		var target models.User
		if err := sc.Shares.DB.Where("email = ?", input.Email).First(&target).Error; err != nil {
			return utils.EngineError(c, authz.NotFound("user not found"))
		}
		targetID = target.ID
	}

	share, err := sc.Shares.Create(task, user.ID, targetID, perm)
	if err != nil {
		return utils.EngineError(c, err)
	}

	sc.Logger.Printf("task %d shared with user %d (%s) by user %d", task.ID, targetID, perm, user.ID)

	return c.Status(fiber.StatusCreated).JSON(share)
}

// RevokeShare removes a grant. Revoking a non-existent share is 404.
func (sc *ShareController) RevokeShare(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := sc.ownedTask(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}

	targetID, err := c.ParamsInt("userID")
	if err != nil || targetID <= 0 {
		return utils.EngineError(c, authz.BadRequest("invalid user ID"))
	}

	if err := sc.Shares.Revoke(task.ID, uint(targetID)); err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Share revoked successfully",
	})
}

// GetShares lists the task's shares for its owner.
func (sc *ShareController) GetShares(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := sc.ownedTask(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}

	shares, err := sc.Shares.ListForTask(task.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(shares)
}

// ownedTask loads the task and admits only its owner. Anyone without access
// gets "task not found".
func (sc *ShareController) ownedTask(c *fiber.Ctx, userID uint) (*models.Task, error) {
	taskID, err := c.ParamsInt("id")
	if err != nil || taskID <= 0 {
		return nil, authz.BadRequest("invalid task ID")
	}

	task, err := sc.Tasks.Get(uint(taskID))
	if err != nil {
		return nil, err
	}

	decision, err := sc.Resolver.Resolve(userID, task.Ref())
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(decision); err != nil {
		return nil, err
	}
	return task, nil
}
