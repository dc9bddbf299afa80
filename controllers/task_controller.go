package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/store"
	"taskhive/utils"
)

type TaskController struct {
	Tasks    *store.TaskStore
	Resolver *authz.Resolver
	Hub      *EventHub
	Logger   *log.Logger
}

func NewTaskController(tasks *store.TaskStore, resolver *authz.Resolver, hub *EventHub, logger *log.Logger) *TaskController {
	return &TaskController{
		Tasks:    tasks,
		Resolver: resolver,
		Hub:      hub,
		Logger:   logger,
	}
}

type taskResponse struct {
	*models.Task
	AccessType authz.AccessType `json:"access_type"`
}

// CreateTask creates a personal task, or a team task when team_id is set.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title       string `json:"title" validate:"required,min=1,max=255"`
		Description string `json:"description"`
		TeamID      *uint  `json:"team_id"`
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

	task, err := tc.Tasks.Create(user.ID, store.TaskInput{
		Title:       input.Title,
		Description: input.Description,
		TeamID:      input.TeamID,
	})
	if err != nil {
		return utils.EngineError(c, err)
	}

	tc.publish("task.created", task)

	return c.Status(fiber.StatusCreated).JSON(taskResponse{Task: task, AccessType: authz.AccessOwner})
}

// GetTasks returns every task visible to the user, each tagged with how it
// was reached.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	tasks, err := tc.Tasks.VisibleTo(user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	return c.JSON(tasks)
}

// GetTask returns a single task with the caller's resolved access.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, decision, err := tc.resolve(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	if err := authz.Require(decision, authz.CapView); err != nil {
		return utils.EngineError(c, err)
	}

	return c.JSON(taskResponse{Task: task, AccessType: decision.AccessType})
}

// UpdateTask writes title/description/completed. Team association is fixed
// at creation; attempts to change it are rejected outright.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
		TeamID      *uint   `json:"team_id"`
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

	task, decision, err := tc.resolve(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	if err := authz.Require(decision, authz.CapEdit); err != nil {
		return utils.EngineError(c, err)
	}

	if input.TeamID != nil && (task.TeamID == nil || *task.TeamID != *input.TeamID) {
		return utils.EngineError(c, authz.BadRequest("a task cannot be moved between teams"))
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Completed != nil {
		updates["completed"] = *input.Completed
	}
	if err := tc.Tasks.Update(task, updates); err != nil {
		return utils.EngineError(c, err)
	}

	tc.publish("task.updated", task)

	return c.JSON(taskResponse{Task: task, AccessType: decision.AccessType})
}

// ToggleTask flips the completed flag.
func (tc *TaskController) ToggleTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, decision, err := tc.resolve(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	if err := authz.Require(decision, authz.CapEdit); err != nil {
		return utils.EngineError(c, err)
	}

	if err := tc.Tasks.Update(task, map[string]interface{}{"completed": !task.Completed}); err != nil {
		return utils.EngineError(c, err)
	}
	task.Completed = !task.Completed

	tc.publish("task.completed", task)

	return c.JSON(taskResponse{Task: task, AccessType: decision.AccessType})
}

// DeleteTask removes the task and its shares. Deletion is owner/team-admin
// exclusive; shared access never qualifies.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, decision, err := tc.resolve(c, user.ID)
	if err != nil {
		return utils.EngineError(c, err)
	}
	if err := authz.Require(decision, authz.CapDelete); err != nil {
		return utils.EngineError(c, err)
	}

	// Collect the audience before the rows disappear
	audience, audErr := tc.Tasks.Audience(task)

	if err := tc.Tasks.Delete(task); err != nil {
		return utils.EngineError(c, err)
	}

	if audErr == nil {
		tc.Hub.Publish(TaskEvent{Event: "task.deleted", Task: task}, audience)
	}

	tc.Logger.Printf("task %d deleted by user %d (%s)", task.ID, user.ID, decision.AccessType)

	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

func (tc *TaskController) resolve(c *fiber.Ctx, userID uint) (*models.Task, authz.AccessDecision, error) {
	taskID, err := c.ParamsInt("id")
	if err != nil || taskID <= 0 {
		return nil, authz.AccessDecision{}, authz.BadRequest("invalid task ID")
	}

	task, err := tc.Tasks.Get(uint(taskID))
	if err != nil {
		return nil, authz.AccessDecision{}, err
	}

	decision, err := tc.Resolver.Resolve(userID, task.Ref())
	if err != nil {
		return nil, authz.AccessDecision{}, err
	}
	return task, decision, nil
}

func (tc *TaskController) publish(event string, task *models.Task) {
	audience, err := tc.Tasks.Audience(task)
	if err != nil {
		tc.Logger.Printf("failed to load audience for task %d: %v", task.ID, err)
		return
	}
	tc.Hub.Publish(TaskEvent{Event: event, Task: task}, audience)
}
