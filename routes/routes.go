package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "taskhive/controllers"
	"taskhive/authz"
	"taskhive/middleware"
	"taskhive/store"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Stores and the engine
	teams := store.NewTeamStore(db)
	tasks := store.NewTaskStore(db)
	shares := store.NewShareStore(db)
	resolver := authz.NewResolver(store.NewDirectory(db))
	hub := controller.NewEventHub()

	taskController := controller.NewTaskController(tasks, resolver, hub, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	teamController := controller.NewTeamController(teams, tasks, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	shareController := controller.NewShareController(tasks, shares, resolver, log.New(os.Stdout, "SHARE: ", log.LstdFlags))

	// Public auth endpoints (no authentication required)
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Task event stream. Registered before /tasks/:id so "events" never
	// matches as an id.
	api.Use("/tasks/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/tasks/events", websocket.New(controller.HandleTaskEventsWS(hub)))

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/", taskController.GetTasks)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Patch("/:id/toggle", taskController.ToggleTask)
	task.Delete("/:id", taskController.DeleteTask)

	// Sharing routes with rate limiting on mutations
	task.Get("/:id/shares", shareController.GetShares)
	task.Post("/:id/shares", middleware.MutationRateLimiter(), shareController.CreateShare)
	task.Delete("/:id/shares/:userID", middleware.MutationRateLimiter(), shareController.RevokeShare)

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)
	team.Get("/:id/tasks", teamController.GetTeamTasks)
	team.Post("/:id/leave", teamController.LeaveTeam)

	// Membership routes
	team.Post("/:id/members", middleware.MutationRateLimiter(), teamController.AddMember)
	team.Put("/:id/members/:userID", middleware.MutationRateLimiter(), teamController.ChangeMemberRole)
	team.Delete("/:id/members/:userID", middleware.MutationRateLimiter(), teamController.RemoveMember)
}
