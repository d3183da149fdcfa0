package routes

import (
	"miv-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupProjectRoutes настраивает маршруты для управления проектами
func SetupProjectRoutes(app *fiber.App, projectController *controllers.ProjectController) {
	projects := app.Group("/projects")

	// GET /projects - список проектов
	projects.Get("/", projectController.ListProjects)

	// POST /projects - создать проект
	projects.Post("/", projectController.CreateProject)

	// PUT /projects/:projectId - переименовать проект
	projects.Put("/:projectId", projectController.RenameProject)

	// GET /projects/:projectId/lines - номера линий проекта
	projects.Get("/:projectId/lines", projectController.GetProjectLines)

	// GET /projects/:projectId/analytics - аналитика проекта
	projects.Get("/:projectId/analytics", projectController.GetProjectAnalytics)

	// GET /lines/suggestions?q= - подсказки номеров линий по всем проектам
	app.Get("/lines/suggestions", projectController.SuggestLines)
}
