package routes

import (
	"miv-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes настраивает маршруты для чтения прогресса линий
func SetupProgressRoutes(app *fiber.App, progressController *controllers.ProgressController) {
	// GET /projects/:projectId/progress?line_no= - прогресс линии
	app.Get("/projects/:projectId/progress", progressController.GetLineProgress)

	// GET /projects/:projectId/progress/summary?line_no= - сводка линии
	app.Get("/projects/:projectId/progress/summary", progressController.GetLineSummary)

	// POST /projects/:projectId/progress/rebuild?line_no= - пересборка
	app.Post("/projects/:projectId/progress/rebuild", progressController.RebuildLineProgress)
}
