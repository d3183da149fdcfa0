package routes

import (
	"miv-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupSpoolRoutes настраивает маршруты для склада катушек и раскроя
func SetupSpoolRoutes(app *fiber.App, spoolController *controllers.SpoolController) {
	spools := app.Group("/spools")

	// GET /spools/ids - теги всех катушек (до параметрического маршрута)
	spools.Get("/ids", spoolController.ListSpoolIDs)

	// POST /spools - создать катушку
	spools.Post("/", spoolController.CreateSpool)

	// GET /spools/:spoolId - получить катушку по тегу
	spools.Get("/:spoolId", spoolController.GetSpool)

	// PUT /spools/:spoolId - обновить катушку
	spools.Put("/:spoolId", spoolController.UpdateSpool)

	// GET /spool-items/compatible?type=&bore= - совместимые позиции
	app.Get("/spool-items/compatible", spoolController.GetCompatibleInventory)

	// GET /projects/:projectId/offcut-plan?line_no= - план раскроя
	app.Get("/projects/:projectId/offcut-plan", spoolController.ProposeOffcutPlan)
}
