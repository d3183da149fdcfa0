package routes

import (
	"miv-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupMIVRoutes настраивает маршруты для управления записями MIV
func SetupMIVRoutes(app *fiber.App, mivController *controllers.MIVController) {
	// POST /projects/:projectId/miv - зарегистрировать запись MIV
	app.Post("/projects/:projectId/miv", mivController.RegisterMIV)

	// GET /projects/:projectId/miv - список записей MIV проекта
	app.Get("/projects/:projectId/miv", mivController.ListMIVRecords)

	// GET /projects/:projectId/miv/duplicates?column= - поиск дубликатов
	app.Get("/projects/:projectId/miv/duplicates", mivController.FindDuplicateMIVRecords)

	// POST /projects/:projectId/lines/copy - копировать линию в другой проект
	app.Post("/projects/:projectId/lines/copy", mivController.CopyLineToProject)

	miv := app.Group("/miv")

	// GET /miv/:id - получить запись по ID
	miv.Get("/:id", mivController.GetMIVRecord)

	// PUT /miv/:id - обновить поля шапки записи
	miv.Put("/:id", mivController.UpdateMIVHeader)

	// GET /miv/:id/items - текущие списания записи
	miv.Get("/:id/items", mivController.GetMIVItems)

	// PUT /miv/:id/items - заменить списания записи
	miv.Put("/:id/items", mivController.UpdateMIVItems)

	// DELETE /miv/:id - удалить запись со всеми списаниями
	miv.Delete("/:id", mivController.DeleteMIV)
}
