package main

import (
	"miv-backend/controllers"
	"miv-backend/models"
	"miv-backend/routes"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("Failed to connect to test database")
	}

	// Автомиграция
	db.AutoMigrate(&models.Project{}, &models.MTOItem{}, &models.MTOConsumption{}, &models.MTOProgress{}, &models.MIVRecord{}, &models.Spool{}, &models.SpoolItem{}, &models.SpoolConsumption{})

	return db
}

// newTestServices создает сервисы движка поверх тестовой базы
func newTestServices(db *gorm.DB) (*services.MIVService, *services.ProgressService, *services.SpoolService, *services.OffcutService) {
	progressService := services.NewProgressService(db)
	mivService := services.NewMIVService(db, progressService, services.MIVHooks{})
	spoolService := services.NewSpoolService(db)
	offcutService := services.NewOffcutService(db, progressService, spoolService)
	return mivService, progressService, spoolService, offcutService
}

// createTestApp создает тестовое приложение со всеми маршрутами
func createTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New()

	mivService, progressService, spoolService, offcutService := newTestServices(db)
	projectService := services.NewProjectService(db)

	routes.SetupProjectRoutes(app, controllers.NewProjectController(projectService))
	routes.SetupMIVRoutes(app, controllers.NewMIVController(mivService))
	routes.SetupProgressRoutes(app, controllers.NewProgressController(progressService))
	routes.SetupSpoolRoutes(app, controllers.NewSpoolController(spoolService, offcutService))

	return app
}

// createTestProject создает тестовый проект
func createTestProject(db *gorm.DB, name string) *models.Project {
	project := models.Project{Name: name}
	db.Create(&project)
	return &project
}

// createTestMTOItem создает тестовую позицию MTO
func createTestMTOItem(db *gorm.DB, projectID uint, lineNo, itemType, itemCode string, bore *float64, lengthM, quantity float64) *models.MTOItem {
	item := models.MTOItem{
		ProjectID: projectID,
		LineNo:    lineNo,
		ItemType:  itemType,
		ItemCode:  itemCode,
		P1BoreIn:  bore,
		LengthM:   lengthM,
		Quantity:  quantity,
	}
	db.Create(&item)
	return &item
}

// createTestSpool создает тестовую катушку
func createTestSpool(db *gorm.DB, spoolID string) *models.Spool {
	spool := models.Spool{SpoolID: spoolID, Location: "YARD-1"}
	db.Create(&spool)
	return &spool
}

// createTestSpoolItem создает тестовую складскую позицию
func createTestSpoolItem(db *gorm.DB, spoolID uint, componentType string, bore *float64, length, qty float64) *models.SpoolItem {
	item := models.SpoolItem{
		SpoolIDFK:     spoolID,
		ComponentType: componentType,
		P1Bore:        bore,
		Length:        length,
		QtyAvailable:  qty,
	}
	db.Create(&item)
	return &item
}

// floatPtr возвращает указатель на значение
func floatPtr(v float64) *float64 {
	return &v
}
