package main

import (
	"log"
	"os"
	"time"

	"miv-backend/controllers"
	"miv-backend/models"
	"miv-backend/routes"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	// Проверка таблицы синонимов до открытия базы
	if err := services.ValidateAliasTable(); err != nil {
		log.Fatal("Некорректная таблица синонимов компонентов: ", err)
	}

	// Инициализация базы данных
	db, err := models.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Автомиграция
	db.AutoMigrate(&models.Project{}, &models.MTOItem{}, &models.MTOConsumption{}, &models.MTOProgress{}, &models.MIVRecord{}, &models.Spool{}, &models.SpoolItem{}, &models.SpoolConsumption{})

	// Создание Fiber приложения
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	// CORS настройки
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-User",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Внешние обработчики: журналирование действий не персистентно и
	// никогда не влияет на исход транзакций
	hooks := services.MIVHooks{
		Activity: func(user, action, details string) {
			log.Printf("[activity] %s %s: %s", user, action, details)
		},
	}

	// Инициализация сервисов
	progressService := services.NewProgressService(db)
	mivService := services.NewMIVService(db, progressService, hooks)
	spoolService := services.NewSpoolService(db)
	offcutService := services.NewOffcutService(db, progressService, spoolService)
	projectService := services.NewProjectService(db)

	// Инициализация контроллеров
	mivController := controllers.NewMIVController(mivService)
	progressController := controllers.NewProgressController(progressService)
	spoolController := controllers.NewSpoolController(spoolService, offcutService)
	projectController := controllers.NewProjectController(projectService)

	// Настройка маршрутов
	routes.SetupProjectRoutes(app, projectController)
	routes.SetupMIVRoutes(app, mivController)
	routes.SetupProgressRoutes(app, progressController)
	routes.SetupSpoolRoutes(app, spoolController)

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "MIV Backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	// Запуск сервера
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
