package controllers

import (
	"strconv"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SpoolController контроллер для управления складом катушек и раскроем
type SpoolController struct {
	SpoolService  *services.SpoolService
	OffcutService *services.OffcutService
}

// NewSpoolController создает новый экземпляр SpoolController
func NewSpoolController(spoolService *services.SpoolService, offcutService *services.OffcutService) *SpoolController {
	return &SpoolController{SpoolService: spoolService, OffcutService: offcutService}
}

// SpoolRequest структура запроса создания/обновления катушки
type SpoolRequest struct {
	services.SpoolInput
	Items []services.SpoolItemInput `json:"items"`
}

// SpoolResponse структура ответа с катушкой
type SpoolResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Spool   *models.Spool `json:"spool,omitempty"`
}

// SpoolItemsResponse структура ответа со складскими позициями
type SpoolItemsResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Items   []models.SpoolItem `json:"items"`
}

// SpoolIDsResponse структура ответа со списком тегов катушек
type SpoolIDsResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	IDs     []string `json:"ids"`
	NextID  string   `json:"next_id,omitempty"`
}

// OffcutPlanResponse структура ответа с планом раскроя
type OffcutPlanResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Plan    *services.OffcutPlan `json:"plan,omitempty"`
}

// GetCompatibleInventory возвращает складские позиции, совместимые с
// типом компонента и диаметром
func (sc *SpoolController) GetCompatibleInventory(c *fiber.Ctx) error {
	componentType := c.Query("type")

	var bore *float64
	if boreStr := c.Query("bore"); boreStr != "" {
		value, err := strconv.ParseFloat(boreStr, 64)
		if err != nil {
			return c.Status(400).JSON(SpoolItemsResponse{
				Success: false,
				Message: "Неверное значение диаметра",
			})
		}
		bore = &value
	}

	items, err := sc.SpoolService.GetCompatibleInventory(componentType, bore)
	if err != nil {
		return c.Status(statusForError(err)).JSON(SpoolItemsResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(SpoolItemsResponse{
		Success: true,
		Message: "Совместимые позиции успешно получены",
		Items:   items,
	})
}

// ProposeOffcutPlan строит рекомендательный план раскроя для линии
func (sc *SpoolController) ProposeOffcutPlan(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(OffcutPlanResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	lineNo := c.Query("line_no")
	if lineNo == "" {
		return c.Status(400).JSON(OffcutPlanResponse{
			Success: false,
			Message: "Параметр line_no обязателен",
		})
	}

	plan, err := sc.OffcutService.ProposeOffcutPlan(uint(projectID), lineNo)
	if err != nil {
		return c.Status(statusForError(err)).JSON(OffcutPlanResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(OffcutPlanResponse{
		Success: true,
		Message: "План раскроя успешно построен",
		Plan:    plan,
	})
}

// CreateSpool создает новую катушку с позициями
func (sc *SpoolController) CreateSpool(c *fiber.Ctx) error {
	var req SpoolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(SpoolResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	spool, err := sc.SpoolService.CreateSpool(req.SpoolInput, req.Items)
	if err != nil {
		return c.Status(statusForError(err)).JSON(SpoolResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.Status(201).JSON(SpoolResponse{
		Success: true,
		Message: "Катушка успешно создана",
		Spool:   spool,
	})
}

// UpdateSpool обновляет катушку и заменяет ее позиции
func (sc *SpoolController) UpdateSpool(c *fiber.Ctx) error {
	var req SpoolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(SpoolResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	spool, err := sc.SpoolService.UpdateSpool(c.Params("spoolId"), req.SpoolInput, req.Items)
	if err != nil {
		return c.Status(statusForError(err)).JSON(SpoolResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(SpoolResponse{
		Success: true,
		Message: "Катушка успешно обновлена",
		Spool:   spool,
	})
}

// GetSpool возвращает катушку по ее тегу
func (sc *SpoolController) GetSpool(c *fiber.Ctx) error {
	spool, err := sc.SpoolService.GetSpool(c.Params("spoolId"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(SpoolResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(SpoolResponse{
		Success: true,
		Message: "Катушка успешно получена",
		Spool:   spool,
	})
}

// ListSpoolIDs возвращает теги всех катушек и следующий свободный тег
func (sc *SpoolController) ListSpoolIDs(c *fiber.Ctx) error {
	ids, err := sc.SpoolService.ListSpoolIDs()
	if err != nil {
		return c.Status(500).JSON(SpoolIDsResponse{
			Success: false,
			Message: "Ошибка при получении тегов катушек",
		})
	}

	nextID, err := sc.SpoolService.GenerateNextSpoolID()
	if err != nil {
		return c.Status(500).JSON(SpoolIDsResponse{
			Success: false,
			Message: "Ошибка при генерации следующего тега",
		})
	}

	return c.JSON(SpoolIDsResponse{
		Success: true,
		Message: "Теги катушек успешно получены",
		IDs:     ids,
		NextID:  nextID,
	})
}
