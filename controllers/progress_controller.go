package controllers

import (
	"strconv"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ProgressController контроллер для чтения прогресса линий
type ProgressController struct {
	ProgressService *services.ProgressService
}

// NewProgressController создает новый экземпляр ProgressController
func NewProgressController(progressService *services.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ProgressResponse структура ответа со строками прогресса линии
type ProgressResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Items   []models.MTOProgress `json:"items"`
}

// EnrichedProgressResponse структура ответа с расширенным прогрессом линии
type EnrichedProgressResponse struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	Items   []services.EnrichedProgress `json:"items"`
}

// LineSummaryResponse структура ответа со сводкой готовности линии
type LineSummaryResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Summary *services.LineSummary `json:"summary,omitempty"`
}

// GetLineProgress возвращает строки прогресса линии проекта
func (pc *ProgressController) GetLineProgress(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(ProgressResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	lineNo := c.Query("line_no")
	if lineNo == "" {
		return c.Status(400).JSON(ProgressResponse{
			Success: false,
			Message: "Параметр line_no обязателен",
		})
	}

	if c.QueryBool("enriched", false) {
		items, err := pc.ProgressService.GetEnrichedLineProgress(uint(projectID), lineNo)
		if err != nil {
			return c.Status(statusForError(err)).JSON(EnrichedProgressResponse{
				Success: false,
				Message: err.Error(),
			})
		}
		return c.JSON(EnrichedProgressResponse{
			Success: true,
			Message: "Прогресс линии успешно получен",
			Items:   items,
		})
	}

	items, err := pc.ProgressService.GetLineProgress(uint(projectID), lineNo)
	if err != nil {
		return c.Status(statusForError(err)).JSON(ProgressResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(ProgressResponse{
		Success: true,
		Message: "Прогресс линии успешно получен",
		Items:   items,
	})
}

// GetLineSummary возвращает сводную готовность линии
func (pc *ProgressController) GetLineSummary(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(LineSummaryResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	lineNo := c.Query("line_no")
	if lineNo == "" {
		return c.Status(400).JSON(LineSummaryResponse{
			Success: false,
			Message: "Параметр line_no обязателен",
		})
	}

	summary, err := pc.ProgressService.GetLineSummary(uint(projectID), lineNo)
	if err != nil {
		return c.Status(statusForError(err)).JSON(LineSummaryResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(LineSummaryResponse{
		Success: true,
		Message: "Сводка линии успешно получена",
		Summary: summary,
	})
}

// RebuildLineProgress принудительно пересобирает прогресс линии
func (pc *ProgressController) RebuildLineProgress(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(ProgressResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	lineNo := c.Query("line_no")
	if lineNo == "" {
		return c.Status(400).JSON(ProgressResponse{
			Success: false,
			Message: "Параметр line_no обязателен",
		})
	}

	if err := pc.ProgressService.RebuildLineProgress(uint(projectID), lineNo); err != nil {
		return c.Status(statusForError(err)).JSON(ProgressResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(ProgressResponse{
		Success: true,
		Message: "Прогресс линии успешно пересобран",
	})
}
