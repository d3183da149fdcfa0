package controllers

import (
	"strconv"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ProjectController контроллер для управления проектами и линиями
type ProjectController struct {
	ProjectService *services.ProjectService
}

// NewProjectController создает новый экземпляр ProjectController
func NewProjectController(projectService *services.ProjectService) *ProjectController {
	return &ProjectController{ProjectService: projectService}
}

// ProjectRequest структура запроса создания/переименования проекта
type ProjectRequest struct {
	Name string `json:"name"`
}

// ProjectResponse структура ответа с проектом
type ProjectResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Project *models.Project `json:"project,omitempty"`
}

// ProjectsResponse структура ответа со списком проектов
type ProjectsResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Projects []models.Project `json:"projects"`
}

// LinesResponse структура ответа со списком линий проекта
type LinesResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Lines   []string `json:"lines"`
}

// SuggestionsResponse структура ответа с подсказками номеров линий
type SuggestionsResponse struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	Suggestions []services.LineSuggestion `json:"suggestions"`
}

// AnalyticsResponse структура ответа с аналитикой проекта
type AnalyticsResponse struct {
	Success   bool                       `json:"success"`
	Message   string                     `json:"message"`
	Analytics *services.ProjectAnalytics `json:"analytics,omitempty"`
}

// ListProjects возвращает список всех проектов
func (pc *ProjectController) ListProjects(c *fiber.Ctx) error {
	projects, err := pc.ProjectService.ListProjects()
	if err != nil {
		return c.Status(500).JSON(ProjectsResponse{
			Success: false,
			Message: "Ошибка при получении проектов",
		})
	}

	return c.JSON(ProjectsResponse{
		Success:  true,
		Message:  "Проекты успешно получены",
		Projects: projects,
	})
}

// CreateProject создает новый проект
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(ProjectResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	project, err := pc.ProjectService.CreateProject(req.Name)
	if err != nil {
		return c.Status(statusForError(err)).JSON(ProjectResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.Status(201).JSON(ProjectResponse{
		Success: true,
		Message: "Проект успешно создан",
		Project: project,
	})
}

// RenameProject переименовывает проект
func (pc *ProjectController) RenameProject(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(ProjectResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(ProjectResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := pc.ProjectService.RenameProject(uint(projectID), req.Name); err != nil {
		return c.Status(statusForError(err)).JSON(ProjectResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(ProjectResponse{
		Success: true,
		Message: "Проект успешно переименован",
	})
}

// GetProjectLines возвращает уникальные номера линий проекта
func (pc *ProjectController) GetProjectLines(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(LinesResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	lines, err := pc.ProjectService.GetLinesForProject(uint(projectID))
	if err != nil {
		return c.Status(500).JSON(LinesResponse{
			Success: false,
			Message: "Ошибка при получении линий проекта",
		})
	}

	return c.JSON(LinesResponse{
		Success: true,
		Message: "Линии проекта успешно получены",
		Lines:   lines,
	})
}

// SuggestLines возвращает подсказки номеров линий по введенному тексту
func (pc *ProjectController) SuggestLines(c *fiber.Ctx) error {
	suggestions, err := pc.ProjectService.SuggestLineNumbers(c.Query("q"), c.QueryInt("top", 7))
	if err != nil {
		return c.Status(500).JSON(SuggestionsResponse{
			Success: false,
			Message: "Ошибка при поиске подсказок",
		})
	}

	return c.JSON(SuggestionsResponse{
		Success:     true,
		Message:     "Подсказки успешно получены",
		Suggestions: suggestions,
	})
}

// GetProjectAnalytics возвращает аналитику проекта
func (pc *ProjectController) GetProjectAnalytics(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(AnalyticsResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	analytics, err := pc.ProjectService.GetProjectAnalytics(uint(projectID))
	if err != nil {
		return c.Status(500).JSON(AnalyticsResponse{
			Success: false,
			Message: "Ошибка при получении аналитики проекта",
		})
	}

	return c.JSON(AnalyticsResponse{
		Success:   true,
		Message:   "Аналитика проекта успешно получена",
		Analytics: analytics,
	})
}
