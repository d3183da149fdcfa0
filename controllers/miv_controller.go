package controllers

import (
	"errors"
	"strconv"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/gofiber/fiber/v2"
)

// MIVController контроллер для управления записями MIV
type MIVController struct {
	MIVService *services.MIVService
}

// NewMIVController создает новый экземпляр MIVController
func NewMIVController(mivService *services.MIVService) *MIVController {
	return &MIVController{MIVService: mivService}
}

// RegisterMIVRequest структура запроса регистрации MIV
type RegisterMIVRequest struct {
	services.MIVForm
	DirectItems []services.DirectConsumptionInput `json:"direct_items"`
	SpoolItems  []services.SpoolWithdrawalInput   `json:"spool_items"`
}

// UpdateMIVItemsRequest структура запроса замены списаний MIV
type UpdateMIVItemsRequest struct {
	DirectItems []services.DirectConsumptionInput `json:"direct_items"`
	SpoolItems  []services.SpoolWithdrawalInput   `json:"spool_items"`
}

// MIVResponse структура ответа с записью MIV
type MIVResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	MIVID   uint              `json:"miv_id,omitempty"`
	Record  *models.MIVRecord `json:"record,omitempty"`
}

// MIVListResponse структура ответа со списком записей MIV
type MIVListResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Records []models.MIVRecord `json:"records"`
}

// statusForError сопоставляет ошибки движка с HTTP-кодами
func statusForError(err error) int {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var stockErr *services.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound
	case errors.As(err, &stockErr):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RegisterMIV регистрирует новую запись MIV со списаниями
func (mc *MIVController) RegisterMIV(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	var req RegisterMIVRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	mivID, err := mc.MIVService.RegisterMIV(uint(projectID), req.MIVForm, req.DirectItems, req.SpoolItems)
	if err != nil {
		return c.Status(statusForError(err)).JSON(MIVResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.Status(201).JSON(MIVResponse{
		Success: true,
		Message: "Запись MIV успешно зарегистрирована",
		MIVID:   mivID,
	})
}

// UpdateMIVItems заменяет списания записи MIV новым набором
func (mc *MIVController) UpdateMIVItems(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный ID записи",
		})
	}

	var req UpdateMIVItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := mc.MIVService.UpdateMIVItems(uint(recordID), req.DirectItems, req.SpoolItems); err != nil {
		return c.Status(statusForError(err)).JSON(MIVResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(MIVResponse{
		Success: true,
		Message: "Списания MIV успешно обновлены",
	})
}

// UpdateMIVHeader обновляет поля шапки записи MIV
func (mc *MIVController) UpdateMIVHeader(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный ID записи",
		})
	}

	var req services.MIVHeaderUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	user := c.Get("X-User", "system")
	if err := mc.MIVService.UpdateMIVHeader(uint(recordID), req, user); err != nil {
		return c.Status(statusForError(err)).JSON(MIVResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(MIVResponse{
		Success: true,
		Message: "Запись MIV успешно обновлена",
	})
}

// DeleteMIV удаляет запись MIV со всеми ее списаниями
func (mc *MIVController) DeleteMIV(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный ID записи",
		})
	}

	if err := mc.MIVService.DeleteMIV(uint(recordID)); err != nil {
		return c.Status(statusForError(err)).JSON(MIVResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(MIVResponse{
		Success: true,
		Message: "Запись MIV и связанные списания успешно удалены",
	})
}

// CopyLineRequest структура запроса копирования линии в другой проект
type CopyLineRequest struct {
	LineNo      string `json:"line_no"`
	ToProjectID uint   `json:"to_project_id"`
}

// CopyLineResponse структура ответа копирования линии
type CopyLineResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Copied  int    `json:"copied"`
}

// MIVItemsResponse структура ответа со списаниями записи MIV
type MIVItemsResponse struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	DirectItems map[uint]float64          `json:"direct_items"`
	SpoolItems  []models.SpoolConsumption `json:"spool_items"`
}

// GetMIVRecord возвращает запись MIV по ID
func (mc *MIVController) GetMIVRecord(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(MIVResponse{
			Success: false,
			Message: "Неверный ID записи",
		})
	}

	record, err := mc.MIVService.GetMIVRecord(uint(recordID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(MIVResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(MIVResponse{
		Success: true,
		Message: "Запись MIV успешно получена",
		Record:  record,
	})
}

// GetMIVItems возвращает текущие списания записи MIV для редактирования
func (mc *MIVController) GetMIVItems(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(MIVItemsResponse{
			Success: false,
			Message: "Неверный ID записи",
		})
	}

	if _, err := mc.MIVService.GetMIVRecord(uint(recordID)); err != nil {
		return c.Status(statusForError(err)).JSON(MIVItemsResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	direct, err := mc.MIVService.GetConsumptionsForMIV(uint(recordID))
	if err != nil {
		return c.Status(500).JSON(MIVItemsResponse{
			Success: false,
			Message: "Ошибка при получении списаний",
		})
	}

	spool, err := mc.MIVService.GetSpoolWithdrawalsForMIV(uint(recordID))
	if err != nil {
		return c.Status(500).JSON(MIVItemsResponse{
			Success: false,
			Message: "Ошибка при получении складских списаний",
		})
	}

	return c.JSON(MIVItemsResponse{
		Success:     true,
		Message:     "Списания MIV успешно получены",
		DirectItems: direct,
		SpoolItems:  spool,
	})
}

// CopyLineToProject копирует шапки записей MIV линии в другой проект
func (mc *MIVController) CopyLineToProject(c *fiber.Ctx) error {
	fromProjectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(CopyLineResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	var req CopyLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(CopyLineResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	user := c.Get("X-User", "system")
	copied, err := mc.MIVService.CopyLineToProject(req.LineNo, uint(fromProjectID), req.ToProjectID, user)
	if err != nil {
		return c.Status(statusForError(err)).JSON(CopyLineResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(CopyLineResponse{
		Success: true,
		Message: "Линия успешно скопирована",
		Copied:  copied,
	})
}

// FindDuplicateMIVRecords возвращает записи с повторяющимися значениями
// столбца
func (mc *MIVController) FindDuplicateMIVRecords(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(MIVListResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	column := c.Query("column", "miv_tag")
	records, err := mc.MIVService.FindDuplicateMIVRecords(uint(projectID), column)
	if err != nil {
		return c.Status(statusForError(err)).JSON(MIVListResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(MIVListResponse{
		Success: true,
		Message: "Поиск дубликатов успешно выполнен",
		Records: records,
	})
}

// ListMIVRecords возвращает записи MIV проекта с фильтрами
func (mc *MIVController) ListMIVRecords(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(c.Params("projectId"))
	if err != nil {
		return c.Status(400).JSON(MIVListResponse{
			Success: false,
			Message: "Неверный ID проекта",
		})
	}

	mode := c.Query("mode", "all")
	lineNo := c.Query("line_no")
	lastN := c.QueryInt("last", 0)

	records, err := mc.MIVService.ListMIVRecords(uint(projectID), mode, lineNo, lastN)
	if err != nil {
		return c.Status(500).JSON(MIVListResponse{
			Success: false,
			Message: "Ошибка при получении записей MIV",
		})
	}

	return c.JSON(MIVListResponse{
		Success: true,
		Message: "Записи MIV успешно получены",
		Records: records,
	})
}
