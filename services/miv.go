package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"miv-backend/models"

	"gorm.io/gorm"
)

// MIVHooks — внешние обработчики, вызываемые после коммита транзакции.
// Ошибки обработчиков логируются и никогда не влияют на исход операции.
type MIVHooks struct {
	// Activity вызывается для журналирования значимых действий
	Activity func(user, action, details string)
	// AnomalyCheck вызывается для каждой строки прямого списания
	AnomalyCheck func(mivRecordID, mtoItemID uint, usedQty float64) error
}

// MIVService координирует атомарные операции регистрации, редактирования
// и удаления MIV поверх журналов списаний и складского пула
type MIVService struct {
	db       *gorm.DB
	progress *ProgressService
	hooks    MIVHooks
}

// NewMIVService создает новый сервис MIV
func NewMIVService(db *gorm.DB, progress *ProgressService, hooks MIVHooks) *MIVService {
	return &MIVService{db: db, progress: progress, hooks: hooks}
}

// MIVForm — данные шапки записи MIV
type MIVForm struct {
	LineNo        string `json:"line_no"`
	MIVTag        string `json:"miv_tag"`
	Location      string `json:"location"`
	Status        string `json:"status"`
	RegisteredFor string `json:"registered_for"`
	RegisteredBy  string `json:"registered_by"`
	IsComplete    bool   `json:"is_complete"`
}

// DirectConsumptionInput — строка прямого списания с позиции MTO
type DirectConsumptionInput struct {
	MTOItemID uint    `json:"mto_item_id"`
	UsedQty   float64 `json:"used_qty"`
}

// SpoolWithdrawalInput — строка списания со складской позиции
type SpoolWithdrawalInput struct {
	SpoolItemID uint    `json:"spool_item_id"`
	UsedQty     float64 `json:"used_qty"`
}

// MIVHeaderUpdate — частичное обновление полей шапки MIV
type MIVHeaderUpdate struct {
	Location      *string `json:"location"`
	Status        *string `json:"status"`
	RegisteredFor *string `json:"registered_for"`
	IsComplete    *bool   `json:"is_complete"`
}

// RegisterMIV регистрирует запись MIV вместе со списаниями в одной
// транзакции. Любая ошибка откатывает и шапку, и все списания — частично
// примененных состояний не бывает. Возвращает ID созданной записи.
func (s *MIVService) RegisterMIV(projectID uint, form MIVForm, direct []DirectConsumptionInput, spool []SpoolWithdrawalInput) (uint, error) {
	if strings.TrimSpace(form.LineNo) == "" {
		return 0, &ValidationError{Field: "line_no", Message: "обязательное поле"}
	}
	if strings.TrimSpace(form.MIVTag) == "" {
		return 0, &ValidationError{Field: "miv_tag", Message: "обязательное поле"}
	}

	record := models.MIVRecord{
		ProjectID:     projectID,
		LineNo:        strings.TrimSpace(form.LineNo),
		MIVTag:        strings.TrimSpace(form.MIVTag),
		Location:      form.Location,
		Status:        form.Status,
		RegisteredFor: form.RegisteredFor,
		RegisteredBy:  form.RegisteredBy,
		IsComplete:    form.IsComplete,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Проверка уникальности тега внутри транзакции
	var duplicates int64
	if err := tx.Model(&models.MIVRecord{}).
		Where("project_id = ? AND miv_tag = ?", projectID, record.MIVTag).
		Count(&duplicates).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if duplicates > 0 {
		tx.Rollback()
		return 0, &ValidationError{Field: "miv_tag",
			Message: fmt.Sprintf("тег '%s' уже используется в этом проекте", record.MIVTag)}
	}

	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := s.writeConsumptions(tx, &record, direct, spool); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	s.afterLedgerChange(&record, direct, "REGISTER_MIV",
		fmt.Sprintf("MIV tag '%s' for line '%s' in project %d", record.MIVTag, record.LineNo, projectID))

	return record.ID, nil
}

// UpdateMIVItems заменяет все списания записи MIV новым набором.
// Вместо вычисления разницы применяется стратегия «удалить и создать
// заново»: все складские списания компенсируются, журналы очищаются и
// наполняются новым набором — в той же транзакции.
func (s *MIVService) UpdateMIVItems(recordID uint, direct []DirectConsumptionInput, spool []SpoolWithdrawalInput) error {
	var record models.MIVRecord
	if err := s.db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "MIV record", ID: recordID}
		}
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.reverseConsumptions(tx, recordID); err != nil {
		tx.Rollback()
		return err
	}

	if err := s.writeConsumptions(tx, &record, direct, spool); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.afterLedgerChange(&record, direct, "UPDATE_MIV_ITEMS",
		fmt.Sprintf("consumption items replaced for MIV %d", recordID))

	return nil
}

// UpdateMIVHeader обновляет поля шапки записи MIV без изменения списаний
func (s *MIVService) UpdateMIVHeader(recordID uint, update MIVHeaderUpdate, user string) error {
	var record models.MIVRecord
	if err := s.db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "MIV record", ID: recordID}
		}
		return err
	}

	if update.Location != nil {
		record.Location = *update.Location
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.RegisteredFor != nil {
		record.RegisteredFor = *update.RegisteredFor
	}
	if update.IsComplete != nil {
		record.IsComplete = *update.IsComplete
	}

	if err := s.db.Save(&record).Error; err != nil {
		return err
	}

	s.runActivityHook(user, "UPDATE_MIV",
		fmt.Sprintf("record %d updated in project %d, line %s", recordID, record.ProjectID, record.LineNo))

	return nil
}

// DeleteMIV удаляет запись MIV, компенсирует все складские списания и
// очищает журналы — в одной транзакции
func (s *MIVService) DeleteMIV(recordID uint) error {
	var record models.MIVRecord
	if err := s.db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "MIV record", ID: recordID}
		}
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.reverseConsumptions(tx, recordID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&models.MIVRecord{}, recordID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	if err := s.progress.RebuildLineProgress(record.ProjectID, record.LineNo); err != nil {
		log.Printf("Ошибка при пересборке прогресса линии %s: %v", record.LineNo, err)
	}

	s.runActivityHook(record.RegisteredBy, "DELETE_MIV",
		fmt.Sprintf("deleted MIV record %d (tag: %s) from project %d, line %s",
			recordID, record.MIVTag, record.ProjectID, record.LineNo))

	return nil
}

// GetMIVRecord возвращает запись MIV по ID
func (s *MIVService) GetMIVRecord(recordID uint) (*models.MIVRecord, error) {
	var record models.MIVRecord
	if err := s.db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "MIV record", ID: recordID}
		}
		return nil, err
	}
	return &record, nil
}

// ListMIVRecords возвращает записи MIV проекта с фильтрами по статусу
// завершенности, линии и количеству последних записей
func (s *MIVService) ListMIVRecords(projectID uint, mode, lineNo string, lastN int) ([]models.MIVRecord, error) {
	query := s.db.Where("project_id = ?", projectID)

	switch mode {
	case "complete":
		query = query.Where("is_complete = ?", true)
	case "incomplete":
		query = query.Where("is_complete = ?", false)
	}

	if lineNo != "" {
		query = query.Where("line_no = ?", lineNo)
	}

	query = query.Order("last_updated DESC")
	if lastN > 0 {
		query = query.Limit(lastN)
	}

	var records []models.MIVRecord
	err := query.Find(&records).Error
	return records, err
}

// GetConsumptionsForMIV возвращает прямые списания записи MIV в виде
// отображения mto_item_id -> used_qty
func (s *MIVService) GetConsumptionsForMIV(recordID uint) (map[uint]float64, error) {
	var consumptions []models.MTOConsumption
	if err := s.db.Where("miv_record_id = ?", recordID).Find(&consumptions).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]float64, len(consumptions))
	for _, c := range consumptions {
		result[c.MTOItemID] += c.UsedQty
	}
	return result, nil
}

// CopyLineToProject копирует шапки всех записей MIV линии из одного
// проекта в другой. Списания не копируются: журналы исходного проекта
// остаются единственным источником истины, а скопированные записи
// получают тег с суффиксом, чтобы не нарушить уникальность.
func (s *MIVService) CopyLineToProject(lineNo string, fromProjectID, toProjectID uint, user string) (int, error) {
	if strings.TrimSpace(lineNo) == "" {
		return 0, &ValidationError{Field: "line_no", Message: "обязательное поле"}
	}
	if fromProjectID == toProjectID {
		return 0, &ValidationError{Field: "to_project_id", Message: "проекты источника и назначения совпадают"}
	}

	var target models.Project
	if err := s.db.First(&target, toProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Entity: "project", ID: toProjectID}
		}
		return 0, err
	}

	var records []models.MIVRecord
	err := s.db.Where("project_id = ? AND line_no = ?", fromProjectID, lineNo).
		Find(&records).Error
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, &NotFoundError{Entity: "MIV records for line", Tag: lineNo}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			copied := models.MIVRecord{
				ProjectID:     toProjectID,
				LineNo:        record.LineNo,
				MIVTag:        fmt.Sprintf("%s-COPY-%d", record.MIVTag, time.Now().UnixNano()),
				Location:      record.Location,
				Status:        record.Status,
				Comment:       fmt.Sprintf("Copied from project ID %d", fromProjectID),
				RegisteredFor: record.RegisteredFor,
				RegisteredBy:  user,
				IsComplete:    record.IsComplete,
			}
			if err := tx.Create(&copied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.runActivityHook(user, "COPY_LINE",
		fmt.Sprintf("line '%s' copied from project %d to %d", lineNo, fromProjectID, toProjectID))

	return len(records), nil
}

// duplicateCheckColumns — столбцы MIVRecord, по которым разрешен поиск
// повторяющихся значений
var duplicateCheckColumns = map[string]bool{
	"miv_tag":        true,
	"line_no":        true,
	"location":       true,
	"status":         true,
	"registered_for": true,
	"registered_by":  true,
}

// FindDuplicateMIVRecords возвращает записи MIV проекта, у которых
// значение указанного столбца встречается более одного раза
func (s *MIVService) FindDuplicateMIVRecords(projectID uint, column string) ([]models.MIVRecord, error) {
	if !duplicateCheckColumns[column] {
		return nil, &ValidationError{Field: "column",
			Message: fmt.Sprintf("поиск дубликатов по столбцу '%s' не поддерживается", column)}
	}

	duplicated := s.db.Model(&models.MIVRecord{}).
		Select(column).
		Where("project_id = ?", projectID).
		Group(column).
		Having("COUNT(id) > 1")

	var records []models.MIVRecord
	err := s.db.Where("project_id = ?", projectID).
		Where(column+" IN (?)", duplicated).
		Order(column).Find(&records).Error
	return records, err
}

// GetSpoolWithdrawalsForMIV возвращает складские списания записи MIV
func (s *MIVService) GetSpoolWithdrawalsForMIV(recordID uint) ([]models.SpoolConsumption, error) {
	var consumptions []models.SpoolConsumption
	err := s.db.Where("miv_record_id = ?", recordID).Find(&consumptions).Error
	return consumptions, err
}

// IsDuplicateMIVTag проверяет, занят ли тег MIV в проекте
func (s *MIVService) IsDuplicateMIVTag(projectID uint, mivTag string) (bool, error) {
	var count int64
	err := s.db.Model(&models.MIVRecord{}).
		Where("project_id = ? AND miv_tag = ?", projectID, strings.TrimSpace(mivTag)).
		Count(&count).Error
	return count > 0, err
}

// writeConsumptions выполняет шаги 2–4 регистрации: создает строки
// прямых списаний, списывает складские позиции и обновляет производный
// комментарий шапки. Вызывается внутри открытой транзакции.
func (s *MIVService) writeConsumptions(tx *gorm.DB, record *models.MIVRecord, direct []DirectConsumptionInput, spool []SpoolWithdrawalInput) error {
	var commentParts []string

	for _, input := range direct {
		var item models.MTOItem
		if err := tx.First(&item, input.MTOItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "MTO item", ID: input.MTOItemID}
			}
			return err
		}
		if item.ProjectID != record.ProjectID {
			return &ConsistencyError{Message: fmt.Sprintf(
				"MTO item %d belongs to project %d, not %d", item.ID, item.ProjectID, record.ProjectID)}
		}
		if input.UsedQty <= 0 {
			return &ValidationError{Field: "used_qty", Message: "количество списания должно быть положительным"}
		}

		consumption := models.MTOConsumption{
			MTOItemID:   item.ID,
			MIVRecordID: record.ID,
			UsedQty:     input.UsedQty,
		}
		if err := tx.Create(&consumption).Error; err != nil {
			return err
		}

		label := item.ItemCode
		if label == "" {
			label = item.Description
		}
		commentParts = append(commentParts, fmt.Sprintf("%.2f x %s", input.UsedQty, label))
	}

	for _, input := range spool {
		consumption, err := AllocateSpoolItem(tx, record.ID, input.SpoolItemID, input.UsedQty)
		if err != nil {
			return err
		}

		var item models.SpoolItem
		if err := tx.Preload("Spool").First(&item, consumption.SpoolItemID).Error; err != nil {
			return err
		}
		label := item.ItemCode
		if label == "" {
			label = item.ComponentType
		}
		commentParts = append(commentParts,
			fmt.Sprintf("%.2f x %s [spool %s]", input.UsedQty, label, item.Spool.SpoolID))
	}

	// Комментарий — производная сводка списаний, не источник истины
	record.Comment = strings.Join(commentParts, ", ")
	return tx.Model(&models.MIVRecord{}).Where("id = ?", record.ID).
		Update("comment", record.Comment).Error
}

// reverseConsumptions компенсирует все складские списания записи MIV и
// удаляет строки обоих журналов. Вызывается внутри открытой транзакции.
func (s *MIVService) reverseConsumptions(tx *gorm.DB, recordID uint) error {
	var spoolConsumptions []models.SpoolConsumption
	if err := tx.Where("miv_record_id = ?", recordID).Find(&spoolConsumptions).Error; err != nil {
		return err
	}

	for i := range spoolConsumptions {
		if err := CompensateSpoolConsumption(tx, &spoolConsumptions[i]); err != nil {
			return err
		}
		// Запись удаляется сразу после компенсации, чтобы исключить
		// повторный возврат
		if err := tx.Delete(&models.SpoolConsumption{}, spoolConsumptions[i].ID).Error; err != nil {
			return err
		}
	}

	return tx.Where("miv_record_id = ?", recordID).Delete(&models.MTOConsumption{}).Error
}

// afterLedgerChange выполняет необязательные действия после коммита:
// пересборку прогресса линии и внешние обработчики. Их ошибки не могут
// откатить уже зафиксированную транзакцию.
func (s *MIVService) afterLedgerChange(record *models.MIVRecord, direct []DirectConsumptionInput, action, details string) {
	if err := s.progress.RebuildLineProgress(record.ProjectID, record.LineNo); err != nil {
		log.Printf("Ошибка при пересборке прогресса линии %s: %v", record.LineNo, err)
	}

	if s.hooks.AnomalyCheck != nil {
		for _, input := range direct {
			if err := s.hooks.AnomalyCheck(record.ID, input.MTOItemID, input.UsedQty); err != nil {
				log.Printf("Ошибка проверки аномалий для MIV %d: %v", record.ID, err)
			}
		}
	}

	s.runActivityHook(record.RegisteredBy, action, details)
}

func (s *MIVService) runActivityHook(user, action, details string) {
	if s.hooks.Activity != nil {
		s.hooks.Activity(user, action, details)
	}
}
