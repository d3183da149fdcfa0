package services

import (
	"errors"
	"fmt"
	"strings"

	"miv-backend/models"

	"gorm.io/gorm"
)

// SpoolService управляет справочником катушек и подбором совместимых
// складских позиций
type SpoolService struct {
	db *gorm.DB
}

// NewSpoolService создает новый сервис катушек
func NewSpoolService(db *gorm.DB) *SpoolService {
	return &SpoolService{db: db}
}

// SpoolInput — данные шапки катушки
type SpoolInput struct {
	SpoolID  string `json:"spool_id"`
	RowNo    string `json:"row_no"`
	LineNo   string `json:"line_no"`
	SheetNo  string `json:"sheet_no"`
	Location string `json:"location"`
	Command  string `json:"command"`
}

// SpoolItemInput — данные складской позиции катушки
type SpoolItemInput struct {
	ComponentType string   `json:"component_type"`
	ClassAngle    string   `json:"class_angle"`
	P1Bore        *float64 `json:"p1_bore"`
	P2Bore        *float64 `json:"p2_bore"`
	Material      string   `json:"material"`
	Schedule      string   `json:"schedule"`
	Thickness     *float64 `json:"thickness"`
	Length        float64  `json:"length"`
	QtyAvailable  float64  `json:"qty_available"`
	ItemCode      string   `json:"item_code"`
}

// GetCompatibleInventory возвращает складские позиции, совместимые с
// типом и диаметром позиции MTO. Используется та же функция
// эквивалентности, что и при пересборке прогресса.
func (s *SpoolService) GetCompatibleInventory(componentType string, bore *float64) ([]models.SpoolItem, error) {
	if strings.TrimSpace(componentType) == "" {
		return nil, &ValidationError{Field: "component_type", Message: "обязательное поле"}
	}

	query := s.db.Preload("Spool").
		Where("UPPER(TRIM(component_type)) IN ?", EquivalentTypes(componentType))
	if bore != nil {
		query = query.Where("p1_bore = ?", *bore)
	}

	var items []models.SpoolItem
	if err := query.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}

	// Позиции с нулевым остатком не предлагаются
	available := items[:0]
	for _, item := range items {
		if AvailableQty(&item) > 0 {
			available = append(available, item)
		}
	}

	return available, nil
}

// GetSpool возвращает катушку по ее тегу вместе с позициями
func (s *SpoolService) GetSpool(spoolID string) (*models.Spool, error) {
	var spool models.Spool
	err := s.db.Preload("Items").
		Where("spool_id = ?", strings.ToUpper(strings.TrimSpace(spoolID))).
		First(&spool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "spool", Tag: strings.ToUpper(strings.TrimSpace(spoolID))}
		}
		return nil, err
	}
	return &spool, nil
}

// ListSpoolIDs возвращает теги всех катушек
func (s *SpoolService) ListSpoolIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Spool{}).Order("spool_id").Pluck("spool_id", &ids).Error
	return ids, err
}

// GenerateNextSpoolID генерирует следующий свободный тег катушки
// в формате SP-NNNN
func (s *SpoolService) GenerateNextSpoolID() (string, error) {
	var ids []string
	if err := s.db.Model(&models.Spool{}).Where("spool_id LIKE ?", "SP-%").
		Pluck("spool_id", &ids).Error; err != nil {
		return "", err
	}

	max := 0
	for _, id := range ids {
		var n int
		if _, err := fmt.Sscanf(id, "SP-%d", &n); err == nil && n > max {
			max = n
		}
	}

	return fmt.Sprintf("SP-%04d", max+1), nil
}

// CreateSpool создает катушку вместе с позициями в одной транзакции
func (s *SpoolService) CreateSpool(input SpoolInput, items []SpoolItemInput) (*models.Spool, error) {
	spoolID := strings.ToUpper(strings.TrimSpace(input.SpoolID))
	if spoolID == "" {
		return nil, &ValidationError{Field: "spool_id", Message: "обязательное поле"}
	}

	spool := models.Spool{
		SpoolID:  spoolID,
		RowNo:    input.RowNo,
		LineNo:   input.LineNo,
		SheetNo:  input.SheetNo,
		Location: input.Location,
		Command:  input.Command,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Spool{}).Where("spool_id = ?", spoolID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ValidationError{Field: "spool_id",
				Message: fmt.Sprintf("катушка '%s' уже существует", spoolID)}
		}

		if err := tx.Create(&spool).Error; err != nil {
			return err
		}

		return createSpoolItems(tx, spool.ID, items)
	})
	if err != nil {
		return nil, err
	}

	return s.GetSpool(spoolID)
}

// UpdateSpool обновляет шапку катушки и заменяет ее позиции новым
// набором. Замена запрещена, если по позициям катушки уже есть списания:
// иначе нарушился бы баланс «остаток + списания = исходный запас».
func (s *SpoolService) UpdateSpool(spoolID string, input SpoolInput, items []SpoolItemInput) (*models.Spool, error) {
	spool, err := s.GetSpool(spoolID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var consumed int64
		err := tx.Model(&models.SpoolConsumption{}).
			Where("spool_id_fk = ?", spool.ID).Count(&consumed).Error
		if err != nil {
			return err
		}
		if consumed > 0 {
			return &ValidationError{Field: "spool_id",
				Message: fmt.Sprintf("по катушке '%s' уже есть списания, позиции менять нельзя", spool.SpoolID)}
		}

		spool.RowNo = input.RowNo
		spool.LineNo = input.LineNo
		spool.SheetNo = input.SheetNo
		spool.Location = input.Location
		spool.Command = input.Command
		if err := tx.Save(spool).Error; err != nil {
			return err
		}

		if err := tx.Where("spool_id_fk = ?", spool.ID).Delete(&models.SpoolItem{}).Error; err != nil {
			return err
		}

		return createSpoolItems(tx, spool.ID, items)
	})
	if err != nil {
		return nil, err
	}

	return s.GetSpool(spool.SpoolID)
}

func createSpoolItems(tx *gorm.DB, spoolID uint, items []SpoolItemInput) error {
	for _, input := range items {
		if strings.TrimSpace(input.ComponentType) == "" {
			return &ValidationError{Field: "component_type", Message: "обязательное поле"}
		}

		item := models.SpoolItem{
			SpoolIDFK:     spoolID,
			ComponentType: NormalizeComponentType(input.ComponentType),
			ClassAngle:    input.ClassAngle,
			P1Bore:        input.P1Bore,
			P2Bore:        input.P2Bore,
			Material:      input.Material,
			Schedule:      input.Schedule,
			Thickness:     input.Thickness,
			Length:        input.Length,
			QtyAvailable:  input.QtyAvailable,
			ItemCode:      input.ItemCode,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}
