package services

import (
	"time"

	"miv-backend/models"

	"gorm.io/gorm"
)

// ProgressService пересобирает и читает производную таблицу прогресса MTO
type ProgressService struct {
	db *gorm.DB
}

// NewProgressService создает новый сервис прогресса
func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// EnrichedProgress — строка прогресса, дополненная диаметром и типом
// позиции MTO для подбора совместимых складских позиций
type EnrichedProgress struct {
	models.MTOProgress
	ItemType string   `json:"item_type"`
	P1BoreIn *float64 `json:"p1_bore_in"`
}

// LineSummary — сводка готовности линии для дашборда
type LineSummary struct {
	LineNo      string  `json:"line_no"`
	TotalQty    float64 `json:"total_qty"`
	UsedQty     float64 `json:"used_qty"`
	Percentage  float64 `json:"percentage"`
	IsComplete  bool    `json:"is_complete"`
	ItemsTotal  int     `json:"items_total"`
	ItemsClosed int     `json:"items_closed"`
}

// RebuildLineProgress полностью пересобирает прогресс для линии проекта.
// Стратегия «удалить и вставить заново» делает функцию идемпотентной:
// результат верен независимо от того, каким путем журналы пришли к
// текущему состоянию. Выполняется в одной транзакции, что сериализует
// конкурирующие пересборки одной линии.
func (s *ProgressService) RebuildLineProgress(projectID uint, lineNo string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND line_no = ?", projectID, lineNo).
			Delete(&models.MTOProgress{}).Error; err != nil {
			return err
		}

		var items []models.MTOItem
		if err := tx.Where("project_id = ? AND line_no = ?", projectID, lineNo).
			Find(&items).Error; err != nil {
			return err
		}

		now := time.Now()
		for _, item := range items {
			used, err := consumedQtyForItem(tx, &item)
			if err != nil {
				return err
			}

			total := item.Quantity
			if IsLengthBased(item.ItemType) {
				total = item.LengthM
			}

			remaining := total - used
			if remaining < 0 {
				remaining = 0
			}

			progress := models.MTOProgress{
				ProjectID:    projectID,
				LineNo:       lineNo,
				MTOItemID:    item.ID,
				ItemCode:     item.ItemCode,
				Description:  item.Description,
				Unit:         item.Unit,
				TotalQty:     total,
				UsedQty:      used,
				RemainingQty: remaining,
				LastUpdated:  now,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// consumedQtyForItem считает суммарное потребление позиции MTO: прямые
// списания плюс складские списания, отнесенные к позиции через таблицу
// синонимов и фильтр по диаметру
func consumedQtyForItem(tx *gorm.DB, item *models.MTOItem) (float64, error) {
	var direct float64
	err := tx.Model(&models.MTOConsumption{}).
		Where("mto_item_id = ?", item.ID).
		Select("COALESCE(SUM(used_qty), 0)").
		Scan(&direct).Error
	if err != nil {
		return 0, err
	}

	spoolQuery := tx.Model(&models.SpoolConsumption{}).
		Joins("JOIN spool_items ON spool_items.id = spool_consumptions.spool_item_id").
		Joins("JOIN miv_records ON miv_records.id = spool_consumptions.miv_record_id").
		Where("miv_records.project_id = ? AND miv_records.line_no = ?", item.ProjectID, item.LineNo).
		Where("UPPER(TRIM(spool_items.component_type)) IN ?", EquivalentTypes(item.ItemType))
	if item.P1BoreIn != nil {
		spoolQuery = spoolQuery.Where("spool_items.p1_bore = ?", *item.P1BoreIn)
	}

	var spool float64
	err = spoolQuery.Select("COALESCE(SUM(spool_consumptions.used_qty), 0)").Scan(&spool).Error
	if err != nil {
		return 0, err
	}

	return direct + spool, nil
}

// GetLineProgress возвращает строки прогресса линии. Если для линии еще
// нет строк, они лениво создаются первой пересборкой.
func (s *ProgressService) GetLineProgress(projectID uint, lineNo string) ([]models.MTOProgress, error) {
	var rows []models.MTOProgress
	err := s.db.Where("project_id = ? AND line_no = ?", projectID, lineNo).
		Order("mto_item_id").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		if err := s.RebuildLineProgress(projectID, lineNo); err != nil {
			return nil, err
		}
		err = s.db.Where("project_id = ? AND line_no = ?", projectID, lineNo).
			Order("mto_item_id").Find(&rows).Error
		if err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// GetEnrichedLineProgress возвращает прогресс линии вместе с типом и
// диаметром каждой позиции MTO
func (s *ProgressService) GetEnrichedLineProgress(projectID uint, lineNo string) ([]EnrichedProgress, error) {
	rows, err := s.GetLineProgress(projectID, lineNo)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedProgress, 0, len(rows))
	for _, row := range rows {
		var item models.MTOItem
		if err := s.db.First(&item, row.MTOItemID).Error; err != nil {
			return nil, err
		}
		enriched = append(enriched, EnrichedProgress{
			MTOProgress: row,
			ItemType:    item.ItemType,
			P1BoreIn:    item.P1BoreIn,
		})
	}

	return enriched, nil
}

// GetLineSummary считает сводную готовность линии по таблице прогресса
func (s *ProgressService) GetLineSummary(projectID uint, lineNo string) (*LineSummary, error) {
	rows, err := s.GetLineProgress(projectID, lineNo)
	if err != nil {
		return nil, err
	}

	summary := LineSummary{LineNo: lineNo, ItemsTotal: len(rows)}
	for _, row := range rows {
		summary.TotalQty += row.TotalQty
		summary.UsedQty += row.UsedQty
		if row.RemainingQty <= QtyEpsilon {
			summary.ItemsClosed++
		}
	}

	if summary.TotalQty > 0 {
		summary.Percentage = summary.UsedQty / summary.TotalQty * 100
		if summary.Percentage > 100 {
			summary.Percentage = 100
		}
	}
	summary.IsComplete = summary.ItemsTotal > 0 && summary.ItemsClosed == summary.ItemsTotal

	return &summary, nil
}
