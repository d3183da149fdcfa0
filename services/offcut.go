package services

import (
	"errors"
	"sort"

	"miv-backend/models"

	"gorm.io/gorm"
)

// OffcutService предлагает планы раскроя складских труб под остатки
// трубных позиций линии. Сервис только читает данные: план носит
// рекомендательный характер и ничего не списывает.
type OffcutService struct {
	db       *gorm.DB
	progress *ProgressService
	spools   *SpoolService
}

// NewOffcutService создает новый сервис раскроя
func NewOffcutService(db *gorm.DB, progress *ProgressService, spools *SpoolService) *OffcutService {
	return &OffcutService{db: db, progress: progress, spools: spools}
}

// OffcutCut — отрезок, предлагаемый к снятию с конкретной складской позиции
type OffcutCut struct {
	SpoolItemID uint    `json:"spool_item_id"`
	SpoolID     string  `json:"spool_id"`
	ItemCode    string  `json:"item_code"`
	Length      float64 `json:"length"`
	TakeLength  float64 `json:"take_length"`
}

// RequirementPlan — план раскроя для одной позиции MTO
type RequirementPlan struct {
	MTOItemID uint        `json:"mto_item_id"`
	ItemCode  string      `json:"item_code"`
	Remaining float64     `json:"remaining"`
	Cuts      []OffcutCut `json:"cuts"`
	// Offcut — остаток первого (наилучшего) куска, когда он один
	// закрывает потребность; для многокускового плана значение
	// оценочное и равно нулю
	Offcut    float64 `json:"offcut"`
	Satisfied bool    `json:"satisfied"`
	Shortfall float64 `json:"shortfall"`
}

// OffcutPlan — план раскроя для всех трубных позиций линии
type OffcutPlan struct {
	ProjectID uint              `json:"project_id"`
	LineNo    string            `json:"line_no"`
	Items     []RequirementPlan `json:"items"`
}

// ProposeOffcutPlan строит план раскроя для линии: для каждой трубной
// позиции с положительным остатком подбираются совместимые складские
// позиции и жадно выбираются куски с минимальным обрезком
func (s *OffcutService) ProposeOffcutPlan(projectID uint, lineNo string) (*OffcutPlan, error) {
	rows, err := s.progress.GetLineProgress(projectID, lineNo)
	if err != nil {
		return nil, err
	}

	plan := OffcutPlan{ProjectID: projectID, LineNo: lineNo}
	for _, row := range rows {
		var item models.MTOItem
		if err := s.db.First(&item, row.MTOItemID).Error; err != nil {
			return nil, err
		}

		if !IsLengthBased(item.ItemType) || row.RemainingQty <= QtyEpsilon {
			continue
		}

		itemPlan, err := s.planForItem(&item, row.RemainingQty)
		if err != nil {
			return nil, err
		}
		plan.Items = append(plan.Items, *itemPlan)
	}

	return &plan, nil
}

// ProposeOffcutForItem строит план раскроя для одной позиции MTO.
// Если совместимых кусков не хватает, возвращается InsufficientStockError
// с величиной недостачи.
func (s *OffcutService) ProposeOffcutForItem(mtoItemID uint) (*RequirementPlan, error) {
	var item models.MTOItem
	if err := s.db.First(&item, mtoItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "MTO item", ID: mtoItemID}
		}
		return nil, err
	}

	if !IsLengthBased(item.ItemType) {
		return nil, &ValidationError{Field: "item_type", Message: "раскрой применим только к трубным позициям"}
	}

	rows, err := s.progress.GetLineProgress(item.ProjectID, item.LineNo)
	if err != nil {
		return nil, err
	}

	remaining := 0.0
	for _, row := range rows {
		if row.MTOItemID == item.ID {
			remaining = row.RemainingQty
			break
		}
	}

	itemPlan, err := s.planForItem(&item, remaining)
	if err != nil {
		return nil, err
	}
	if !itemPlan.Satisfied {
		return itemPlan, &InsufficientStockError{Requested: remaining, Available: remaining - itemPlan.Shortfall}
	}
	return itemPlan, nil
}

// planForItem жадно набирает куски под остаток позиции. Кандидаты,
// способные закрыть остаток целиком, идут первыми по возрастанию
// обрезка; остальные — после них по убыванию длины.
func (s *OffcutService) planForItem(item *models.MTOItem, remaining float64) (*RequirementPlan, error) {
	plan := RequirementPlan{
		MTOItemID: item.ID,
		ItemCode:  item.ItemCode,
		Remaining: remaining,
	}

	candidates, err := s.spools.GetCompatibleInventory(item.ItemType, item.P1BoreIn)
	if err != nil {
		return nil, err
	}

	// Для раскроя пригодны только куски с положительной длиной
	pieces := candidates[:0]
	for _, c := range candidates {
		if c.Length > 0 {
			pieces = append(pieces, c)
		}
	}

	sort.SliceStable(pieces, func(i, j int) bool {
		iSufficient := pieces[i].Length >= remaining
		jSufficient := pieces[j].Length >= remaining
		if iSufficient != jSufficient {
			return iSufficient
		}
		if iSufficient {
			return pieces[i].Length-remaining < pieces[j].Length-remaining
		}
		return pieces[i].Length > pieces[j].Length
	})

	left := remaining
	for _, piece := range pieces {
		if left <= QtyEpsilon {
			break
		}
		take := left
		if piece.Length < take {
			take = piece.Length
		}
		plan.Cuts = append(plan.Cuts, OffcutCut{
			SpoolItemID: piece.ID,
			SpoolID:     piece.Spool.SpoolID,
			ItemCode:    piece.ItemCode,
			Length:      piece.Length,
			TakeLength:  take,
		})
		left -= take
	}

	plan.Satisfied = left <= QtyEpsilon
	if !plan.Satisfied {
		plan.Shortfall = left
	}
	if plan.Satisfied && len(plan.Cuts) == 1 {
		plan.Offcut = plan.Cuts[0].Length - plan.Cuts[0].TakeLength
	}

	return &plan, nil
}
