package services

import (
	"errors"
	"fmt"
	"strings"

	"miv-backend/models"

	"gorm.io/gorm"
)

// QtyEpsilon — допуск сравнения количеств при проверке остатка
const QtyEpsilon = 0.01

// IsLengthBased определяет режим учета позиции: трубные позиции ведутся
// по длине, все остальные — по количеству
func IsLengthBased(componentType string) bool {
	return strings.Contains(strings.ToUpper(componentType), "PIPE")
}

// AvailableQty возвращает текущий остаток складской позиции в ее единицах
func AvailableQty(item *models.SpoolItem) float64 {
	if IsLengthBased(item.ComponentType) {
		return item.Length
	}
	return item.QtyAvailable
}

// AllocateSpoolItem списывает количество со складской позиции внутри
// транзакции tx и создает запись SpoolConsumption. Проверка остатка и
// списание выполняются одним условным UPDATE, поэтому параллельная
// транзакция не может пройти проверку по уже устаревшему значению.
// При ошибке позиция не меняется.
func AllocateSpoolItem(tx *gorm.DB, mivRecordID, spoolItemID uint, qty float64) (*models.SpoolConsumption, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "used_qty", Message: "количество списания должно быть положительным"}
	}

	var item models.SpoolItem
	if err := tx.First(&item, spoolItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "spool item", ID: spoolItemID}
		}
		return nil, err
	}

	field := "qty_available"
	if IsLengthBased(item.ComponentType) {
		field = "length"
	}

	res := tx.Model(&models.SpoolItem{}).
		Where("id = ? AND "+field+" >= ?", item.ID, qty-QtyEpsilon).
		Update(field, gorm.Expr(field+" - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &InsufficientStockError{SpoolItemID: item.ID, Requested: qty, Available: AvailableQty(&item)}
	}

	consumption := models.SpoolConsumption{
		SpoolItemID: item.ID,
		SpoolIDFK:   item.SpoolIDFK,
		MIVRecordID: mivRecordID,
		UsedQty:     qty,
	}
	if err := tx.Create(&consumption).Error; err != nil {
		return nil, err
	}

	return &consumption, nil
}

// CompensateSpoolConsumption возвращает списанное количество на складскую
// позицию. Вызывается не более одного раза на запись; вызывающий код
// обязан удалить запись сразу после компенсации, чтобы исключить
// повторный возврат.
func CompensateSpoolConsumption(tx *gorm.DB, consumption *models.SpoolConsumption) error {
	var item models.SpoolItem
	if err := tx.First(&item, consumption.SpoolItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ConsistencyError{Message: fmt.Sprintf(
				"spool item %d referenced by consumption %d no longer exists",
				consumption.SpoolItemID, consumption.ID)}
		}
		return err
	}

	field := "qty_available"
	if IsLengthBased(item.ComponentType) {
		field = "length"
	}

	// Относительное приращение: компенсация не затирает параллельные
	// изменения остатка
	return tx.Model(&models.SpoolItem{}).Where("id = ?", item.ID).
		Update(field, gorm.Expr(field+" + ?", consumption.UsedQty)).Error
}
