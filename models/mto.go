package models

import (
	"time"

	"gorm.io/gorm"
)

// MTOItem представляет одну позицию take-off ведомости материалов
type MTOItem struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	ProjectID    uint     `json:"project_id" gorm:"not null;index"`
	Unit         string   `json:"unit"`
	LineNo       string   `json:"line_no" gorm:"not null;index"`
	ItemClass    string   `json:"item_class"`
	ItemType     string   `json:"item_type"`
	Description  string   `json:"description"`
	ItemCode     string   `json:"item_code"`
	MaterialCode string   `json:"material_code"`
	P1BoreIn     *float64 `json:"p1_bore_in"`
	P2BoreIn     *float64 `json:"p2_bore_in"`
	P3BoreIn     *float64 `json:"p3_bore_in"`
	LengthM      float64  `json:"length_m"`
	Quantity     float64  `json:"quantity"`
	Joint        float64  `json:"joint"`
	InchDia      float64  `json:"inch_dia"`

	// Связи
	Project Project `json:"-" gorm:"foreignKey:ProjectID"`
}

// MTOConsumption представляет прямое списание материала по MIV
type MTOConsumption struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	MTOItemID   uint      `json:"mto_item_id" gorm:"not null;index"`
	MIVRecordID uint      `json:"miv_record_id" gorm:"not null;index"`
	UsedQty     float64   `json:"used_qty" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp"`

	// Связи
	MTOItem   MTOItem   `json:"-" gorm:"foreignKey:MTOItemID"`
	MIVRecord MIVRecord `json:"-" gorm:"foreignKey:MIVRecordID"`
}

// BeforeCreate хук для установки времени списания
func (c *MTOConsumption) BeforeCreate(tx *gorm.DB) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	return nil
}

// MTOProgress представляет производную строку прогресса по позиции MTO.
// Таблица полностью пересобирается из журналов списаний и никогда не
// редактируется вручную.
type MTOProgress struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProjectID    uint      `json:"project_id" gorm:"not null;uniqueIndex:uq_progress_item"`
	LineNo       string    `json:"line_no" gorm:"not null;uniqueIndex:uq_progress_item"`
	MTOItemID    uint      `json:"mto_item_id" gorm:"not null;uniqueIndex:uq_progress_item"`
	ItemCode     string    `json:"item_code"`
	Description  string    `json:"description"`
	Unit         string    `json:"unit"`
	TotalQty     float64   `json:"total_qty"`
	UsedQty      float64   `json:"used_qty"`
	RemainingQty float64   `json:"remaining_qty"`
	LastUpdated  time.Time `json:"last_updated"`
}

// TableName задает имя таблицы прогресса
func (MTOProgress) TableName() string {
	return "mto_progress"
}

// BeforeCreate хук для установки времени создания
func (p *MTOProgress) BeforeCreate(tx *gorm.DB) error {
	if p.LastUpdated.IsZero() {
		p.LastUpdated = time.Now()
	}
	return nil
}
