package models

import (
	"time"

	"gorm.io/gorm"
)

// Spool представляет контейнер складского запаса демонтированных катушек
type Spool struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	SpoolID  string `json:"spool_id" gorm:"not null;uniqueIndex"`
	RowNo    string `json:"row_no"`
	LineNo   string `json:"line_no"`
	SheetNo  string `json:"sheet_no"`
	Location string `json:"location"`
	Command  string `json:"command"`

	// Связи
	Items []SpoolItem `json:"items" gorm:"foreignKey:SpoolIDFK"`
}

// SpoolItem представляет отдельную складскую позицию внутри катушки.
// Для трубных позиций остаток ведется в поле Length, для штучных —
// в поле QtyAvailable. Поля меняются только операциями движка.
type SpoolItem struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	SpoolIDFK     uint     `json:"spool_id_fk" gorm:"not null;index"`
	ComponentType string   `json:"component_type" gorm:"index"`
	ClassAngle    string   `json:"class_angle"`
	P1Bore        *float64 `json:"p1_bore"`
	P2Bore        *float64 `json:"p2_bore"`
	Material      string   `json:"material"`
	Schedule      string   `json:"schedule"`
	Thickness     *float64 `json:"thickness"`
	Length        float64  `json:"length"`
	QtyAvailable  float64  `json:"qty_available"`
	ItemCode      string   `json:"item_code"`

	// Связи
	Spool Spool `json:"-" gorm:"foreignKey:SpoolIDFK"`
}

// SpoolConsumption представляет списание со складской позиции по MIV.
// Существование записи — единственный источник истины о том, сколько
// было снято с позиции для данного MIV.
type SpoolConsumption struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SpoolItemID uint      `json:"spool_item_id" gorm:"not null;index"`
	SpoolIDFK   uint      `json:"spool_id_fk" gorm:"not null;index"`
	MIVRecordID uint      `json:"miv_record_id" gorm:"not null;index"`
	UsedQty     float64   `json:"used_qty" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp"`

	// Связи
	SpoolItem SpoolItem `json:"-" gorm:"foreignKey:SpoolItemID"`
	MIVRecord MIVRecord `json:"-" gorm:"foreignKey:MIVRecordID"`
}

// BeforeCreate хук для установки времени списания
func (c *SpoolConsumption) BeforeCreate(tx *gorm.DB) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	return nil
}
