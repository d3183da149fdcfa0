package models

import (
	"time"

	"gorm.io/gorm"
)

// MIVRecord представляет модель записи о выдаче материалов (MIV)
type MIVRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProjectID     uint      `json:"project_id" gorm:"not null;uniqueIndex:uq_miv_project_tag"`
	LineNo        string    `json:"line_no" gorm:"not null;index"`
	MIVTag        string    `json:"miv_tag" gorm:"not null;uniqueIndex:uq_miv_project_tag"`
	Location      string    `json:"location"`
	Status        string    `json:"status"`
	Comment       string    `json:"comment" gorm:"type:text"`
	RegisteredFor string    `json:"registered_for"`
	RegisteredBy  string    `json:"registered_by"`
	LastUpdated   time.Time `json:"last_updated"`
	IsComplete    bool      `json:"is_complete" gorm:"default:false"`

	// Связи
	Project Project `json:"-" gorm:"foreignKey:ProjectID"`
}

// BeforeCreate хук для установки времени создания
func (r *MIVRecord) BeforeCreate(tx *gorm.DB) error {
	r.LastUpdated = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (r *MIVRecord) BeforeUpdate(tx *gorm.DB) error {
	r.LastUpdated = time.Now()
	return nil
}
