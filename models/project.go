package models

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Project представляет модель проекта в системе
type Project struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;uniqueIndex"`

	// Связи
	MIVRecords []MIVRecord `json:"-" gorm:"foreignKey:ProjectID"`
	MTOItems   []MTOItem   `json:"-" gorm:"foreignKey:ProjectID"`
}

// InitDB инициализирует подключение к базе данных
func InitDB() (*gorm.DB, error) {
	// Проверяем переменную окружения для выбора базы данных
	databaseURL := os.Getenv("DATABASE_URL")

	if databaseURL != "" {
		// Используем PostgreSQL для продакшена
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// Используем SQLite для разработки
	db, err := gorm.Open(sqlite.Open("miv_registry.db"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
