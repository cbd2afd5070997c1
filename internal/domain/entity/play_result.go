package entity

import (
	"time"
)

// PlayResult представляет итог одного завершённого прохождения
type PlayResult struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"not null;index" json:"game_id"`
	SessionID   string    `gorm:"size:36;not null;uniqueIndex:idx_session_attempt" json:"session_id"`
	Attempt     int       `gorm:"not null;default:1;uniqueIndex:idx_session_attempt" json:"attempt"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	Total       int       `gorm:"not null;default:0" json:"total"`
	Percentage  int       `gorm:"not null;default:0" json:"percentage"`
	Tier        string    `gorm:"size:20;not null" json:"tier"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PlayResult) TableName() string {
	return "play_results"
}
