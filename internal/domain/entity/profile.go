package entity

import (
	"time"
)

// Profile представляет профиль автора игр
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;default:''" json:"email"`
	School    string    `gorm:"size:255;not null;default:''" json:"school"`
	Bio       string    `gorm:"size:500;not null;default:''" json:"bio"`
	AvatarURL string    `gorm:"size:255;not null;default:''" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileStats - агрегированная статистика автора
type ProfileStats struct {
	TotalGames        int     `json:"total_games"`
	TotalPlays        int     `json:"total_plays"`
	TotalQuestions    int     `json:"total_questions"`
	FinishedSessions  int64   `json:"finished_sessions"`
	AveragePercentage float64 `json:"average_percentage"`
}
