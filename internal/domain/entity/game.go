package entity

import (
	"time"
)

// Константы статусов игры
const (
	GameStatusDraft     = "draft"
	GameStatusPublished = "published"
)

// Типы игр конструктора
const (
	GameTypeQuiz        = "quiz"
	GameTypeMillionaire = "millionaire"
	GameTypeWordSearch  = "word-search"
	GameTypePairs       = "pairs"
	GameTypeTimeline    = "timeline"
	GameTypePuzzle      = "puzzle"
	GameTypeColoring    = "coloring"
	GameTypeTest        = "test"
)

// Уровни сложности каталога
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var gameTypeEmoji = map[string]string{
	GameTypeQuiz:        "🎯",
	GameTypeMillionaire: "💰",
	GameTypeWordSearch:  "🔤",
	GameTypePairs:       "🎴",
	GameTypeTimeline:    "📅",
	GameTypePuzzle:      "🧩",
	GameTypeColoring:    "🎨",
	GameTypeTest:        "📝",
}

// IsValidGameType проверяет тип игры
func IsValidGameType(t string) bool {
	_, ok := gameTypeEmoji[t]
	return ok
}

// IsValidDifficulty проверяет уровень сложности (пустой допускается)
func IsValidDifficulty(d string) bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GameTypeEmoji возвращает значок типа игры, для неизвестных типов - 🎮
func GameTypeEmoji(t string) string {
	if e, ok := gameTypeEmoji[t]; ok {
		return e
	}
	return "🎮"
}

// Game представляет игру: упорядоченный набор вопросов с типом для каталога
type Game struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AuthorID      uint       `gorm:"not null;default:0;index" json:"author_id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	Type          string     `gorm:"size:20;not null;default:'quiz'" json:"type"`
	Category      string     `gorm:"size:100;not null;default:''" json:"category"`
	Difficulty    string     `gorm:"size:20;not null;default:''" json:"difficulty"`
	Description   string     `gorm:"size:500;not null;default:''" json:"description"`
	Status        string     `gorm:"size:20;not null;default:'draft';index" json:"status"`
	QuestionCount int        `gorm:"not null;default:0" json:"question_count"`
	PlayCount     int        `gorm:"not null;default:0" json:"play_count"`
	Questions     []Question `gorm:"foreignKey:GameID" json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Game) TableName() string {
	return "games"
}

// IsPublished проверяет, опубликована ли игра в каталоге
func (g *Game) IsPublished() bool {
	return g.Status == GameStatusPublished
}

// Emoji возвращает значок типа игры
func (g *Game) Emoji() string {
	return GameTypeEmoji(g.Type)
}
