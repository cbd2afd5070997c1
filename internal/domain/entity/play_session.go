package entity

import (
	"time"

	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
)

// PlaySession - эфемерное прохождение игры, хранится в Redis с TTL.
// Вопросы копируются при старте, поэтому правка игры не влияет на идущие прохождения.
type PlaySession struct {
	ID        string                `json:"id"`
	GameID    uint                  `json:"game_id"`
	GameTitle string                `json:"game_title"`
	GameType  string                `json:"game_type"`
	Questions []quizrunner.Question `json:"questions"`
	State     quizrunner.Snapshot   `json:"state"`
	// Attempt - номер попытки, увеличивается при каждом перезапуске
	Attempt   int       `json:"attempt"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
