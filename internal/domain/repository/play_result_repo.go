package repository

import (
	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

// PlayResultSummary - агрегат по завершённым прохождениям
type PlayResultSummary struct {
	Count             int64
	AveragePercentage float64
}

// PlayResultRepository определяет методы для работы с итогами прохождений
type PlayResultRepository interface {
	// Save сохраняет итог. Повторная запись той же попытки сессии не считается ошибкой.
	Save(result *entity.PlayResult) error
	ListByGame(gameID uint, limit, offset int) ([]entity.PlayResult, int64, error)
	SummaryByGames(gameIDs []uint) (*PlayResultSummary, error)
}
