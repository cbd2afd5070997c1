package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
)

// PlayResultRepo реализует repository.PlayResultRepository
type PlayResultRepo struct {
	db *gorm.DB
}

// NewPlayResultRepo создает новый репозиторий итогов прохождений
func NewPlayResultRepo(db *gorm.DB) *PlayResultRepo {
	return &PlayResultRepo{db: db}
}

// Save сохраняет итог прохождения.
// Уникальный индекс (session_id, attempt) отсекает повторную запись той же попытки.
func (r *PlayResultRepo) Save(result *entity.PlayResult) error {
	err := r.db.Create(result).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// ListByGame возвращает итоги прохождений игры с пагинацией, новые первыми
func (r *PlayResultRepo) ListByGame(gameID uint, limit, offset int) ([]entity.PlayResult, int64, error) {
	var results []entity.PlayResult
	var total int64

	query := r.db.Model(&entity.PlayResult{}).Where("game_id = ?", gameID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("completed_at DESC").Limit(limit).Offset(offset).Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// SummaryByGames считает количество и средний процент прохождений по списку игр
func (r *PlayResultRepo) SummaryByGames(gameIDs []uint) (*repository.PlayResultSummary, error) {
	summary := &repository.PlayResultSummary{}
	if len(gameIDs) == 0 {
		return summary, nil
	}

	var row struct {
		Count int64
		Avg   float64
	}
	err := r.db.Model(&entity.PlayResult{}).
		Select("COUNT(*) AS count, COALESCE(AVG(percentage), 0) AS avg").
		Where("game_id IN ?", gameIDs).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary.Count = row.Count
	summary.AveragePercentage = row.Avg
	return summary, nil
}

// Проверки соответствия интерфейсам
var (
	_ repository.GameRepository       = (*GameRepo)(nil)
	_ repository.QuestionRepository   = (*QuestionRepo)(nil)
	_ repository.ProfileRepository    = (*ProfileRepo)(nil)
	_ repository.PlayResultRepository = (*PlayResultRepo)(nil)
)
