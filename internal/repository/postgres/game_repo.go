package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

// gameDetailColumns - поля, которые правит автор. Счётчики и статус меняются отдельными запросами.
var gameDetailColumns = []string{"title", "type", "category", "difficulty", "description"}

// likeEscaper экранирует спецсимволы LIKE, чтобы поиск шёл по буквальной строке
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GameRepo реализует repository.GameRepository
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo создает новый репозиторий игр
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create создает новую игру
func (r *GameRepo) Create(game *entity.Game) error {
	return r.db.Create(game).Error
}

// CreateWithQuestions создает игру и её вопросы в одной транзакции.
// При ошибке не сохраняется ничего.
func (r *GameRepo) CreateWithQuestions(game *entity.Game) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		questions := game.Questions
		game.QuestionCount = len(questions)
		if err := tx.Omit(clause.Associations).Create(game).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].GameID = game.ID
		}
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает игру по ID
func (r *GameRepo) GetByID(id uint) (*entity.Game, error) {
	var game entity.Game
	err := r.db.First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// GetWithQuestions возвращает игру вместе с вопросами в порядке прохождения
func (r *GameRepo) GetWithQuestions(id uint) (*entity.Game, error) {
	var game entity.Game
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	}).First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// Update обновляет описание игры, не трогая счётчики и статус
func (r *GameRepo) Update(game *entity.Game) error {
	return rowsOrNotFound(updateGameDetails(r.db, game))
}

func updateGameDetails(db *gorm.DB, game *entity.Game) *gorm.DB {
	return db.Model(game).Select(gameDetailColumns).Updates(game)
}

// UpdateStatus обновляет статус игры
func (r *GameRepo) UpdateStatus(gameID uint, status string) error {
	result := r.db.Model(&entity.Game{}).
		Where("id = ?", gameID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendQuestion добавляет вопрос в конец игры. Строка игры блокируется на время
// транзакции, поэтому параллельные добавления не превышают лимит и не делят позицию.
func (r *GameRepo) AppendQuestion(question *entity.Question, maxQuestions int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, question.GameID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&entity.Question{}).Where("game_id = ?", question.GameID).Count(&count).Error; err != nil {
			return err
		}
		if maxQuestions > 0 && int(count) >= maxQuestions {
			return repository.ErrQuestionLimitReached
		}

		var maxPos int
		err := tx.Model(&entity.Question{}).
			Where("game_id = ?", question.GameID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}

		question.ID = 0
		question.Position = maxPos + 1
		if err := tx.Create(question).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Game{}).
			Where("id = ?", question.GameID).
			UpdateColumn("question_count", count+1).
			Error
	})
}

// RemoveQuestion удаляет вопрос и уменьшает question_count в одной транзакции
func (r *GameRepo) RemoveQuestion(questionID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var question entity.Question
		if err := tx.Select("id", "game_id").First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		if err := lockGame(tx, question.GameID); err != nil {
			return err
		}

		if err := tx.Delete(&entity.Question{}, questionID).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Game{}).
			Where("id = ?", question.GameID).
			UpdateColumn("question_count", gorm.Expr("GREATEST(question_count - 1, 0)")).
			Error
	})
}

// lockGame берёт блокировку строки игры до конца транзакции
func lockGame(tx *gorm.DB, gameID uint) error {
	var game entity.Game
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&game, gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// IncrementPlayCount атомарно увеличивает счётчик прохождений
func (r *GameRepo) IncrementPlayCount(gameID uint) error {
	return r.db.Model(&entity.Game{}).
		Where("id = ?", gameID).
		UpdateColumn("play_count", gorm.Expr("play_count + 1")).
		Error
}

// ListWithFilters возвращает список игр с фильтрами и total count
func (r *GameRepo) ListWithFilters(filters repository.GameFilters, limit, offset int) ([]entity.Game, int64, error) {
	var games []entity.Game
	var total int64

	query := catalogQuery(r.db, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Сначала популярные, при равенстве - новые
	err := query.Limit(limit).Offset(offset).Order("play_count DESC, id DESC").Find(&games).Error
	if err != nil {
		return nil, 0, err
	}

	return games, total, nil
}

// ListByAuthor возвращает все игры автора, новые первыми
func (r *GameRepo) ListByAuthor(authorID uint) ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.Where("author_id = ?", authorID).Order("id DESC").Find(&games).Error
	return games, err
}

// Delete удаляет игру вместе с вопросами
func (r *GameRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Game{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// catalogQuery применяет фильтры каталога
func catalogQuery(db *gorm.DB, filters repository.GameFilters) *gorm.DB {
	query := db.Model(&entity.Game{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if filters.AuthorID != 0 {
		query = query.Where("author_id = ?", filters.AuthorID)
	}
	if filters.Search != "" {
		search := containsPattern(filters.Search)
		query = query.Where("title ILIKE ? OR category ILIKE ?", search, search)
	}
	return query
}

// containsPattern строит шаблон ILIKE "содержит подстроку" с экранированными % и _
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
