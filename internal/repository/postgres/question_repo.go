package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// questionContentColumns - поля, которые меняет правка вопроса. Вложения обновляются через SetMediaRef.
var questionContentColumns = []string{"text", "answers", "correct_answer"}

// Update обновляет содержимое вопроса
func (r *QuestionRepo) Update(question *entity.Question) error {
	return rowsOrNotFound(updateQuestionContent(r.db, question))
}

func updateQuestionContent(db *gorm.DB, question *entity.Question) *gorm.DB {
	return db.Model(question).Select(questionContentColumns).Updates(question)
}

// SetMediaRef меняет ссылку на вложение одного вида
func (r *QuestionRepo) SetMediaRef(questionID uint, kind, ref string) error {
	column := entity.MediaColumn(kind)
	if column == "" {
		return fmt.Errorf("%w: unknown media kind %q", apperrors.ErrValidation, kind)
	}
	return rowsOrNotFound(setQuestionMediaRef(r.db, questionID, column, ref))
}

func setQuestionMediaRef(db *gorm.DB, questionID uint, column, ref string) *gorm.DB {
	return db.Model(&entity.Question{}).Where("id = ?", questionID).Update(column, ref)
}

// CountByGameID возвращает количество вопросов игры
func (r *QuestionRepo) CountByGameID(gameID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}
