package repository

import (
	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	GetByID(id uint) (*entity.Question, error)
	// Update меняет только содержимое вопроса: текст, варианты и правильный ответ
	Update(question *entity.Question) error
	// SetMediaRef меняет ссылку на вложение заданного вида, остальные поля не затрагиваются
	SetMediaRef(questionID uint, kind, ref string) error
	CountByGameID(gameID uint) (int64, error)
}
