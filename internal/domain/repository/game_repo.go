package repository

import (
	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

// GameFilters определяет фильтры каталога игр
type GameFilters struct {
	Search     string // Поиск по названию или категории (без учёта регистра)
	Type       string // Тип игры (quiz, millionaire, ...)
	Difficulty string // Уровень сложности
	Status     string // draft / published
	AuthorID   uint   // 0 - любой автор
}

// GameRepository определяет методы для работы с играми
type GameRepository interface {
	Create(game *entity.Game) error
	// CreateWithQuestions создает игру вместе с game.Questions в одной транзакции
	CreateWithQuestions(game *entity.Game) error
	GetByID(id uint) (*entity.Game, error)
	// GetWithQuestions возвращает игру с вопросами, упорядоченными по position, id
	GetWithQuestions(id uint) (*entity.Game, error)
	// Update меняет только описание игры: title, type, category, difficulty, description
	Update(game *entity.Game) error
	UpdateStatus(gameID uint, status string) error
	// AppendQuestion добавляет вопрос в конец игры и обновляет question_count в одной транзакции.
	// Возвращает ErrQuestionLimitReached, если вопросов уже maxQuestions.
	AppendQuestion(question *entity.Question, maxQuestions int) error
	// RemoveQuestion удаляет вопрос и уменьшает question_count в одной транзакции
	RemoveQuestion(questionID uint) error
	// IncrementPlayCount атомарно увеличивает play_count на 1
	IncrementPlayCount(gameID uint) error
	ListWithFilters(filters GameFilters, limit, offset int) ([]entity.Game, int64, error) // Возвращает также total count
	ListByAuthor(authorID uint) ([]entity.Game, error)
	Delete(id uint) error
}
