package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// Ограничения конструктора
const (
	MinTitleLength     = 3
	MaxTitleLength     = 100
	MaxQuestionText    = 500
	MaxAnswerText      = 200
	MaxAnswerSlots     = 4
	MinVisibleAnswers  = 2
	DefaultCatalogSize = 20
	MaxCatalogSize     = 100
	copyTitleSuffix    = " (копия)"
)

// GameInput - данные для создания или изменения игры
type GameInput struct {
	AuthorID    uint
	Title       string
	Type        string
	Category    string
	Difficulty  string
	Description string
}

// QuestionInput - данные вопроса из конструктора
type QuestionInput struct {
	Text          string
	Answers       []string
	CorrectAnswer int
}

// CatalogFilters - фильтры публичного каталога
type CatalogFilters struct {
	Search     string
	Type       string
	Difficulty string
}

// GameService предоставляет методы конструктора и каталога игр
type GameService struct {
	gameRepo     repository.GameRepository
	questionRepo repository.QuestionRepository
	maxQuestions int
}

// NewGameService создает новый сервис игр
func NewGameService(
	gameRepo repository.GameRepository,
	questionRepo repository.QuestionRepository,
	maxQuestions int,
) *GameService {
	return &GameService{
		gameRepo:     gameRepo,
		questionRepo: questionRepo,
		maxQuestions: maxQuestions,
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}

func validateGameInput(in *GameInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)

	n := utf8.RuneCountInString(in.Title)
	if n < MinTitleLength || n > MaxTitleLength {
		return validationError("title must be %d-%d characters", MinTitleLength, MaxTitleLength)
	}
	if !entity.IsValidGameType(in.Type) {
		return validationError("unknown game type %q", in.Type)
	}
	if !entity.IsValidDifficulty(in.Difficulty) {
		return validationError("unknown difficulty %q", in.Difficulty)
	}
	if utf8.RuneCountInString(in.Category) > 100 {
		return validationError("category is too long")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return validationError("description is too long")
	}
	return nil
}

// validateQuestionInput проверяет вопрос конструктора.
// Пустые слоты допустимы, но видимых вариантов должно быть не меньше двух,
// а правильный вариант должен быть видимым.
func validateQuestionInput(in *QuestionInput) error {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return validationError("question text is required")
	}
	if utf8.RuneCountInString(in.Text) > MaxQuestionText {
		return validationError("question text is too long")
	}
	if len(in.Answers) > MaxAnswerSlots {
		return validationError("at most %d answer slots allowed", MaxAnswerSlots)
	}

	in.Answers = append([]string(nil), in.Answers...)
	visible := 0
	for i, a := range in.Answers {
		a = strings.TrimSpace(a)
		in.Answers[i] = a
		if utf8.RuneCountInString(a) > MaxAnswerText {
			return validationError("answer %d is too long", i+1)
		}
		if a != "" {
			visible++
		}
	}
	if visible < MinVisibleAnswers {
		return validationError("at least %d answers are required", MinVisibleAnswers)
	}
	if in.CorrectAnswer < 0 || in.CorrectAnswer >= len(in.Answers) || in.Answers[in.CorrectAnswer] == "" {
		return validationError("correct answer must point to a non-empty answer")
	}
	return nil
}

// CreateGame создает черновик игры
func (s *GameService) CreateGame(in GameInput) (*entity.Game, error) {
	if err := validateGameInput(&in); err != nil {
		return nil, err
	}

	game := &entity.Game{
		AuthorID:    in.AuthorID,
		Title:       in.Title,
		Type:        in.Type,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Description: in.Description,
		Status:      entity.GameStatusDraft,
	}
	if err := s.gameRepo.Create(game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	logger.Log.Info("Создана игра", zap.Uint("game_id", game.ID), zap.String("type", game.Type))
	return game, nil
}

// UpdateGame изменяет описание игры. Вопросы и статус не затрагиваются.
func (s *GameService) UpdateGame(gameID uint, in GameInput) (*entity.Game, error) {
	if err := validateGameInput(&in); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}

	game.Title = in.Title
	game.Type = in.Type
	game.Category = in.Category
	game.Difficulty = in.Difficulty
	game.Description = in.Description

	if err := s.gameRepo.Update(game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return game, nil
}

// GetGame возвращает игру по ID
func (s *GameService) GetGame(gameID uint) (*entity.Game, error) {
	return s.gameRepo.GetByID(gameID)
}

// GetGameWithQuestions возвращает игру с вопросами в порядке прохождения
func (s *GameService) GetGameWithQuestions(gameID uint) (*entity.Game, error) {
	return s.gameRepo.GetWithQuestions(gameID)
}

// DeleteGame удаляет игру вместе с вопросами
func (s *GameService) DeleteGame(gameID uint) error {
	return s.gameRepo.Delete(gameID)
}

// AddQuestion добавляет вопрос в конец игры
func (s *GameService) AddQuestion(gameID uint, in QuestionInput) (*entity.Question, error) {
	if err := validateQuestionInput(&in); err != nil {
		return nil, err
	}

	question := &entity.Question{
		GameID:        gameID,
		Text:          in.Text,
		Answers:       entity.StringArray(in.Answers),
		CorrectAnswer: in.CorrectAnswer,
	}
	if err := s.gameRepo.AppendQuestion(question, s.maxQuestions); err != nil {
		switch {
		case errors.Is(err, repository.ErrQuestionLimitReached):
			return nil, validationError("maximum number of questions is %d", s.maxQuestions)
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to add question: %w", err)
	}

	return question, nil
}

// UpdateQuestion изменяет текст и варианты вопроса, вложения сохраняются
func (s *GameService) UpdateQuestion(questionID uint, in QuestionInput) (*entity.Question, error) {
	if err := validateQuestionInput(&in); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	question.Text = in.Text
	question.Answers = entity.StringArray(in.Answers)
	question.CorrectAnswer = in.CorrectAnswer

	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос. Позиции остальных вопросов не пересчитываются.
func (s *GameService) DeleteQuestion(questionID uint) error {
	if err := s.gameRepo.RemoveQuestion(questionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// PublishGame публикует игру в каталоге.
// Нужны название и хотя бы один вопрос.
func (s *GameService) PublishGame(gameID uint) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(game.Title) == "" {
		return nil, validationError("game title is required")
	}

	count, err := s.questionRepo.CountByGameID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if count == 0 {
		return nil, validationError("game must have at least one question")
	}

	if game.IsPublished() {
		return game, nil
	}

	if err := s.gameRepo.UpdateStatus(gameID, entity.GameStatusPublished); err != nil {
		return nil, fmt.Errorf("failed to publish game: %w", err)
	}
	game.Status = entity.GameStatusPublished

	logger.Log.Info("Игра опубликована", zap.Uint("game_id", gameID), zap.Int64("questions", count))
	return game, nil
}

// UnpublishGame возвращает игру в черновики
func (s *GameService) UnpublishGame(gameID uint) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if !game.IsPublished() {
		return game, nil
	}
	if err := s.gameRepo.UpdateStatus(gameID, entity.GameStatusDraft); err != nil {
		return nil, fmt.Errorf("failed to unpublish game: %w", err)
	}
	game.Status = entity.GameStatusDraft
	return game, nil
}

// DuplicateGame создает черновик-копию игры со всеми вопросами и вложениями
func (s *GameService) DuplicateGame(gameID, authorID uint) (*entity.Game, error) {
	src, err := s.gameRepo.GetWithQuestions(gameID)
	if err != nil {
		return nil, err
	}

	title := src.Title
	if utf8.RuneCountInString(title)+utf8.RuneCountInString(copyTitleSuffix) > MaxTitleLength {
		runes := []rune(title)
		title = string(runes[:MaxTitleLength-utf8.RuneCountInString(copyTitleSuffix)])
	}

	dup := &entity.Game{
		AuthorID:      authorID,
		Title:         title + copyTitleSuffix,
		Type:          src.Type,
		Category:      src.Category,
		Difficulty:    src.Difficulty,
		Description:   src.Description,
		Status:        entity.GameStatusDraft,
	}

	questions := make([]entity.Question, len(src.Questions))
	for i, q := range src.Questions {
		questions[i] = entity.Question{
			Position:      q.Position,
			Text:          q.Text,
			Answers:       append(entity.StringArray(nil), q.Answers...),
			CorrectAnswer: q.CorrectAnswer,
			ImageRef:      q.ImageRef,
			AudioRef:      q.AudioRef,
			VideoRef:      q.VideoRef,
		}
	}
	dup.Questions = questions

	// Игра и вопросы создаются одной транзакцией: при ошибке копия не остаётся
	if err := s.gameRepo.CreateWithQuestions(dup); err != nil {
		return nil, fmt.Errorf("failed to create game copy: %w", err)
	}

	logger.Log.Info("Создана копия игры",
		zap.Uint("source_id", gameID), zap.Uint("game_id", dup.ID), zap.Int("questions", len(questions)))
	return dup, nil
}

// ListCatalog возвращает опубликованные игры. Поиск идёт по названию или категории без учёта регистра.
func (s *GameService) ListCatalog(filters CatalogFilters, page, pageSize int) ([]entity.Game, int64, error) {
	if filters.Type != "" && !entity.IsValidGameType(filters.Type) {
		return nil, 0, validationError("unknown game type %q", filters.Type)
	}
	if !entity.IsValidDifficulty(filters.Difficulty) {
		return nil, 0, validationError("unknown difficulty %q", filters.Difficulty)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultCatalogSize
	}
	if pageSize > MaxCatalogSize {
		pageSize = MaxCatalogSize
	}

	repoFilters := repository.GameFilters{
		Search:     strings.TrimSpace(filters.Search),
		Type:       filters.Type,
		Difficulty: filters.Difficulty,
		Status:     entity.GameStatusPublished,
	}
	return s.gameRepo.ListWithFilters(repoFilters, pageSize, (page-1)*pageSize)
}

// ListByAuthor возвращает все игры автора, включая черновики
func (s *GameService) ListByAuthor(authorID uint) ([]entity.Game, error) {
	return s.gameRepo.ListByAuthor(authorID)
}
