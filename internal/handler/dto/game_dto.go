package dto

import (
	"time"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
	"github.com/yourusername/eduplay-api/internal/handler/helper"
)

// MediaResponse содержит адреса вложений вопроса
type MediaResponse struct {
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// QuestionResponse представляет вопрос в формате конструктора
type QuestionResponse struct {
	ID            uint                  `json:"id"`
	GameID        uint                  `json:"game_id"`
	Position      int                   `json:"position"`
	Text          string                `json:"text"`
	Answers       []helper.AnswerOption `json:"answers"`
	CorrectAnswer int                   `json:"correct_answer"`
	CorrectLabel  string                `json:"correct_label"`
	Media         MediaResponse         `json:"media"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// GameResponse представляет игру в формате для ответа клиенту
type GameResponse struct {
	ID            uint               `json:"id"`
	AuthorID      uint               `json:"author_id"`
	Title         string             `json:"title"`
	Type          string             `json:"type"`
	Emoji         string             `json:"emoji"`
	Category      string             `json:"category"`
	Difficulty    string             `json:"difficulty,omitempty"`
	Description   string             `json:"description,omitempty"`
	Status        string             `json:"status"`
	QuestionCount int                `json:"question_count"`
	PlayCount     int                `json:"play_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CatalogResponse представляет страницу каталога
type CatalogResponse struct {
	Games    []GameResponse `json:"games"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// PlayResultResponse представляет итог прохождения
type PlayResultResponse struct {
	ID          uint      `json:"id"`
	SessionID   string    `json:"session_id"`
	Attempt     int       `json:"attempt"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	Tier        string    `json:"tier"`
	CompletedAt time.Time `json:"completed_at"`
}

// PaginatedPlayResultResponse представляет пагинированный список итогов
type PaginatedPlayResultResponse struct {
	Results []PlayResultResponse `json:"results"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

// NewQuestionResponse создает DTO для вопроса. Правильный ответ виден: это представление автора.
func NewQuestionResponse(q *entity.Question, mediaURL helper.MediaURLFunc) QuestionResponse {
	return QuestionResponse{
		ID:            q.ID,
		GameID:        q.GameID,
		Position:      q.Position,
		Text:          q.Text,
		Answers:       helper.ConvertAnswersToOptions(q.Answers),
		CorrectAnswer: q.CorrectAnswer,
		CorrectLabel:  quizrunner.ChoiceLabel(q.CorrectAnswer),
		Media: MediaResponse{
			ImageURL: helper.MediaURL(mediaURL, q.ImageRef),
			AudioURL: helper.MediaURL(mediaURL, q.AudioRef),
			VideoURL: helper.MediaURL(mediaURL, q.VideoRef),
		},
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// NewGameResponse создает DTO для игры
func NewGameResponse(game *entity.Game, includeQuestions bool, mediaURL helper.MediaURLFunc) *GameResponse {
	if game == nil {
		return nil
	}

	var questions []QuestionResponse
	if includeQuestions {
		questions = make([]QuestionResponse, len(game.Questions))
		for i := range game.Questions {
			questions[i] = NewQuestionResponse(&game.Questions[i], mediaURL)
		}
	}

	return &GameResponse{
		ID:            game.ID,
		AuthorID:      game.AuthorID,
		Title:         game.Title,
		Type:          game.Type,
		Emoji:         entity.GameTypeEmoji(game.Type),
		Category:      game.Category,
		Difficulty:    game.Difficulty,
		Description:   game.Description,
		Status:        game.Status,
		QuestionCount: game.QuestionCount,
		PlayCount:     game.PlayCount,
		Questions:     questions,
		CreatedAt:     game.CreatedAt,
		UpdatedAt:     game.UpdatedAt,
	}
}

// NewListGameResponse создает список DTO игр без вопросов
func NewListGameResponse(games []entity.Game) []GameResponse {
	out := make([]GameResponse, len(games))
	for i := range games {
		out[i] = *NewGameResponse(&games[i], false, nil)
	}
	return out
}

// NewCatalogResponse создает DTO страницы каталога
func NewCatalogResponse(games []entity.Game, total int64, page, pageSize int) *CatalogResponse {
	return &CatalogResponse{
		Games:    NewListGameResponse(games),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// NewPaginatedPlayResultResponse создает DTO страницы итогов
func NewPaginatedPlayResultResponse(results []entity.PlayResult, total int64, page, perPage int) *PaginatedPlayResultResponse {
	out := make([]PlayResultResponse, len(results))
	for i, r := range results {
		out[i] = PlayResultResponse{
			ID:          r.ID,
			SessionID:   r.SessionID,
			Attempt:     r.Attempt,
			Score:       r.Score,
			Total:       r.Total,
			Percentage:  r.Percentage,
			Tier:        r.Tier,
			CompletedAt: r.CompletedAt,
		}
	}
	return &PaginatedPlayResultResponse{
		Results: out,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}
