package dto

import (
	"fmt"
	"time"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
)

// SessionQuestion - текущий вопрос прохождения без правильного ответа
type SessionQuestion struct {
	ID      string                `json:"id"`
	Text    string                `json:"text"`
	Choices []quizrunner.Choice   `json:"choices"`
	Media   quizrunner.MediaFlags `json:"media"`
}

// SessionResult - итог завершённого прохождения
type SessionResult struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Tier       string `json:"tier"`
	Emoji      string `json:"emoji"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
}

// SessionResponse представляет прохождение в формате для ответа клиенту
type SessionResponse struct {
	ID             string           `json:"id"`
	GameID         uint             `json:"game_id"`
	GameTitle      string           `json:"game_title"`
	GameType       string           `json:"game_type"`
	GameEmoji      string           `json:"game_emoji"`
	Attempt        int              `json:"attempt"`
	State          string           `json:"state"`
	QuestionNumber int              `json:"question_number"`
	Total          int              `json:"total"`
	Score          int              `json:"score"`
	Progress       float64          `json:"progress"`
	Selected       *int             `json:"selected"`
	CanGoBack      bool             `json:"can_go_back"`
	CanAdvance     bool             `json:"can_advance"`
	IsLastQuestion bool             `json:"is_last_question"`
	Question       *SessionQuestion `json:"question,omitempty"`
	Result         *SessionResult   `json:"result,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

var tierFeedback = map[quizrunner.Tier]struct{ emoji, title string }{
	quizrunner.TierPerfect: {"🎉", "Отлично!"},
	quizrunner.TierPass:    {"👏", "Хорошо!"},
	quizrunner.TierRetry:   {"💪", "Попробуйте ещё раз!"},
}

// NewSessionResult создает итог по счёту
func NewSessionResult(score, total int) *SessionResult {
	tier := quizrunner.TierFor(score, total)
	fb := tierFeedback[tier]
	return &SessionResult{
		Score:      score,
		Total:      total,
		Percentage: quizrunner.Percentage(score, total),
		Tier:       string(tier),
		Emoji:      fb.emoji,
		Title:      fb.title,
		Summary:    fmt.Sprintf("Правильных ответов: %d из %d", score, total),
	}
}

// NewSessionResponse создает DTO прохождения из снимка
func NewSessionResponse(s *entity.PlaySession) *SessionResponse {
	if s == nil {
		return nil
	}
	st := s.State

	resp := &SessionResponse{
		ID:             s.ID,
		GameID:         s.GameID,
		GameTitle:      s.GameTitle,
		GameType:       s.GameType,
		GameEmoji:      entity.GameTypeEmoji(s.GameType),
		Attempt:        s.Attempt,
		State:          string(st.State),
		QuestionNumber: st.CurrentIndex + 1,
		Total:          st.Total,
		Score:          st.Score,
		Progress:       st.Progress(),
		UpdatedAt:      s.UpdatedAt,
	}

	if st.IsFinished() {
		resp.Result = NewSessionResult(st.Score, st.Total)
		return resp
	}

	if st.HasSelection() {
		selected := st.Selected
		resp.Selected = &selected
	}
	resp.CanGoBack = st.CurrentIndex > 0
	resp.CanAdvance = st.HasSelection()
	resp.IsLastQuestion = st.CurrentIndex == st.Total-1

	if st.CurrentIndex >= 0 && st.CurrentIndex < len(s.Questions) {
		q := s.Questions[st.CurrentIndex]
		resp.Question = &SessionQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Choices: q.AvailableChoices(),
			Media:   q.Media,
		}
	}
	return resp
}
