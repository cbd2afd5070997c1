package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Виды медиавложений вопроса
const (
	MediaImage = "image"
	MediaAudio = "audio"
	MediaVideo = "video"
)

// IsValidMediaKind проверяет вид вложения
func IsValidMediaKind(kind string) bool {
	return kind == MediaImage || kind == MediaAudio || kind == MediaVideo
}

// Question представляет вопрос игры.
// Варианты ответа позиционные: индекс 0 - A, 1 - B и т.д.
// Пустой вариант означает "такого варианта нет" и игроку не показывается.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	GameID        uint        `gorm:"not null;index" json:"game_id"`
	Position      int         `gorm:"not null;default:0" json:"position"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Answers       StringArray `gorm:"type:jsonb;not null" json:"answers"`
	CorrectAnswer int         `gorm:"not null;default:0" json:"correct_answer"`
	// Ссылки на вложения в объектном хранилище (пустая строка - вложения нет)
	ImageRef  string    `gorm:"size:255;not null;default:''" json:"image_ref,omitempty"`
	AudioRef  string    `gorm:"size:255;not null;default:''" json:"audio_ref,omitempty"`
	VideoRef  string    `gorm:"size:255;not null;default:''" json:"video_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selected int) bool {
	return selected == q.CorrectAnswer
}

// VisibleAnswersCount возвращает количество непустых вариантов
func (q *Question) VisibleAnswersCount() int {
	n := 0
	for _, a := range q.Answers {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

// MediaRef возвращает ссылку на вложение заданного вида
func (q *Question) MediaRef(kind string) string {
	switch kind {
	case MediaImage:
		return q.ImageRef
	case MediaAudio:
		return q.AudioRef
	case MediaVideo:
		return q.VideoRef
	}
	return ""
}

// MediaColumn возвращает колонку таблицы questions для вида вложения, "" для неизвестного вида
func MediaColumn(kind string) string {
	switch kind {
	case MediaImage:
		return "image_ref"
	case MediaAudio:
		return "audio_ref"
	case MediaVideo:
		return "video_ref"
	}
	return ""
}

// SetMediaRef устанавливает ссылку на вложение заданного вида
func (q *Question) SetMediaRef(kind, ref string) {
	switch kind {
	case MediaImage:
		q.ImageRef = ref
	case MediaAudio:
		q.AudioRef = ref
	case MediaVideo:
		q.VideoRef = ref
	}
}

// ToRunnerQuestion преобразует вопрос в формат механизма прохождения.
// Вложения передаются только как признаки наличия.
func (q *Question) ToRunnerQuestion() quizrunner.Question {
	return quizrunner.Question{
		ID:            strconv.FormatUint(uint64(q.ID), 10),
		Text:          q.Text,
		Answers:       append([]string(nil), q.Answers...),
		CorrectAnswer: q.CorrectAnswer,
		Media: quizrunner.MediaFlags{
			Image: q.ImageRef != "",
			Audio: q.AudioRef != "",
			Video: q.VideoRef != "",
		},
	}
}

// ToRunnerQuestions преобразует список вопросов
func ToRunnerQuestions(questions []Question) []quizrunner.Question {
	out := make([]quizrunner.Question, len(questions))
	for i := range questions {
		out[i] = questions[i].ToRunnerQuestion()
	}
	return out
}
