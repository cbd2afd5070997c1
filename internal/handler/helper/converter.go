package helper

import (
	"strings"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
)

// AnswerOption представляет слот варианта ответа для конструктора
type AnswerOption struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
	// Empty - слот не заполнен и игроку не показывается
	Empty bool `json:"empty"`
}

// ConvertAnswersToOptions преобразует массив строк в слоты с буквенными метками.
// ID использует 0-based индексацию для совместимости с CorrectAnswer в базе данных.
func ConvertAnswersToOptions(answers entity.StringArray) []AnswerOption {
	converted := make([]AnswerOption, len(answers))
	for i, a := range answers {
		converted[i] = AnswerOption{
			ID:    i,
			Label: quizrunner.ChoiceLabel(i),
			Text:  a,
			Empty: strings.TrimSpace(a) == "",
		}
	}
	return converted
}

// MediaURLFunc возвращает публичный адрес вложения по ссылке хранилища
type MediaURLFunc func(ref string) string

// MediaURL безопасно вызывает fn: пустая ссылка или отсутствующая функция дают пустой адрес
func MediaURL(fn MediaURLFunc, ref string) string {
	if fn == nil || ref == "" {
		return ""
	}
	return fn(ref)
}
