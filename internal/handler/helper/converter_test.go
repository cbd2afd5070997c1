package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

func TestConvertAnswersToOptions(t *testing.T) {
	options := ConvertAnswersToOptions(entity.StringArray{"Париж", " ", "Рим"})

	assert.Equal(t, []AnswerOption{
		{ID: 0, Label: "A", Text: "Париж"},
		{ID: 1, Label: "B", Text: " ", Empty: true},
		{ID: 2, Label: "C", Text: "Рим"},
	}, options)
}

func TestMediaURL(t *testing.T) {
	fn := func(ref string) string { return "/uploads/" + ref }

	assert.Equal(t, "/uploads/image/a.png", MediaURL(fn, "image/a.png"))
	assert.Empty(t, MediaURL(fn, ""), "пустая ссылка")
	assert.Empty(t, MediaURL(nil, "image/a.png"), "без функции адреса нет")
}
