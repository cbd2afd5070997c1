package quizrunner

import (
	"errors"
	"fmt"
	"strings"
)

// NoSelection означает, что для текущего вопроса вариант ещё не выбран
const NoSelection = -1

// State описывает состояние прохождения
type State string

const (
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// Tier - уровень итогового результата, используется только для подачи обратной связи
type Tier string

const (
	TierPerfect Tier = "perfect"
	TierPass    Tier = "pass"
	TierRetry   Tier = "retry"
)

// Ошибки прохождения. Все они означают отклонённую операцию без изменения состояния.
var (
	// ErrInvalidChoice - индекс вне диапазона или указывает на пустой вариант
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrInvalidTransition - операция недопустима в текущем состоянии
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidState - запрос результата до завершения или несогласованный снимок
	ErrInvalidState = errors.New("invalid state")
	// ErrNoQuestions - игра без вопросов не может быть запущена
	ErrNoQuestions = fmt.Errorf("%w: game has no questions", ErrInvalidTransition)
	// ErrInvalidQuestion - вопрос нарушает инварианты игры
	ErrInvalidQuestion = errors.New("invalid question")
)

// MediaFlags отмечает наличие вложений у вопроса. На подсчёт очков не влияет.
type MediaFlags struct {
	Image bool `json:"image"`
	Audio bool `json:"audio"`
	Video bool `json:"video"`
}

// Question - вопрос в том виде, в котором его видит механизм прохождения
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Answers       []string   `json:"answers"`
	CorrectAnswer int        `json:"correct_answer"`
	Media         MediaFlags `json:"media"`
}

// IsChoiceAvailable проверяет, можно ли выбрать вариант с индексом i.
// Пустые (в том числе состоящие из пробелов) варианты игроку не показываются.
func (q *Question) IsChoiceAvailable(i int) bool {
	return i >= 0 && i < len(q.Answers) && strings.TrimSpace(q.Answers[i]) != ""
}

// Choice - отображаемый вариант ответа
type Choice struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// AvailableChoices возвращает варианты, доступные игроку.
// Буква варианта позиционная: индекс 0 - A, 1 - B и т.д., даже если между ними есть пропуски.
func (q *Question) AvailableChoices() []Choice {
	choices := make([]Choice, 0, len(q.Answers))
	for i, a := range q.Answers {
		if !q.IsChoiceAvailable(i) {
			continue
		}
		choices = append(choices, Choice{Index: i, Label: ChoiceLabel(i), Text: a})
	}
	return choices
}

// ChoiceLabel возвращает буквенную метку варианта (A, B, C, ...)
func ChoiceLabel(i int) string {
	if i < 0 || i >= 26 {
		return ""
	}
	return string(rune('A' + i))
}

// Snapshot - неизменяемый снимок состояния прохождения.
// Значение сравнимо через ==, что удобно для проверки отклонённых операций.
//
// Reached - индекс самого дальнего открытого вопроса. Вопросы с индексом меньше
// Reached уже оценены и при повторном проходе вперёд не переоцениваются.
type Snapshot struct {
	State        State `json:"state"`
	CurrentIndex int   `json:"current_index"`
	Selected     int   `json:"selected"`
	Score        int   `json:"score"`
	Total        int   `json:"total"`
	Reached      int   `json:"reached"`
}

// IsFinished сообщает, находится ли прохождение в терминальном состоянии
func (s Snapshot) IsFinished() bool {
	return s.State == StateFinished
}

// HasSelection сообщает, выбран ли вариант для текущего вопроса
func (s Snapshot) HasSelection() bool {
	return s.Selected != NoSelection
}

// Progress возвращает долю пройденного для отображения, после завершения 1
func (s Snapshot) Progress() float64 {
	if s.IsFinished() || s.Total <= 0 {
		return 1
	}
	return float64(s.CurrentIndex+1) / float64(s.Total)
}
