package quizrunner

import (
	"fmt"
	"strings"
)

// Runner - конечный автомат одного прохождения игры.
// Список вопросов фиксируется при создании и больше не меняется.
// Runner не потокобезопасен: им владеет ровно один игрок.
type Runner struct {
	questions []Question
	state     Snapshot
}

// New создает прохождение в начальном состоянии InProgress(0, none, 0)
func New(questions []Question) (*Runner, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	owned := make([]Question, len(questions))
	for i, q := range questions {
		q.Answers = append([]string(nil), q.Answers...)
		owned[i] = q
	}

	r := &Runner{questions: owned}
	r.reset()
	return r, nil
}

// Restore восстанавливает прохождение из ранее сохранённого снимка
func Restore(questions []Question, snap Snapshot) (*Runner, error) {
	r, err := New(questions)
	if err != nil {
		return nil, err
	}
	if err := r.checkSnapshot(snap); err != nil {
		return nil, err
	}
	r.state = snap
	return r, nil
}

func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for i := range questions {
		q := &questions[i]
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question #%d has empty text", ErrInvalidQuestion, i+1)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Answers) {
			return fmt.Errorf("%w: question #%d correct answer %d out of range", ErrInvalidQuestion, i+1, q.CorrectAnswer)
		}
		if !q.IsChoiceAvailable(q.CorrectAnswer) {
			return fmt.Errorf("%w: question #%d correct answer is empty", ErrInvalidQuestion, i+1)
		}
	}
	return nil
}

func (r *Runner) checkSnapshot(s Snapshot) error {
	total := len(r.questions)
	switch {
	case s.Total != total:
		return fmt.Errorf("%w: snapshot total %d, game has %d questions", ErrInvalidState, s.Total, total)
	case s.CurrentIndex < 0 || s.CurrentIndex >= total:
		return fmt.Errorf("%w: index %d out of range", ErrInvalidState, s.CurrentIndex)
	case s.Reached < s.CurrentIndex || s.Reached >= total:
		return fmt.Errorf("%w: reached %d inconsistent with index %d", ErrInvalidState, s.Reached, s.CurrentIndex)
	case s.Score < 0 || s.Score > total:
		return fmt.Errorf("%w: score %d out of range", ErrInvalidState, s.Score)
	}

	switch s.State {
	case StateInProgress:
		if s.Selected != NoSelection && !r.questions[s.CurrentIndex].IsChoiceAvailable(s.Selected) {
			return fmt.Errorf("%w: selection %d is not available", ErrInvalidState, s.Selected)
		}
		// Оценены только вопросы до Reached
		if s.Score > s.Reached {
			return fmt.Errorf("%w: score %d exceeds answered questions", ErrInvalidState, s.Score)
		}
	case StateFinished:
		if s.Selected != NoSelection || s.CurrentIndex != total-1 || s.Reached != total-1 {
			return fmt.Errorf("%w: finished snapshot must point at the last question without a selection", ErrInvalidState)
		}
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidState, s.State)
	}
	return nil
}

func (r *Runner) reset() {
	r.state = Snapshot{
		State:        StateInProgress,
		CurrentIndex: 0,
		Selected:     NoSelection,
		Score:        0,
		Total:        len(r.questions),
		Reached:      0,
	}
}

// Snapshot возвращает копию текущего состояния
func (r *Runner) Snapshot() Snapshot {
	return r.state
}

// Questions возвращает копию списка вопросов
func (r *Runner) Questions() []Question {
	out := make([]Question, len(r.questions))
	copy(out, r.questions)
	return out
}

// CurrentQuestion возвращает текущий вопрос (после завершения - последний)
func (r *Runner) CurrentQuestion() Question {
	return r.questions[r.state.CurrentIndex]
}

// SelectAnswer отмечает вариант для текущего вопроса.
// Очки не начисляются до Advance. Повторный выбор того же варианта ничего не меняет.
func (r *Runner) SelectAnswer(choice int) error {
	if r.state.IsFinished() {
		return fmt.Errorf("%w: cannot select an answer in a finished game", ErrInvalidTransition)
	}
	q := &r.questions[r.state.CurrentIndex]
	if !q.IsChoiceAvailable(choice) {
		return fmt.Errorf("%w: choice %d is not available for question #%d", ErrInvalidChoice, choice, r.state.CurrentIndex+1)
	}
	r.state.Selected = choice
	return nil
}

// Advance фиксирует ответ на текущий вопрос и переходит к следующему.
// Вопрос оценивается ровно один раз - при первом переходе вперёд с него.
// После возврата назад повторный переход счёт не меняет.
func (r *Runner) Advance() error {
	if r.state.IsFinished() {
		return fmt.Errorf("%w: game is already finished", ErrInvalidTransition)
	}
	if !r.state.HasSelection() {
		return fmt.Errorf("%w: no answer selected", ErrInvalidTransition)
	}

	idx := r.state.CurrentIndex
	firstVisit := idx == r.state.Reached
	if firstVisit && r.state.Selected == r.questions[idx].CorrectAnswer {
		r.state.Score++
	}

	r.state.Selected = NoSelection
	if idx == len(r.questions)-1 {
		r.state.State = StateFinished
		return nil
	}
	r.state.CurrentIndex++
	if r.state.CurrentIndex > r.state.Reached {
		r.state.Reached = r.state.CurrentIndex
	}
	return nil
}

// GoBack возвращает к предыдущему вопросу. Выбор сбрасывается, счёт не меняется.
func (r *Runner) GoBack() error {
	if r.state.IsFinished() {
		return fmt.Errorf("%w: game is already finished", ErrInvalidTransition)
	}
	if r.state.CurrentIndex == 0 {
		return fmt.Errorf("%w: already at the first question", ErrInvalidTransition)
	}
	r.state.CurrentIndex--
	r.state.Selected = NoSelection
	return nil
}

// Restart возвращает прохождение в начальное состояние из любого состояния
func (r *Runner) Restart() {
	r.reset()
}

// ProgressFraction возвращает долю пройденного для отображения.
// После завершения всегда 1.
func (r *Runner) ProgressFraction() float64 {
	return r.state.Progress()
}

// FinalPercentage возвращает round-half-up(100*score/total). Доступно только после завершения.
func (r *Runner) FinalPercentage() (int, error) {
	if !r.state.IsFinished() || r.state.Total == 0 {
		return 0, fmt.Errorf("%w: percentage is available only for a finished game", ErrInvalidState)
	}
	return Percentage(r.state.Score, r.state.Total), nil
}

// Tier возвращает уровень результата. Доступно только после завершения.
func (r *Runner) Tier() (Tier, error) {
	if !r.state.IsFinished() || r.state.Total == 0 {
		return "", fmt.Errorf("%w: tier is available only for a finished game", ErrInvalidState)
	}
	return TierFor(r.state.Score, r.state.Total), nil
}

// Percentage считает round-half-up(100*score/total) в целых числах
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}

// TierFor определяет уровень: perfect при score == total,
// pass при score >= total/2 (деление вещественное), иначе retry
func TierFor(score, total int) Tier {
	switch {
	case score == total:
		return TierPerfect
	case 2*score >= total:
		return TierPass
	default:
		return TierRetry
	}
}
