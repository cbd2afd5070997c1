package repository

import "errors"

var (
	// ErrQuestionLimitReached означает, что в игре уже максимальное число вопросов.
	ErrQuestionLimitReached = errors.New("question limit reached")
)
