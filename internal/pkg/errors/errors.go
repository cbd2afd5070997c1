package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, переход сессии, недопустимый в текущем состоянии).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable означает, что внешний провайдер (почта, хранилище) не настроен.
	ErrUnavailable = errors.New("service unavailable")
)
