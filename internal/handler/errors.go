package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// errorStatus сопоставляет ошибку приложения со статусом HTTP и типом ошибки для клиента
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// handleError обрабатывает ошибки от сервисов и отправляет соответствующий HTTP ответ
func handleError(c *gin.Context, err error) {
	status, errorType := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("Внутренняя ошибка сервера",
			zap.String("method", c.Request.Method), zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error", "error_type": errorType})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "error_type": errorType})
}

// badRequest отвечает на ошибку разбора запроса
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "bad_request"})
}

// parsePagination читает page и page_size из query с ограничениями
func parsePagination(c *gin.Context, defaultSize, maxSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultSize
	} else if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}
