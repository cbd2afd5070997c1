package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/eduplay-api/internal/handler/dto"
	"github.com/yourusername/eduplay-api/internal/service"
)

// PlayHandler обрабатывает REST запросы прохождения игры
type PlayHandler struct {
	playService *service.PlayService
}

// NewPlayHandler создает новый обработчик прохождений
func NewPlayHandler(playService *service.PlayService) *PlayHandler {
	return &PlayHandler{playService: playService}
}

// StartSessionRequest представляет запрос на начало прохождения
type StartSessionRequest struct {
	GameID uint `json:"game_id" binding:"required"`
}

// SelectAnswerRequest представляет выбор варианта ответа
type SelectAnswerRequest struct {
	Choice *int `json:"choice" binding:"required"`
}

// StartSession начинает прохождение игры
// POST /api/sessions
func (h *PlayHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.playService.StartSession(c.Request.Context(), req.GameID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// GetSession возвращает текущее состояние прохождения
func (h *PlayHandler) GetSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	session, err := h.playService.Get(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// SelectAnswer выбирает вариант ответа на текущий вопрос
func (h *PlayHandler) SelectAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.playService.Select(c.Request.Context(), sessionID, *req.Choice)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// Advance переходит к следующему вопросу или завершает игру
func (h *PlayHandler) Advance(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	session, err := h.playService.Advance(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// GoBack возвращает к предыдущему вопросу
func (h *PlayHandler) GoBack(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	session, err := h.playService.GoBack(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// Restart начинает прохождение заново
func (h *PlayHandler) Restart(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	session, err := h.playService.Restart(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// CloseSession закрывает прохождение
func (h *PlayHandler) CloseSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	if err := h.playService.Close(c.Request.Context(), sessionID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

// GetGameResults возвращает пагинированные итоги прохождений игры
// GET /api/games/:id/results
func (h *PlayHandler) GetGameResults(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)
	page, pageSize := parsePagination(c, service.DefaultCatalogSize, service.MaxCatalogSize)

	results, total, err := h.playService.GameResults(gameID, page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedPlayResultResponse(results, total, page, pageSize))
}
