package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/eduplay-api/internal/handler/dto"
	"github.com/yourusername/eduplay-api/internal/service"
)

// GameHandler обрабатывает запросы конструктора и каталога игр
type GameHandler struct {
	gameService  *service.GameService
	mediaService *service.MediaService
}

// NewGameHandler создает новый обработчик игр
func NewGameHandler(gameService *service.GameService, mediaService *service.MediaService) *GameHandler {
	return &GameHandler{
		gameService:  gameService,
		mediaService: mediaService,
	}
}

// mediaURL возвращает функцию построения адресов вложений
func (h *GameHandler) mediaURL() func(string) string {
	if h.mediaService == nil {
		return nil
	}
	return h.mediaService.URL
}

// GameRequest представляет запрос на создание или изменение игры
type GameRequest struct {
	AuthorID    uint   `json:"author_id"`
	Title       string `json:"title" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

func (r *GameRequest) toInput() service.GameInput {
	return service.GameInput{
		AuthorID:    r.AuthorID,
		Title:       r.Title,
		Type:        r.Type,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		Description: r.Description,
	}
}

// QuestionRequest представляет запрос на добавление или изменение вопроса.
// Answers - позиционные слоты, пустая строка означает отсутствующий вариант.
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Answers       []string `json:"answers" binding:"required,min=2"`
	CorrectAnswer *int     `json:"correct_answer" binding:"required"`
}

func (r *QuestionRequest) toInput() service.QuestionInput {
	return service.QuestionInput{
		Text:          r.Text,
		Answers:       r.Answers,
		CorrectAnswer: *r.CorrectAnswer,
	}
}

// DuplicateGameRequest представляет запрос на копирование игры
type DuplicateGameRequest struct {
	AuthorID uint `json:"author_id"`
}

// CreateGame создает черновик игры
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	game, err := h.gameService.CreateGame(req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewGameResponse(game, false, nil))
}

// GetGame возвращает игру вместе с вопросами
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	game, err := h.gameService.GetGameWithQuestions(gameID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGameResponse(game, true, h.mediaURL()))
}

// UpdateGame изменяет заголовок и атрибуты каталога
func (h *GameHandler) UpdateGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	game, err := h.gameService.UpdateGame(gameID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGameResponse(game, false, nil))
}

// DeleteGame удаляет игру вместе с вопросами
func (h *GameHandler) DeleteGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	if err := h.gameService.DeleteGame(gameID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted successfully"})
}

// ListCatalog возвращает опубликованные игры с поиском и фильтрами
// GET /api/games?search=&type=&difficulty=&page=&page_size=
func (h *GameHandler) ListCatalog(c *gin.Context) {
	page, pageSize := parsePagination(c, service.DefaultCatalogSize, service.MaxCatalogSize)

	filters := service.CatalogFilters{
		Search:     c.Query("search"),
		Type:       c.Query("type"),
		Difficulty: c.Query("difficulty"),
	}

	games, total, err := h.gameService.ListCatalog(filters, page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCatalogResponse(games, total, page, pageSize))
}

// AddQuestion добавляет вопрос в конец игры
func (h *GameHandler) AddQuestion(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	question, err := h.gameService.AddQuestion(gameID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question, h.mediaURL()))
}

// UpdateQuestion изменяет текст и варианты вопроса
func (h *GameHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	question, err := h.gameService.UpdateQuestion(questionID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, h.mediaURL()))
}

// DeleteQuestion удаляет вопрос
func (h *GameHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.gameService.DeleteQuestion(questionID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// PublishGame публикует игру в каталоге
func (h *GameHandler) PublishGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	game, err := h.gameService.PublishGame(gameID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGameResponse(game, false, nil))
}

// UnpublishGame возвращает игру в черновики
func (h *GameHandler) UnpublishGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	game, err := h.gameService.UnpublishGame(gameID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGameResponse(game, false, nil))
}

// DuplicateGame создает копию игры с вопросами
func (h *GameHandler) DuplicateGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	var req DuplicateGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	game, err := h.gameService.DuplicateGame(gameID, req.AuthorID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewGameResponse(game, true, h.mediaURL()))
}
