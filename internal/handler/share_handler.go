package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/eduplay-api/internal/service"
)

// ShareHandler обрабатывает запросы публикации ссылок на игру
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler создает новый обработчик публикации
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ShareEmailRequest представляет запрос на отправку ссылки по почте
type ShareEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// GetLinks возвращает ссылку, QR-код, код встраивания и ссылки соцсетей
func (h *ShareHandler) GetLinks(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	links, err := h.shareService.Links(gameID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// SendEmail отправляет ссылку на игру по почте
func (h *ShareHandler) SendEmail(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)

	var req ShareEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.shareService.SendByEmail(c.Request.Context(), gameID, req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}
