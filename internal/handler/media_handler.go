package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/eduplay-api/internal/handler/dto"
	"github.com/yourusername/eduplay-api/internal/service"
)

// MediaHandler обрабатывает загрузку вложений вопросов
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler создает новый обработчик вложений
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadMedia загружает вложение вопроса из multipart поля "file"
// POST /api/questions/:qid/media/:kind
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	kind := c.Param("kind")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	question, err := h.mediaService.Attach(c.Request.Context(), questionID, kind, service.MediaUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, h.mediaService.URL))
}

// DeleteMedia отвязывает вложение от вопроса
// DELETE /api/questions/:qid/media/:kind
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	question, err := h.mediaService.Detach(c.Request.Context(), questionID, c.Param("kind"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, h.mediaService.URL))
}
