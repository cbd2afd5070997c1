package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/eduplay-api/internal/handler/dto"
	"github.com/yourusername/eduplay-api/internal/service"
)

// ProfileHandler обрабатывает запросы профиля автора
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler создает новый обработчик профилей
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRequest представляет запрос на создание или изменение профиля
type ProfileRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	School    string `json:"school"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

func (r *ProfileRequest) toInput() service.ProfileInput {
	return service.ProfileInput{
		Name:      r.Name,
		Email:     r.Email,
		School:    r.School,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
	}
}

// CreateProfile создает профиль
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profileService.Create(req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfile возвращает профиль
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID := c.MustGet("profileID").(uint)

	profile, err := h.profileService.Get(profileID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile изменяет профиль
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	profileID := c.MustGet("profileID").(uint)

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profileService.Update(profileID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfileGames возвращает игры автора, включая черновики
func (h *ProfileHandler) GetProfileGames(c *gin.Context) {
	profileID := c.MustGet("profileID").(uint)

	games, err := h.profileService.Games(profileID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games": dto.NewListGameResponse(games),
		"total": len(games),
	})
}

// GetProfileStats возвращает статистику автора
func (h *ProfileHandler) GetProfileStats(c *gin.Context) {
	profileID := c.MustGet("profileID").(uint)

	stats, err := h.profileService.Stats(profileID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
