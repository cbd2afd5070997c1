package service

import (
	"context"
	"fmt"
	"html"
	"net/mail"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// Размеры QR-кода и встраиваемого окна
const (
	qrCodeSize  = "300x300"
	embedWidth  = 800
	embedHeight = 600
)

// ShareLinks - набор ссылок для публикации игры
type ShareLinks struct {
	GameURL     string `json:"game_url"`
	QRCodeURL   string `json:"qr_code_url"`
	EmbedCode   string `json:"embed_code"`
	MailtoURL   string `json:"mailto_url"`
	WhatsAppURL string `json:"whatsapp_url"`
	TelegramURL string `json:"telegram_url"`
	VKURL       string `json:"vk_url"`
}

// ShareService формирует ссылки на игру и отправляет их по почте
type ShareService struct {
	gameRepo repository.GameRepository
	email    EmailSender
	baseURL  string
	qrBase   string
}

// NewShareService создает сервис публикации
func NewShareService(gameRepo repository.GameRepository, email EmailSender, baseURL, qrBase string) *ShareService {
	return &ShareService{
		gameRepo: gameRepo,
		email:    email,
		baseURL:  strings.TrimRight(baseURL, "/"),
		qrBase:   qrBase,
	}
}

// escapeComponent кодирует строку для query-параметра, пробел кодируется как %20
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// GameURL возвращает публичную ссылку на игру
func (s *ShareService) GameURL(gameID uint) string {
	return fmt.Sprintf("%s/game/%d", s.baseURL, gameID)
}

// BuildLinks формирует ссылки для игры с заданным названием
func (s *ShareService) BuildLinks(gameID uint, title string) *ShareLinks {
	gameURL := s.GameURL(gameID)

	subject := fmt.Sprintf("Поделюсь игрой: %s", title)
	body := fmt.Sprintf("Привет! Хочу поделиться образовательной игрой «%s». \n\nСсылка: %s\n\nСоздано на платформе EduPlay", title, gameURL)

	return &ShareLinks{
		GameURL:   gameURL,
		QRCodeURL: fmt.Sprintf("%s?size=%s&data=%s", s.qrBase, qrCodeSize, escapeComponent(gameURL)),
		EmbedCode: fmt.Sprintf(`<iframe src="%s" width="%d" height="%d" frameborder="0"></iframe>`,
			html.EscapeString(gameURL), embedWidth, embedHeight),
		MailtoURL: fmt.Sprintf("mailto:?subject=%s&body=%s", escapeComponent(subject), escapeComponent(body)),
		WhatsAppURL: "https://wa.me/?text=" +
			escapeComponent(fmt.Sprintf("Образовательная игра «%s»: %s", title, gameURL)),
		TelegramURL: fmt.Sprintf("https://t.me/share/url?url=%s&text=%s",
			escapeComponent(gameURL), escapeComponent(fmt.Sprintf("Образовательная игра «%s»", title))),
		VKURL: fmt.Sprintf("https://vk.com/share.php?url=%s&title=%s",
			escapeComponent(gameURL), escapeComponent(title)),
	}
}

// Links возвращает ссылки для существующей игры
func (s *ShareService) Links(gameID uint) (*ShareLinks, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	return s.BuildLinks(game.ID, game.Title), nil
}

// SendByEmail отправляет ссылку на игру на указанный адрес
func (s *ShareService) SendByEmail(ctx context.Context, gameID uint, recipient string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return fmt.Errorf("%w: invalid recipient email", apperrors.ErrValidation)
	}

	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return err
	}

	gameURL := s.GameURL(game.ID)
	msg := EmailMessage{
		To:      addr.Address,
		Subject: fmt.Sprintf("Поделюсь игрой: %s", game.Title),
		Text: fmt.Sprintf("Привет! Хочу поделиться образовательной игрой «%s».\n\nСсылка: %s\n\nСоздано на платформе EduPlay",
			game.Title, gameURL),
		HTML: fmt.Sprintf(`<p>Привет! Хочу поделиться образовательной игрой <strong>%s</strong>.</p><p><a href="%s">Открыть игру</a></p><p>Создано на платформе EduPlay</p>`,
			html.EscapeString(game.Title), html.EscapeString(gameURL)),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		return err
	}

	logger.Log.Info("Ссылка на игру отправлена по почте", zap.Uint("game_id", game.ID))
	return nil
}
