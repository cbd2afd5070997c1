package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/handler/dto"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/internal/service"
	"github.com/yourusername/eduplay-api/internal/websocket"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// wsOperationTimeout ограничивает обработку одного сообщения
const wsOperationTimeout = 5 * time.Second

// WSHandler обрабатывает WebSocket соединения прохождений
type WSHandler struct {
	playService *service.PlayService
	router      *websocket.Router
	upgrader    gorillaws.Upgrader
	clientCfg   websocket.ClientConfig
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(playService *service.PlayService, allowedOrigins []string, clientCfg websocket.ClientConfig) *WSHandler {
	h := &WSHandler{
		playService: playService,
		router:      websocket.NewRouter(),
		clientCfg:   clientCfg,
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker(allowedOrigins),
		EnableCompression: true,
	}

	// Регистрируем обработчики сообщений один раз при создании обработчика
	h.registerMessageHandlers()
	return h
}

// originChecker разрешает origin из списка и подключения без Origin (не браузерные клиенты)
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		logger.Log.Warn("WebSocket: отклонён origin", zap.String("origin", origin))
		return false
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение прохождения
// GET /ws/sessions/:sid
func (h *WSHandler) HandleConnection(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	// Прохождение должно существовать до апгрейда, иначе клиент получит обычный HTTP ответ
	session, err := h.playService.Get(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		logger.Log.Warn("Ошибка апгрейда WebSocket", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	client := websocket.NewClient(conn, sessionID, h.clientCfg)
	h.sendState(client, session)
	client.Run(h.router.HandleMessage)
}

// registerMessageHandlers регистрирует обработчики для типов сообщений
func (h *WSHandler) registerMessageHandlers() {
	h.router.RegisterHandler(websocket.MsgSelect, func(data json.RawMessage, client *websocket.Client) error {
		var payload struct {
			Choice *int `json:"choice"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.Choice == nil {
			h.router.SendError(client, "invalid_format", "Field choice is required")
			return nil
		}
		return h.apply(client, func(ctx context.Context) (*entity.PlaySession, error) {
			return h.playService.Select(ctx, client.SessionID, *payload.Choice)
		})
	})

	h.router.RegisterHandler(websocket.MsgAdvance, func(_ json.RawMessage, client *websocket.Client) error {
		return h.apply(client, func(ctx context.Context) (*entity.PlaySession, error) {
			return h.playService.Advance(ctx, client.SessionID)
		})
	})

	h.router.RegisterHandler(websocket.MsgBack, func(_ json.RawMessage, client *websocket.Client) error {
		return h.apply(client, func(ctx context.Context) (*entity.PlaySession, error) {
			return h.playService.GoBack(ctx, client.SessionID)
		})
	})

	h.router.RegisterHandler(websocket.MsgRestart, func(_ json.RawMessage, client *websocket.Client) error {
		return h.apply(client, func(ctx context.Context) (*entity.PlaySession, error) {
			return h.playService.Restart(ctx, client.SessionID)
		})
	})

	h.router.RegisterHandler(websocket.MsgState, func(_ json.RawMessage, client *websocket.Client) error {
		return h.apply(client, func(ctx context.Context) (*entity.PlaySession, error) {
			return h.playService.Get(ctx, client.SessionID)
		})
	})

	h.router.RegisterHandler(websocket.MsgHeartbeat, func(_ json.RawMessage, client *websocket.Client) error {
		if err := client.SendEvent(websocket.EventHeartbeat, gin.H{"timestamp": time.Now().Unix()}); err != nil {
			logger.Log.Debug("Не удалось отправить heartbeat", zap.String("session_id", client.SessionID), zap.Error(err))
		}
		return nil
	})
}

// apply выполняет операцию прохождения и отправляет клиенту новое состояние или ошибку.
// Истёкшее или закрытое прохождение завершает соединение.
func (h *WSHandler) apply(client *websocket.Client, op func(ctx context.Context) (*entity.PlaySession, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsOperationTimeout)
	defer cancel()

	session, err := op(ctx)
	if err != nil {
		_, errType := errorStatus(err)
		message := err.Error()
		if errType == "internal" {
			logger.Log.Error("Ошибка операции прохождения", zap.String("session_id", client.SessionID), zap.Error(err))
			message = "Internal server error"
		}
		h.router.SendError(client, errType, message)
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("session %s is gone: %w", client.SessionID, err)
		}
		return nil
	}

	h.sendState(client, session)
	return nil
}

func (h *WSHandler) sendState(client *websocket.Client, session *entity.PlaySession) {
	if err := client.SendEvent(websocket.EventSessionState, dto.NewSessionResponse(session)); err != nil {
		logger.Log.Warn("Не удалось отправить состояние прохождения", zap.String("session_id", client.SessionID), zap.Error(err))
	}
}
