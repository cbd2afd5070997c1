package websocket

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/pkg/logger"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inboundEvent - входящее сообщение, данные разбирает обработчик типа
type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrorPayload - данные события session:error
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EventHandler обрабатывает данные сообщения одного типа
type EventHandler func(data json.RawMessage, client *Client) error

// Router направляет сообщения клиента обработчикам по типу
type Router struct {
	handlers map[string]EventHandler
}

// NewRouter создает пустой маршрутизатор сообщений
func NewRouter() *Router {
	return &Router{handlers: make(map[string]EventHandler)}
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (r *Router) RegisterHandler(eventType string, handler EventHandler) {
	r.handlers[eventType] = handler
}

// HandleMessage разбирает сообщение и вызывает обработчик.
// Неверный формат и неизвестный тип не закрывают соединение: клиент получает session:error.
func (r *Router) HandleMessage(message []byte, client *Client) error {
	var event inboundEvent
	if err := json.Unmarshal(message, &event); err != nil {
		logger.Log.Debug("Неверный формат сообщения", zap.String("session_id", client.SessionID), zap.Error(err))
		r.SendError(client, "invalid_message_format", "Invalid JSON format")
		return nil
	}

	handler, ok := r.handlers[event.Type]
	if !ok {
		r.SendError(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}

	return handler(event.Data, client)
}

// SendError отправляет стандартизированное сообщение об ошибке клиенту.
// Этот метод НЕ закрывает соединение.
func (r *Router) SendError(client *Client, code, message string) {
	if err := client.SendEvent(EventSessionError, ErrorPayload{Code: code, Message: message}); err != nil {
		logger.Log.Warn("Не удалось отправить ошибку клиенту",
			zap.String("session_id", client.SessionID), zap.String("code", code), zap.Error(err))
	}
}
