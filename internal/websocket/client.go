package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yourusername/eduplay-api/pkg/logger"
	"github.com/yourusername/eduplay-api/pkg/monitoring"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Сообщения игрока маленькие: тип и номер варианта
	maxMessageSize = 512

	defaultClientBufferSize = 16
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// ErrSendBufferFull - клиент не успевает читать сообщения
var ErrSendBufferFull = errors.New("websocket send buffer is full")

// ErrSendClosed - соединение уже закрывается
var ErrSendClosed = errors.New("websocket send channel is closed")

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	// BufferSize определяет размер буфера канала отправки сообщений
	BufferSize int

	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration

	// MaxMessageSize определяет максимальный размер входящего сообщения
	MaxMessageSize int64

	// MessagesPerSecond и MessageBurst ограничивают частоту сообщений игрока
	MessagesPerSecond float64
	MessageBurst      int
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:        defaultClientBufferSize,
		PingInterval:      pingPeriod,
		PongWait:          pongWait,
		WriteWait:         writeWait,
		MaxMessageSize:    maxMessageSize,
		MessagesPerSecond: 5,
		MessageBurst:      10,
	}
}

// MessageHandler обрабатывает входящее сообщение. Ошибка закрывает соединение.
type MessageHandler func(message []byte, client *Client) error

// Client - WebSocket соединение одного игрока с одним прохождением
type Client struct {
	// ID прохождения, к которому привязано соединение
	SessionID string

	// Уникальный ID соединения
	ConnectionID string

	conn    *websocket.Conn
	cfg     ClientConfig
	limiter *rate.Limiter

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// Флаг, указывающий что канал send закрыт (для предотвращения panic)
	sendClosed atomic.Bool
}

// NewClient создает клиента для прохождения sessionID
func NewClient(conn *websocket.Conn, sessionID string, cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = def.MessagesPerSecond
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = def.MessageBurst
	}

	return &Client{
		SessionID:    sessionID,
		ConnectionID: uuid.NewString(),
		conn:         conn,
		cfg:          cfg,
		limiter:      rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.MessageBurst),
		send:         make(chan []byte, cfg.BufferSize),
	}
}

func (c *Client) logFields() []zap.Field {
	return []zap.Field{zap.String("session_id", c.SessionID), zap.String("conn_id", c.ConnectionID)}
}

// Run запускает writePump в отдельной горутине и читает сообщения до закрытия соединения
func (c *Client) Run(handler MessageHandler) {
	monitoring.WSConnections.Inc()
	defer monitoring.WSConnections.Dec()

	logger.Log.Info("WebSocket соединение открыто", c.logFields()...)

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	c.readPump(handler)

	// writePump отправит close-фрейм и завершится
	c.CloseSend()
	<-done
	logger.Log.Info("WebSocket соединение закрыто", c.logFields()...)
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(handler MessageHandler) {
	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warn("Ошибка чтения WebSocket", append(c.logFields(), zap.Error(err))...)
			}
			return
		}

		if !c.limiter.Allow() {
			_ = c.SendEvent(EventSessionError, ErrorPayload{Code: "rate_limited", Message: "Too many messages"})
			continue
		}

		if err := safeHandleMessage(message, c, handler); err != nil {
			logger.Log.Warn("Обработчик закрыл соединение", append(c.logFields(), zap.Error(err))...)
			return
		}
	}
}

// safeHandleMessage - обертка для вызова обработчика с recover
func safeHandleMessage(message []byte, client *Client, handler MessageHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Паника в обработчике WebSocket",
				append(client.logFields(), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))...)
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if handler == nil {
		return nil
	}
	return handler(message, client)
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Log.Warn("Ошибка записи WebSocket", append(c.logFields(), zap.Error(err))...)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent ставит событие в очередь отправки. Не блокирует.
func (c *Client) SendEvent(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return c.enqueue(payload)
}

func (c *Client) enqueue(payload []byte) (err error) {
	if c.sendClosed.Load() {
		return ErrSendClosed
	}
	// CloseSend мог закрыть канал между проверкой и отправкой
	defer func() {
		if recover() != nil {
			err = ErrSendClosed
		}
	}()
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// CloseSend безопасно закрывает канал send (только один раз).
// Возвращает true, если канал был закрыт этим вызовом.
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}
