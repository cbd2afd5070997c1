package websocket

// Сообщения клиента
const (
	// MsgSelect выбирает вариант ответа: {"choice": 1}
	MsgSelect = "select"

	// MsgAdvance фиксирует ответ и переходит дальше
	MsgAdvance = "advance"

	// MsgBack возвращает к предыдущему вопросу
	MsgBack = "back"

	// MsgRestart начинает новую попытку
	MsgRestart = "restart"

	// MsgState запрашивает текущее состояние
	MsgState = "state"

	// MsgHeartbeat проверяет соединение
	MsgHeartbeat = "heartbeat"
)

// Сообщения сервера
const (
	// EventSessionState - актуальное состояние прохождения
	EventSessionState = "session:state"

	// EventSessionError - операция отклонена, состояние не изменилось
	EventSessionError = "session:error"

	// EventHeartbeat - ответ на heartbeat
	EventHeartbeat = "server:heartbeat"
)
