package websocket

// Типы сообщений учебной сессии
const (
	// SESSION_STATS - обновлённая статистика сессии после ответа
	SESSION_STATS = "SESSION_STATS"

	// SESSION_ENDED - сессия завершена или вытеснена по неактивности
	SESSION_ENDED = "SESSION_ENDED"
)

// Служебные типы сообщений
const (
	// PING - запрос клиента на проверку соединения
	PING = "PING"

	// PONG - ответ сервера на PING
	PONG = "PONG"

	// SERVER_ERROR - ошибка обработки сообщения клиента
	SERVER_ERROR = "server:error"
)
