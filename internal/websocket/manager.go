package websocket

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Manager обрабатывает входящие сообщения и рассылает события учебных сессий
type Manager struct {
	hub            *Hub
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket со стандартным обработчиком PING
func NewManager(hub *Hub) *Manager {
	m := &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
	m.RegisterHandler(PING, func(data json.RawMessage, client *Client) error {
		if err := client.SendJSON(PONG, nil); err != nil {
			log.Printf("[WebSocketManager] Не удалось ответить PONG клиенту %s: %v", client.ConnectionID, err)
		}
		return nil
	})
	return m
}

// Hub возвращает хаб менеджера
func (m *Manager) Hub() *Hub { return m.hub }

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если обработка не удалась и соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Failed to unmarshal message from %s: %v", client.ConnectionID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil // Неизвестный тип - не закрываем соединение
	}
	return handler(event.Data, client)
}

// SendErrorToClient отправляет стандартизированное сообщение об ошибке клиенту.
// Этот метод НЕ закрывает соединение.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	if err := client.SendJSON(SERVER_ERROR, map[string]string{"code": code, "message": message}); err != nil {
		log.Printf("[WebSocketManager] ERROR sending error to client %s: %v", client.ConnectionID, err)
	}
}

// PublishSessionStats отправляет SESSION_STATS подписчикам сессии
func (m *Manager) PublishSessionStats(sessionID string, stats interface{}) {
	delivered, err := m.hub.PublishToSession(sessionID, SESSION_STATS, stats)
	if err != nil {
		log.Printf("[WebSocketManager] Ошибка публикации статистики сессии %s: %v", sessionID, err)
		return
	}
	if delivered > 0 {
		log.Printf("[WebSocketManager] Статистика сессии %s отправлена %d подписчикам", sessionID, delivered)
	}
}

// PublishSessionEnded уведомляет подписчиков о завершении сессии и отключает их
func (m *Manager) PublishSessionEnded(sessionID string, reason string) {
	m.hub.CloseSession(sessionID, reason)
}
