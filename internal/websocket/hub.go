package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Hub хранит подписчиков учебных сессий: sessionID -> набор клиентов.
// Регистрация и отмена регистрации проходят через цикл Run.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	counters *hubCounters

	// Настройки очистки
	cleanupInterval   time.Duration
	inactivityTimeout time.Duration
}

// NewHub создает хаб. cleanupInterval <= 0 отключает очистку неактивных клиентов.
func NewHub(cleanupInterval, inactivityTimeout time.Duration) *Hub {
	return &Hub{
		sessions:          make(map[string]map[*Client]struct{}),
		register:          make(chan *Client, 100),
		unregister:        make(chan *Client, 100),
		done:              make(chan struct{}),
		counters:          newHubCounters(),
		cleanupInterval:   cleanupInterval,
		inactivityTimeout: inactivityTimeout,
	}
}

// Run запускает цикл обработки регистраций
func (h *Hub) Run() {
	var tick <-chan time.Time
	if h.cleanupInterval > 0 {
		ticker := time.NewTicker(h.cleanupInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case <-tick:
			h.cleanupInactiveClients()
		case <-h.done:
			log.Printf("[WebSocketHub] Получен сигнал завершения работы, останавливаемся")
			h.cleanupAllClients()
			return
		}
	}
}

// Close останавливает цикл хаба и закрывает все соединения
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	subscribers, ok := h.sessions[client.SessionID]
	if !ok {
		subscribers = make(map[*Client]struct{})
		h.sessions[client.SessionID] = subscribers
	}
	subscribers[client] = struct{}{}
	h.mu.Unlock()

	client.touch()
	h.counters.connected()
	log.Printf("[WebSocketHub] Клиент %s (Conn: %s) подписан на сессию %s", client.UserID, client.ConnectionID, client.SessionID)

	if client.registrationComplete != nil {
		select {
		case client.registrationComplete <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	subscribers, ok := h.sessions[client.SessionID]
	_, registered := subscribers[client]
	if ok && registered {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.sessions, client.SessionID)
		}
	}
	h.mu.Unlock()

	if !registered {
		return
	}
	if client.conn != nil {
		client.conn.Close()
	}
	client.CloseSend()
	h.counters.disconnected()
	log.Printf("[WebSocketHub] Клиент %s (Conn: %s) отписан от сессии %s", client.UserID, client.ConnectionID, client.SessionID)
}

// PublishToSession отправляет событие всем подписчикам сессии. Возвращает число получателей.
func (h *Hub) PublishToSession(sessionID string, eventType string, data interface{}) (int, error) {
	message, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for client := range h.sessions[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		if client.trySend(message) {
			delivered++
			continue
		}
		// Буфер клиента переполнен или закрыт, отключаем его
		log.Printf("[WebSocketHub] Буфер клиента %s (Conn: %s) переполнен, отключаем", client.UserID, client.ConnectionID)
		h.counters.dropped()
		h.requestUnregister(client)
	}

	if delivered > 0 {
		h.counters.delivered(eventType, delivered)
	}
	return delivered, nil
}

// CloseSession отправляет SESSION_ENDED и отключает всех подписчиков сессии
func (h *Hub) CloseSession(sessionID string, reason string) {
	if _, err := h.PublishToSession(sessionID, SESSION_ENDED, map[string]string{"reason": reason}); err != nil {
		log.Printf("[WebSocketHub] Ошибка отправки SESSION_ENDED для %s: %v", sessionID, err)
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for client := range h.sessions[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	// Закрытие канала send заставит writePump отправить CloseMessage
	for _, client := range clients {
		h.requestUnregister(client)
	}
}

// requestUnregister ставит клиента в очередь на удаление, не блокируя вызывающего
func (h *Hub) requestUnregister(client *Client) {
	select {
	case h.unregister <- client:
	default:
		go func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		}()
	}
}

// SubscriberCount возвращает число подписчиков сессии
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// ClientCount возвращает общее количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, subscribers := range h.sessions {
		total += len(subscribers)
	}
	return total
}

// Stats возвращает снимок счетчиков и число сессий, у которых есть подписчики
func (h *Hub) Stats() HubStats {
	stats := h.counters.snapshot()
	h.mu.RLock()
	stats.WatchedSessions = len(h.sessions)
	h.mu.RUnlock()
	return stats
}

func (h *Hub) cleanupInactiveClients() {
	if h.inactivityTimeout <= 0 {
		return
	}

	h.mu.RLock()
	var inactive []*Client
	for _, subscribers := range h.sessions {
		for client := range subscribers {
			if time.Since(client.LastActivity()) > h.inactivityTimeout {
				inactive = append(inactive, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range inactive {
		h.handleUnregister(client)
	}
	if len(inactive) > 0 {
		log.Printf("[WebSocketHub Cleanup] Удалено %d неактивных клиентов", len(inactive))
	}
}

func (h *Hub) cleanupAllClients() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, subscribers := range sessions {
		for client := range subscribers {
			if client.conn != nil {
				client.conn.Close()
			}
			client.CloseSend()
		}
	}
	log.Printf("[WebSocketHub] Все клиенты отключены")
}
