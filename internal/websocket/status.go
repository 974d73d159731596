package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// StatsProvider отдает состояние хаба. Реализуется *Hub.
type StatsProvider interface {
	Stats() HubStats
	ClientCount() int
}

// healthStatus - ответ проверки живости WebSocket-подписок
type healthStatus struct {
	Status            string `json:"status"`
	ActiveConnections int    `json:"active_connections"`
	Timestamp         string `json:"timestamp"`
}

// MetricsHandler отдает снимок счетчиков хаба
func MetricsHandler(provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "websocket hub is not running"})
			return
		}
		writeJSON(w, http.StatusOK, provider.Stats())
	}
}

// HealthHandler сообщает, принимает ли сервис подписки на сессии
func HealthHandler(provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthStatus{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)}
		code := http.StatusOK
		if provider == nil {
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			resp.ActiveConnections = provider.ClientCount()
		}
		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[WebSocketStatus] Ошибка кодирования ответа: %v", err)
	}
}
