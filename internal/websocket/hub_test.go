package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(0, 0)
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func registerClient(t *testing.T, hub *Hub, sessionID string) *Client {
	t.Helper()
	client := NewClient(hub, nil, "user", sessionID)
	hub.register <- client
	select {
	case <-client.registrationComplete:
	case <-time.After(time.Second):
		t.Fatal("клиент не зарегистрирован")
	}
	return client
}

func TestHub_PublishToSession(t *testing.T) {
	// Arrange
	hub := startHub(t)
	subscriber := registerClient(t, hub, "s1")
	other := registerClient(t, hub, "s2")

	// Act
	delivered, err := hub.PublishToSession("s1", SESSION_STATS, map[string]int{"attempted": 3})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, hub.ClientCount())

	var event struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-subscriber.send, &event))
	assert.Equal(t, SESSION_STATS, event.Type)
	assert.Equal(t, 3, event.Data["attempted"])
	assert.Len(t, other.send, 0, "Подписчик другой сессии сообщение не получает")
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "s1")
	for i := 0; i < defaultClientBufferSize; i++ {
		require.True(t, client.trySend([]byte("{}")))
	}

	delivered, err := hub.PublishToSession("s1", SESSION_STATS, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Eventually(t, func() bool { return hub.SubscriberCount("s1") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats().DroppedSubscribers)
}

func TestHub_CloseSession(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "s1")

	hub.CloseSession("s1", "ended")

	assert.Eventually(t, func() bool { return hub.SubscriberCount("s1") == 0 }, time.Second, 10*time.Millisecond)
	msg, ok := <-client.send
	require.True(t, ok)
	assert.Equal(t, SESSION_ENDED, messageType(msg))
	_, open := <-client.send
	assert.False(t, open, "После завершения сессии канал клиента закрыт")
}

func TestClient_SendAfterClose(t *testing.T) {
	client := NewClient(nil, nil, "u", "s")

	assert.True(t, client.CloseSend())
	assert.False(t, client.CloseSend(), "Повторное закрытие безопасно")
	assert.Error(t, client.SendJSON(PONG, nil))
}

func TestManager_HandleMessage(t *testing.T) {
	hub := NewHub(0, 0)
	m := NewManager(hub)
	client := NewClient(hub, nil, "u", "s")

	require.NoError(t, m.HandleMessage([]byte(`{"type":"PING"}`), client))
	assert.Equal(t, PONG, messageType(<-client.send))

	require.NoError(t, m.HandleMessage([]byte(`{"type":"NOPE"}`), client), "Неизвестный тип не закрывает соединение")
	assert.Equal(t, SERVER_ERROR, messageType(<-client.send))

	assert.Error(t, m.HandleMessage([]byte(`not json`), client))
}

func TestStatusHandlers(t *testing.T) {
	hub := NewHub(0, 0)

	w := httptest.NewRecorder()
	HealthHandler(hub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_connections":0`)

	w = httptest.NewRecorder()
	HealthHandler(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	MetricsHandler(hub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stats HubStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.WatchedSessions)
	assert.NotNil(t, stats.EventsByType)
}

func messageType(message []byte) string {
	var event struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(message, &event) != nil {
		return ""
	}
	return event.Type
}
