package websocket

import (
	"sync"
	"time"
)

// HubStats - снимок счетчиков хаба для админского эндпоинта
type HubStats struct {
	Connections        int64            `json:"total_connections"`
	ActiveConnections  int64            `json:"active_connections"`
	WatchedSessions    int              `json:"watched_sessions"`
	EventsDelivered    int64            `json:"events_delivered"`
	EventsByType       map[string]int64 `json:"events_by_type"`
	MessagesReceived   int64            `json:"messages_received"`
	DroppedSubscribers int64            `json:"dropped_subscribers"`
	UptimeSeconds      int64            `json:"uptime_seconds"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// hubCounters накапливает счетчики хаба
type hubCounters struct {
	mu        sync.Mutex
	startedAt time.Time
	stats     HubStats
}

func newHubCounters() *hubCounters {
	return &hubCounters{
		startedAt: time.Now(),
		stats:     HubStats{EventsByType: make(map[string]int64)},
	}
}

func (c *hubCounters) connected() {
	c.mu.Lock()
	c.stats.Connections++
	c.stats.ActiveConnections++
	c.mu.Unlock()
}

func (c *hubCounters) disconnected() {
	c.mu.Lock()
	if c.stats.ActiveConnections > 0 {
		c.stats.ActiveConnections--
	}
	c.mu.Unlock()
}

// delivered учитывает событие eventType, доставленное count подписчикам
func (c *hubCounters) delivered(eventType string, count int) {
	c.mu.Lock()
	c.stats.EventsDelivered += int64(count)
	c.stats.EventsByType[eventType] += int64(count)
	c.mu.Unlock()
}

func (c *hubCounters) received() {
	c.mu.Lock()
	c.stats.MessagesReceived++
	c.mu.Unlock()
}

func (c *hubCounters) dropped() {
	c.mu.Lock()
	c.stats.DroppedSubscribers++
	c.mu.Unlock()
}

// snapshot копирует счетчики, карта по типам не разделяется с хабом
func (c *hubCounters) snapshot() HubStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.stats
	out.EventsByType = make(map[string]int64, len(c.stats.EventsByType))
	for k, v := range c.stats.EventsByType {
		out.EventsByType[k] = v
	}
	out.UptimeSeconds = int64(time.Since(c.startedAt).Seconds())
	out.GeneratedAt = time.Now().UTC()
	return out
}
